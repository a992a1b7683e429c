package gateway

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/claude/repcoach/internal/flow"
	"github.com/claude/repcoach/internal/timer"
)

// Notifier delivers screens produced outside a request cycle, i.e. when a
// rest timer fires. A push transport would implement this; the default just
// logs.
type Notifier interface {
	Notify(ctx context.Context, userID int, screen flow.RenderScreen)
}

// LogNotifier writes asynchronous screens to the log.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, userID int, screen flow.RenderScreen) {
	n.Log.Info("notify", "user_id", userID, "text", screen.Text, "choices", len(screen.Choices))
}

// RestHandler builds the timer callback: it feeds the fired token back into
// the engine as a rest-elapsed trigger and hands any resulting screens to the
// notifier. Stale tokens come back with no effects and are dropped silently.
func RestHandler(engine *flow.Engine, notifier Notifier, log *slog.Logger) timer.Handler {
	return func(ctx context.Context, userID int, token uuid.UUID) {
		effects, err := engine.Dispatch(ctx, userID, flow.RestElapsed{Token: token})
		if err != nil {
			log.Error("dispatching rest-elapsed", "user_id", userID, "error", err)
			return
		}
		for _, eff := range effects {
			if screen, ok := eff.(flow.RenderScreen); ok {
				notifier.Notify(ctx, userID, screen)
			}
		}
	}
}
