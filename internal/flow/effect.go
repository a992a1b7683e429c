package flow

import (
	"time"

	"github.com/google/uuid"
)

// Effect is an outbound instruction to the presentation adapter.
type Effect interface {
	isEffect()
}

// Choice is one actionable button attached to a screen. Data is an opaque
// callback payload the adapter echoes back as an event.
type Choice struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// RenderScreen asks the adapter to show a message, optionally with media and
// action choices.
type RenderScreen struct {
	Text     string   `json:"text"`
	MediaRef string   `json:"media_ref,omitempty"`
	Choices  []Choice `json:"choices,omitempty"`
}

// ScheduleResume asks the adapter to deliver a RestElapsed event for this
// user after Delay. The wait must not block anything; it is a scheduled
// continuation.
type ScheduleResume struct {
	Delay time.Duration `json:"delay"`
	Token uuid.UUID     `json:"token"`
}

// ErrorNotice reports a failure the user can do nothing about except retry.
type ErrorNotice struct {
	Message string `json:"message"`
}

func (RenderScreen) isEffect()   {}
func (ScheduleResume) isEffect() {}
func (ErrorNotice) isEffect()    {}
