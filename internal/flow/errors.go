package flow

import "fmt"

// ValidationError marks malformed user input: the state machine stays put and
// the message carries corrective guidance.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
