package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrTurnTimeout is returned when a turn does not finish within the
	// driver timeout.
	ErrTurnTimeout = errors.New("conversation: turn timed out")
	// ErrNoFinalResponse is returned when the event stream ends without a
	// final response.
	ErrNoFinalResponse = errors.New("conversation: agent did not produce a final response")
)

// EscalationError reports a turn that ended with an escalation or an error
// event rather than an answer.
type EscalationError struct {
	Author  string
	Code    string
	Message string
}

func (e *EscalationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "no specific message"
	}
	if e.Code != "" {
		return fmt.Sprintf("agent %s escalated [%s]: %s", e.Author, e.Code, msg)
	}
	return fmt.Sprintf("agent %s escalated: %s", e.Author, msg)
}
