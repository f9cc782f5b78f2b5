package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventActions encodes side effects or orchestration signals attached to an Event.
// Pointer fields distinguish absence from zero values. The runner applies
// StateDelta to the session store before the event is appended to history.
type EventActions struct {
	SkipSummarization *bool          `json:"skip_summarization,omitempty"`
	StateDelta        map[string]any `json:"state_delta,omitempty"`
	TransferToAgent   *string        `json:"transfer_to_agent,omitempty"`
	Escalate          *bool          `json:"escalate,omitempty"`
}

// Event is the unit of communication between agents, the runner and the
// conversation driver. After emission it should be treated as immutable.
//
// Content may be nil for control or error-only events.
type Event struct {
	ID           string       `json:"id"`
	InvocationID string       `json:"invocation_id"`
	Author       string       `json:"author"`
	Actions      EventActions `json:"actions"`
	Branch       *string      `json:"branch,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Content      *Content     `json:"content,omitempty"`
	Partial      *bool        `json:"partial,omitempty"`
	ErrorCode    *string      `json:"error_code,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

// NewEvent creates a bare event authored by author bound to an invocation.
func NewEvent(invocationID, author string) Event {
	return Event{
		ID:           NewID(),
		InvocationID: invocationID,
		Author:       author,
		Timestamp:    time.Now().UTC(),
		Actions:      EventActions{},
	}
}

// NewMessageEvent creates an assistant message event with a single text part.
func NewMessageEvent(invocationID, author, message string) Event {
	e := NewEvent(invocationID, author)
	e.Content = &Content{Role: RoleAssistant, Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(invocationID, message string) Event {
	e := NewEvent(invocationID, AuthorUser)
	e.Content = &Content{Role: RoleUser, Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewUserContentEvent creates a user-authored event with arbitrary Content.
func NewUserContentEvent(invocationID string, content *Content) Event {
	e := NewEvent(invocationID, AuthorUser)
	e.Content = content
	return e
}

// NewFunctionCallEvent represents an agent requesting execution of a named tool.
func NewFunctionCallEvent(invocationID, author, id, functionName, args string) Event {
	e := NewEvent(invocationID, author)
	e.Content = &Content{
		Role: RoleAssistant,
		Parts: []Part{
			FunctionCallPart{FunctionCall: FunctionCall{ID: id, Name: functionName, Arguments: args}},
		},
	}
	return e
}

// NewFunctionResponseEvent records the result (or error) of a tool invocation.
// If err is non-nil its message is copied into the response Error field.
func NewFunctionResponseEvent(invocationID, author, id, functionName string, result any, err error) Event {
	e := NewEvent(invocationID, author)
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	e.Content = &Content{Role: RoleTool, Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
	return e
}

// NewErrorEvent creates a terminal error event authored by author.
func NewErrorEvent(invocationID, author, code string, err error) Event {
	e := NewEvent(invocationID, author)
	msg := err.Error()
	e.ErrorCode = &code
	e.ErrorMessage = &msg
	return e
}

// NewID generates a new unique identifier for events.
func NewID() string { return uuid.NewString() }

// IsPartial reports whether this event is a streaming fragment that will be
// followed by the complete event.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// IsError reports whether the event carries an error code or message.
func (e Event) IsError() bool { return e.ErrorCode != nil || e.ErrorMessage != nil }

// IsEscalation reports whether the event requests escalation.
func (e Event) IsEscalation() bool { return e.Actions.Escalate != nil && *e.Actions.Escalate }

// GetFunctionCalls returns the FunctionCall parts in original order.
func (e Event) GetFunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns the FunctionResponse parts in original order.
func (e Event) GetFunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// Text concatenates all text parts of the event content.
func (e Event) Text() string {
	if e.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range e.Content.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// IsFinalResponse reports whether the event completes an assistant turn: no
// pending tool calls or responses and not a partial fragment.
func (e Event) IsFinalResponse() bool {
	if e.Actions.SkipSummarization != nil && *e.Actions.SkipSummarization {
		return true
	}

	return len(e.GetFunctionCalls()) == 0 &&
		len(e.GetFunctionResponses()) == 0 &&
		!e.IsPartial()
}
