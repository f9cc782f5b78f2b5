package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Ygeth/adkProject/core"
)

// ErrScriptExhausted is returned when a ScriptedModel is asked for more
// turns than it was given.
var ErrScriptExhausted = errors.New("scripted model: no turns left")

// Turn produces one model response for a request.
type Turn func(req Request) (Response, error)

// ScriptedModel replays a fixed sequence of turns. Every request is recorded
// so tests can assert on instructions, contents and offered tools.
type ScriptedModel struct {
	mu       sync.Mutex
	info     Info
	turns    []Turn
	requests []Request
	calls    int
}

// NewScriptedModel returns a model that answers with turns in order.
func NewScriptedModel(name string, turns ...Turn) *ScriptedModel {
	return &ScriptedModel{
		info:  Info{Name: name, Provider: "scripted", SupportsTools: true},
		turns: turns,
	}
}

// Append queues more turns.
func (m *ScriptedModel) Append(turns ...Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turns...)
}

// Requests returns a copy of the requests seen so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Remaining returns the number of unplayed turns.
func (m *ScriptedModel) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }

// Generate implements Model. With req.Stream set, text answers are preceded
// by one partial chunk per word.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var next Turn
	if len(m.turns) > 0 {
		next, m.turns = m.turns[0], m.turns[1:]
	}
	m.calls++
	n := m.calls
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if next == nil {
			errCh <- ErrScriptExhausted
			return
		}

		resp, err := next(req)
		if err != nil {
			errCh <- err
			return
		}
		if resp.ID == "" {
			resp.ID = fmt.Sprintf("scripted-%d", n)
		}

		if req.Stream {
			for _, chunk := range streamChunks(resp.Content) {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{ID: resp.ID, Partial: true, Content: core.NewTextContent(core.RoleAssistant, chunk)}:
				}
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- resp:
		}
	}()

	return respCh, errCh
}

func streamChunks(c core.Content) []string {
	var text string
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok {
			text += tp.Text
		}
	}
	if text == "" {
		return nil
	}
	return strings.SplitAfter(text, " ")
}

// Reply answers with a final text message.
func Reply(text string) Turn {
	return func(Request) (Response, error) {
		return Response{Content: core.NewTextContent(core.RoleAssistant, text), FinishReason: "stop"}, nil
	}
}

// Replyf answers with text derived from the request, e.g. echoing the
// latest tool output.
func Replyf(fn func(req Request) string) Turn {
	return func(req Request) (Response, error) {
		return Response{Content: core.NewTextContent(core.RoleAssistant, fn(req)), FinishReason: "stop"}, nil
	}
}

// Call answers with a single function call. args is JSON encoded; a string
// is used verbatim.
func Call(name string, args any) Turn {
	return Calls(core.FunctionCall{Name: name, Arguments: encodeArgs(args)})
}

// Calls answers with several function calls in one response. Missing call
// ids are filled in as call_<name>_<index>.
func Calls(calls ...core.FunctionCall) Turn {
	return func(Request) (Response, error) {
		parts := make([]core.Part, 0, len(calls))
		for i, fc := range calls {
			if fc.ID == "" {
				fc.ID = fmt.Sprintf("call_%s_%d", fc.Name, i)
			}
			if fc.Arguments == "" {
				fc.Arguments = "{}"
			}
			parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
		}
		return Response{
			Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
			FinishReason: "tool_calls",
		}, nil
	}
}

// Fail answers with err.
func Fail(err error) Turn {
	return func(Request) (Response, error) { return Response{}, err }
}

// LastToolOutput returns the text of the most recent function response in
// req, or "" when there is none.
func LastToolOutput(req Request) string {
	for i := len(req.Contents) - 1; i >= 0; i-- {
		parts := req.Contents[i].Parts
		for j := len(parts) - 1; j >= 0; j-- {
			if fr, ok := parts[j].(core.FunctionResponsePart); ok {
				return ResponseText(fr.FunctionResponse)
			}
		}
	}
	return ""
}

func encodeArgs(args any) string {
	switch v := args.(type) {
	case nil:
		return "{}"
	case string:
		return v
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}
