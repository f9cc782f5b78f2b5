package testutil

import (
	"context"
	"testing"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/logging"
	"github.com/Ygeth/adkProject/session"
)

// DemoKey is the session key used by the stateful weather walkthrough.
var DemoKey = core.SessionKey{
	AppName:   "weather_tutorial_app",
	UserID:    "user_state_demo",
	SessionID: "session_state_demo_001",
}

// SessionBuilder helps construct sessions with fluent chaining for tests.
//
//	sess := NewSessionBuilder(DemoKey).State("k", "v").Events(ev1, ev2).Build()
type SessionBuilder struct {
	key    core.SessionKey
	state  map[string]any
	events []core.Event
}

// NewSessionBuilder creates a new builder for a session with the given key.
func NewSessionBuilder(key core.SessionKey) *SessionBuilder {
	return &SessionBuilder{key: key, state: map[string]any{}}
}

// State sets a state key/value pair on the resulting session.
func (b *SessionBuilder) State(key string, val any) *SessionBuilder {
	b.state[key] = val
	return b
}

// Events appends events to the session history.
func (b *SessionBuilder) Events(evs ...core.Event) *SessionBuilder {
	b.events = append(b.events, evs...)
	return b
}

// Build returns a detached *core.Session.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.key, b.state)
	for _, ev := range b.events {
		s.AddEvent(ev)
	}
	return s
}

// Store creates the session inside a fresh in-memory store and returns both.
func (b *SessionBuilder) Store(t testing.TB) (*session.InMemoryStore, *core.Session) {
	t.Helper()
	store := session.NewInMemoryStore()
	sess, err := store.Create(context.Background(), b.key, b.state)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	for _, ev := range b.events {
		sess.AddEvent(ev)
	}
	return store, sess
}

// RunContext builds a run context for agentName over sess and store. The
// returned channel receives emitted events; the resume channel is nil so
// agents never block waiting for persistence.
func RunContext(t testing.TB, store core.SessionStore, sess *core.Session, agentName string) (*core.RunContext, chan core.Event) {
	t.Helper()
	emit := make(chan core.Event, 64)
	rc := core.NewRunContext(
		context.Background(),
		sess.Key(),
		"run-test",
		core.AgentInfo{Name: agentName, Type: "model"},
		core.Content{},
		0,
		emit,
		nil,
		sess,
		store,
		logging.NoOpLogger{},
	)
	return rc, emit
}

// ToolContext builds a tool context over a fresh in-memory session seeded
// with state.
func ToolContext(t testing.TB, state map[string]any) (*core.ToolContext, *core.Session) {
	t.Helper()
	b := NewSessionBuilder(DemoKey)
	for k, v := range state {
		b.State(k, v)
	}
	store, sess := b.Store(t)
	rc, _ := RunContext(t, store, sess, "weather_agent")
	return core.NewToolContext(rc, "call-test"), sess
}
