package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/logging"
)

// Recorder plays the runner's part for flow and agent tests: it persists
// every non-partial event (state delta first, then history) and signals
// resume, keeping a copy of everything it saw.
type Recorder struct {
	mu     sync.Mutex
	events []core.Event
	done   chan struct{}
	emit   chan core.Event
}

// PersistingRunContext builds a run context whose emitted events are
// persisted into store by a background Recorder. Call Close on the recorder
// once the agent returns.
func PersistingRunContext(t testing.TB, store core.SessionStore, sess *core.Session, agentName string, userText string) (*core.RunContext, *Recorder) {
	t.Helper()

	emit := make(chan core.Event, 64)
	resume := make(chan struct{}, 1)
	rec := &Recorder{done: make(chan struct{}), emit: emit}

	ctx := context.Background()
	user := core.NewTextContent(core.RoleUser, userText)
	if userText != "" {
		if err := store.AppendEvent(ctx, sess.Key(), core.NewUserContentEvent("run-test", &user)); err != nil {
			t.Fatalf("append user event: %v", err)
		}
	}

	go func() {
		defer close(rec.done)
		for ev := range emit {
			rec.mu.Lock()
			rec.events = append(rec.events, ev)
			rec.mu.Unlock()
			if ev.IsPartial() {
				continue
			}
			if err := store.ApplyDelta(ctx, sess.Key(), ev.Actions.StateDelta); err != nil {
				t.Errorf("apply delta: %v", err)
			}
			if err := store.AppendEvent(ctx, sess.Key(), ev); err != nil {
				t.Errorf("append event: %v", err)
			}
			resume <- struct{}{}
		}
	}()

	rc := core.NewRunContext(ctx, sess.Key(), "run-test", core.AgentInfo{Name: agentName, Type: "model"},
		user, 0, emit, resume, sess, store, logging.NoOpLogger{})
	return rc, rec
}

// Close stops the recorder and returns the events it saw.
func (r *Recorder) Close() []core.Event {
	close(r.emit)
	<-r.done
	return r.Events()
}

// Events returns a copy of the events seen so far.
func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Event, len(r.events))
	copy(out, r.events)
	return out
}
