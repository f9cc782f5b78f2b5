package core

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/Ygeth/adkProject/logging"
)

// RunContext carries the mutable, per-run execution scope passed to an
// Agent's Run method:
//   - the ambient cancellation Context
//   - identifiers (session key, run id, agent info)
//   - the user content that started the run
//   - emit / resume channels coordinating with the runner
//   - the session store and a working session handle
//   - staged state mutations not yet emitted
//
// State written through SetState is staged in StateDelta and travels with the
// next emitted event; the runner persists it before signalling Resume.
type RunContext struct {
	Context      context.Context
	Key          SessionKey
	RunID        string
	Agent        AgentInfo
	UserContent  Content
	Emit         chan<- Event
	Resume       <-chan struct{}
	SessionStore SessionStore
	Limiter      *ModelLimiter
	Session      *Session
	StateDelta   map[string]any
	Branch       string

	deltaMu *sync.Mutex

	*loggerAdapter
}

// NewRunContext constructs a RunContext with an empty state delta.
func NewRunContext(
	ctx context.Context,
	key SessionKey,
	runID string,
	agent AgentInfo,
	userContent Content,
	maxModelCalls int,
	emit chan<- Event,
	resume <-chan struct{},
	sess *Session,
	store SessionStore,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		Key:           key,
		RunID:         runID,
		Agent:         agent,
		UserContent:   userContent,
		Emit:          emit,
		Resume:        resume,
		SessionStore:  store,
		Limiter:       NewModelLimiter(maxModelCalls),
		Session:       sess,
		StateDelta:    map[string]any{},
		deltaMu:       &sync.Mutex{},
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// lock guards StateDelta; parallel tool calls share one RunContext.
func (rc *RunContext) lock() func() {
	if rc.deltaMu == nil {
		return func() {}
	}
	rc.deltaMu.Lock()
	return rc.deltaMu.Unlock
}

// GetState returns a staged value if present, else the session value.
func (rc *RunContext) GetState(k string) (any, bool) {
	unlock := rc.lock()
	v, ok := rc.StateDelta[k]
	unlock()
	if ok {
		return v, true
	}

	if rc.Session != nil {
		return rc.Session.GetState(k)
	}

	return nil, false
}

// StateView returns the session state overlaid with staged mutations.
func (rc *RunContext) StateView() map[string]any {
	var view map[string]any
	if rc.Session != nil {
		view = rc.Session.StateSnapshot()
	}
	if view == nil {
		view = map[string]any{}
	}
	unlock := rc.lock()
	maps.Copy(view, rc.StateDelta)
	unlock()
	return view
}

// SetState stages a state mutation in the delta buffer.
func (rc *RunContext) SetState(k string, v any) {
	defer rc.lock()()
	rc.StateDelta[k] = v
}

// ApplyStateDelta merges all pairs from d into the staged StateDelta.
func (rc *RunContext) ApplyStateDelta(d map[string]any) {
	defer rc.lock()()
	maps.Copy(rc.StateDelta, d)
}

// RefreshSession reloads the session handle from the SessionStore.
func (rc *RunContext) RefreshSession() error {
	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}

	s, err := rc.SessionStore.Get(rc.Context, rc.Key)
	if err != nil {
		return err
	}

	rc.Session = s

	return nil
}

// GetSessionHistory returns the conversational events of the session.
func (rc *RunContext) GetSessionHistory() []Event {
	if rc.Session == nil {
		return []Event{}
	}

	return rc.Session.GetConversationHistory()
}

// GetAgentName returns the logical agent name for this run.
func (rc *RunContext) GetAgentName() string { return rc.Agent.Name }

// WithAgent returns a copy of the context bound to another agent. Channels,
// store and limiter are shared; the state delta buffer is copied.
func (rc *RunContext) WithAgent(info AgentInfo) *RunContext {
	c := rc.clone()
	c.Agent = info
	return c
}

// WithBranch clones the context and sets the Branch label stamped on every
// event it emits. Delegated agents run on "parent.child" branches.
func (rc *RunContext) WithBranch(b string) *RunContext {
	c := rc.clone()
	c.Branch = b
	return c
}

func (rc *RunContext) clone() *RunContext {
	unlock := rc.lock()
	defer unlock()

	c := *rc
	c.deltaMu = &sync.Mutex{}
	c.StateDelta = maps.Clone(rc.StateDelta)
	if c.StateDelta == nil {
		c.StateDelta = map[string]any{}
	}
	return &c
}

// EmitEvent merges the pending StateDelta into the event and emits it.
func (rc *RunContext) EmitEvent(ev Event) error {
	unlock := rc.lock()
	pending := rc.StateDelta
	rc.StateDelta = map[string]any{}
	unlock()

	if len(pending) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		for k, v := range pending {
			if _, set := ev.Actions.StateDelta[k]; !set {
				ev.Actions.StateDelta[k] = v
			}
		}
	}

	if ev.InvocationID == "" {
		ev.InvocationID = rc.RunID
	}

	if ev.Branch == nil && rc.Branch != "" {
		b := rc.Branch
		ev.Branch = &b
	}

	select {
	case <-rc.Context.Done():
		rc.ApplyStateDelta(pending)
		return rc.Context.Err()
	case rc.Emit <- ev:
	}

	return nil
}

// WaitForResume blocks until the runner signals that the last emitted event
// has been persisted, or the context is cancelled.
func (rc *RunContext) WaitForResume() error {
	if rc.Resume == nil {
		return nil
	}

	select {
	case <-rc.Resume:
		return nil
	case <-rc.Context.Done():
		return rc.Context.Err()
	}
}
