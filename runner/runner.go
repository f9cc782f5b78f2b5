package runner

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/logging"
	"github.com/Ygeth/adkProject/session"
	"github.com/Ygeth/adkProject/telemetry"
)

// ErrorCodeAgent marks the error event recorded when the agent fails a turn.
const ErrorCodeAgent = "AGENT_ERROR"

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// EventBufferSize sets channel buffering for events.
	EventBufferSize int
	// MaxModelCalls limits the number of model calls per run; 0 disables the limit.
	MaxModelCalls int
	// SessionStore persists state and history.
	SessionStore core.SessionStore
	// Logger receives runner diagnostics.
	Logger logging.Logger
}

// WithSessionStore sets the session store.
func WithSessionStore(s core.SessionStore) func(o *Options) {
	return func(o *Options) { o.SessionStore = s }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithMaxModelCalls bounds model calls per run.
func WithMaxModelCalls(n int) func(o *Options) {
	return func(o *Options) { o.MaxModelCalls = n }
}

// Runner coordinates agent execution: it creates run contexts, streams
// events, applies their side effects and persists history. Public methods
// are safe for concurrent use.
type Runner struct {
	agent core.Agent

	eventBufferSize int
	maxModelCalls   int

	sessionStore core.SessionStore
	logger       logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

var _ core.Runner = (*Runner)(nil)

// New constructs a Runner for the root agent with optional overrides.
func New(agent core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		EventBufferSize: 100,
		MaxModelCalls:   25,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore(session.WithLogger(opts.Logger))
	}

	return &Runner{
		agent:           agent,
		eventBufferSize: opts.EventBufferSize,
		maxModelCalls:   opts.MaxModelCalls,
		sessionStore:    opts.SessionStore,
		logger:          opts.Logger,
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// SessionStore returns the store the runner persists into.
func (r *Runner) SessionStore() core.SessionStore { return r.sessionStore }

// Agent returns the root agent.
func (r *Runner) Agent() core.Agent { return r.agent }

// Run starts an asynchronous run. The events channel closes once the run is
// finished and every side effect, including the output key, is persisted.
func (r *Runner) Run(
	ctx context.Context,
	key core.SessionKey,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	runID := core.NewID()
	logger := logging.With(r.logger, "run_id", runID)

	userEvent := core.NewUserContentEvent(runID, &userContent)
	if err := r.sessionStore.AppendEvent(ctx, key, userEvent); err != nil {
		return "", nil, nil, fmt.Errorf("append user event: %w", err)
	}

	sess, err := r.sessionStore.Get(ctx, key)
	if err != nil {
		return "", nil, nil, fmt.Errorf("get session: %w", err)
	}

	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)
	agentEmit := make(chan core.Event, r.eventBufferSize)
	resumeCh := make(chan struct{}, 1)
	agentDone := make(chan error, 1)

	ctx, span := telemetry.StartSpan(ctx, "runner.run",
		attribute.String("run.id", runID),
		attribute.String("session", key.String()),
		attribute.String("agent", r.agent.Name()),
	)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	runCtx := core.NewRunContext(
		ctx,
		key,
		runID,
		core.AgentInfo{Name: r.agent.Name(), Type: "model"},
		userContent,
		r.maxModelCalls,
		agentEmit,
		resumeCh,
		sess,
		r.sessionStore,
		logger,
	)

	logger.Info("runner.run.start", "session", key.String(), "agent", r.agent.Name())

	go func() {
		defer close(agentEmit)
		agentDone <- r.agent.Run(runCtx)
	}()

	go func() {
		var runErr error
		defer func() {
			telemetry.End(span, runErr)
			cancel()
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
			close(eventsCh)
			close(errorsCh)
		}()

		final, procErr := r.processEvents(runCtx, agentEmit, resumeCh, eventsCh)
		if procErr != nil {
			cancel()
		}
		agentErr := <-agentDone

		switch {
		case procErr != nil:
			runErr = procErr
		case agentErr != nil:
			runErr = fmt.Errorf("agent execution failed: %w", agentErr)
			r.recordFailure(runCtx, agentErr)
		case ctx.Err() != nil:
			runErr = ctx.Err()
		default:
			runErr = r.saveOutput(ctx, key, final)
		}

		if runErr != nil {
			logger.Warn("runner.run.failed", "error", runErr.Error())
			errorsCh <- runErr
			return
		}
		logger.Info("runner.run.complete")
	}()

	return runID, eventsCh, errorsCh, nil
}

// Cancel cancels an in-flight run by id.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		r.logger.Warn("runner.cancel.unknown", "run_id", runID)
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// processEvents persists and forwards agent events until the agent closes
// its channel. It returns the last final response seen.
func (r *Runner) processEvents(
	runCtx *core.RunContext,
	agentEmit <-chan core.Event,
	resumeCh chan<- struct{},
	eventsCh chan<- core.Event,
) (*core.Event, error) {
	var final *core.Event

	for {
		select {
		case <-runCtx.Done():
			return final, nil
		case ev, ok := <-agentEmit:
			if !ok {
				return final, nil
			}

			if !ev.IsPartial() {
				if err := r.persist(runCtx, ev); err != nil {
					return final, err
				}
				if ev.IsFinalResponse() {
					final = &ev
				}
			}

			select {
			case <-runCtx.Done():
				return final, nil
			case eventsCh <- ev:
				runCtx.LogDebug("runner.event.delivered", "event_id", ev.ID, "author", ev.Author, "partial", ev.IsPartial())
			}

			if !ev.IsPartial() {
				select {
				case resumeCh <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (r *Runner) persist(runCtx *core.RunContext, ev core.Event) error {
	if len(ev.Actions.StateDelta) > 0 {
		if err := r.sessionStore.ApplyDelta(runCtx.Context, runCtx.Key, ev.Actions.StateDelta); err != nil {
			return fmt.Errorf("apply state delta: %w", err)
		}
	}

	if err := r.sessionStore.AppendEvent(runCtx.Context, runCtx.Key, ev); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	if ev.Actions.TransferToAgent != nil && *ev.Actions.TransferToAgent != "" {
		runCtx.LogDebug("runner.event.transfer_to_agent", "target", *ev.Actions.TransferToAgent)
	}

	if ev.IsEscalation() {
		runCtx.LogDebug("runner.event.escalate")
	}

	return nil
}

// recordFailure appends an error event so the session history shows the
// failed turn. The event carries no content and never reaches the model.
func (r *Runner) recordFailure(runCtx *core.RunContext, cause error) {
	if runCtx.Err() != nil {
		return
	}
	ev := core.NewErrorEvent(runCtx.RunID, r.agent.Name(), ErrorCodeAgent, cause)
	if err := r.sessionStore.AppendEvent(runCtx.Context, runCtx.Key, ev); err != nil {
		runCtx.LogWarn("runner.failure.record", "error", err.Error())
	}
}

// saveOutput stores the final response text under the output key of the
// agent that authored it, if that agent declares one.
func (r *Runner) saveOutput(ctx context.Context, key core.SessionKey, final *core.Event) error {
	if final == nil || final.IsError() {
		return nil
	}

	author := r.agent.FindAgent(final.Author)
	keyed, ok := author.(core.OutputKeyed)
	if !ok || keyed.OutputKey() == "" {
		return nil
	}

	if err := r.sessionStore.SetState(ctx, key, keyed.OutputKey(), final.Text()); err != nil {
		return fmt.Errorf("save output key %q: %w", keyed.OutputKey(), err)
	}

	r.logger.Debug("runner.output_key.saved", "key", keyed.OutputKey(), "agent", final.Author)

	return nil
}
