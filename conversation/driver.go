package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/logging"
)

// DefaultTimeout bounds a single turn.
const DefaultTimeout = 45 * time.Second

// Runner is the part of runner.Runner the driver needs.
type Runner interface {
	core.Runner
	SessionStore() core.SessionStore
}

// Options configures a Driver.
type Options struct {
	Timeout time.Duration
	Logger  logging.Logger
}

// WithTimeout sets the per-turn timeout.
func WithTimeout(d time.Duration) func(o *Options) {
	return func(o *Options) { o.Timeout = d }
}

// WithLogger sets the driver logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Driver runs sequential turns of one conversation.
type Driver struct {
	runner  Runner
	key     core.SessionKey
	timeout time.Duration
	logger  logging.Logger
}

// NewDriver returns a driver for the session identified by key.
func NewDriver(r Runner, key core.SessionKey, optFns ...func(o *Options)) *Driver {
	opts := Options{Timeout: DefaultTimeout, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Driver{runner: r, key: key, timeout: opts.Timeout, logger: opts.Logger}
}

// Key returns the session key the driver talks to.
func (d *Driver) Key() core.SessionKey { return d.key }

// Ask sends query as one user turn and returns the final response text.
func (d *Driver) Ask(ctx context.Context, query string) (string, error) {
	turnCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.logger.Info("conversation.turn.start", "session", d.key.String(), "query", query)

	runID, events, errs, err := d.runner.Run(turnCtx, d.key, core.NewTextContent(core.RoleUser, query))
	if err != nil {
		return "", fmt.Errorf("start turn: %w", err)
	}

	var (
		answer   string
		answered bool
		escalate *EscalationError
	)

	for ev := range events {
		if ev.IsPartial() {
			continue
		}
		if ev.IsError() || ev.IsEscalation() {
			escalate = escalationFrom(ev)
			continue
		}
		if ev.IsFinalResponse() && ev.Content != nil {
			answer, answered = ev.Text(), true
		}
	}

	var runErr error
	for e := range errs {
		runErr = e
	}

	if errors.Is(turnCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		_ = d.runner.Cancel(runID)
		d.logger.Warn("conversation.turn.timeout", "run_id", runID, "timeout", d.timeout.String())
		return "", fmt.Errorf("%w after %s", ErrTurnTimeout, d.timeout)
	}

	switch {
	case runErr != nil:
		return "", fmt.Errorf("turn failed: %w", runErr)
	case escalate != nil:
		return "", escalate
	case !answered:
		return "", ErrNoFinalResponse
	}

	d.logger.Info("conversation.turn.complete", "run_id", runID, "response", answer)

	return answer, nil
}

// SetState writes a session state entry through the store API, for example
// a user preference changed outside the agent.
func (d *Driver) SetState(ctx context.Context, key string, value any) error {
	return d.runner.SessionStore().SetState(ctx, d.key, key, value)
}

// State returns a snapshot of the session state.
func (d *Driver) State(ctx context.Context) (map[string]any, error) {
	sess, err := d.runner.SessionStore().Get(ctx, d.key)
	if err != nil {
		return nil, err
	}
	return sess.StateSnapshot(), nil
}

func escalationFrom(ev core.Event) *EscalationError {
	e := &EscalationError{Author: ev.Author, Message: ev.Text()}
	if ev.ErrorCode != nil {
		e.Code = *ev.ErrorCode
	}
	if ev.ErrorMessage != nil {
		e.Message = *ev.ErrorMessage
	}
	return e
}
