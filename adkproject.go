// Package adkproject provides a small façade over the runner, the session
// store and the conversation driver. Most programs:
//  1. build a root agent (see package weatherteam and agent.New)
//  2. create an App around it, optionally with a durable session store
//  3. open a session and talk to it through a conversation.Driver, or
//     invoke turns directly with Invoke / InvokeSync
//
// Defaults are an in-memory store, a no-op logger and a 45s turn timeout.
package adkproject

import (
	"context"
	"time"

	"github.com/Ygeth/adkProject/conversation"
	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/logging"
	"github.com/Ygeth/adkProject/runner"
	"github.com/Ygeth/adkProject/session"
)

// Options configures the App.
type Options struct {
	// SessionStore persists sessions; defaults to an in-memory store.
	SessionStore core.SessionStore
	// MaxModelCalls bounds model calls per turn.
	MaxModelCalls int
	// TurnTimeout bounds a conversation turn.
	TurnTimeout time.Duration
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// App ties a root agent to a runner and a session store.
type App struct {
	runner  *runner.Runner
	store   core.SessionStore
	timeout time.Duration
	logger  logging.Logger
}

// New creates an App for root. Unset dependencies get in-memory defaults.
func New(root core.Agent, optFns ...func(o *Options)) *App {
	opts := Options{
		MaxModelCalls: 25,
		TurnTimeout:   conversation.DefaultTimeout,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore(session.WithLogger(opts.Logger))
	}

	r := runner.New(root,
		runner.WithSessionStore(opts.SessionStore),
		runner.WithLogger(opts.Logger),
		runner.WithMaxModelCalls(opts.MaxModelCalls),
	)

	return &App{runner: r, store: opts.SessionStore, timeout: opts.TurnTimeout, logger: opts.Logger}
}

// SessionStore returns the backing store.
func (a *App) SessionStore() core.SessionStore { return a.store }

// NewSession creates the session for key seeded with state.
func (a *App) NewSession(ctx context.Context, key core.SessionKey, state map[string]any) (*core.Session, error) {
	return a.store.Create(ctx, key, state)
}

// Conversation returns a driver for the session identified by key.
func (a *App) Conversation(key core.SessionKey) *conversation.Driver {
	return conversation.NewDriver(a.runner, key,
		conversation.WithTimeout(a.timeout),
		conversation.WithLogger(a.logger),
	)
}

// Invoke starts an asynchronous turn returning event and error channels.
func (a *App) Invoke(ctx context.Context, key core.SessionKey, text string) (string, <-chan core.Event, <-chan error, error) {
	return a.runner.Run(ctx, key, core.NewTextContent(core.RoleUser, text))
}

// InvokeSync drains one turn and returns its run id and events.
func (a *App) InvokeSync(ctx context.Context, key core.SessionKey, text string) (string, []core.Event, error) {
	runID, eventsCh, errorsCh, err := a.Invoke(ctx, key, text)
	if err != nil {
		return "", nil, err
	}

	var events []core.Event
	for {
		select {
		case <-ctx.Done():
			_ = a.runner.Cancel(runID)
			return runID, events, ctx.Err()

		case ev, ok := <-eventsCh:
			if !ok {
				// The error channel is closed right after the events channel.
				if err, ok := <-errorsCh; ok {
					return runID, events, err
				}
				return runID, events, nil
			}
			events = append(events, ev)
		}
	}
}
