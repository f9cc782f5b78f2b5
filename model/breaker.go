package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Ygeth/adkProject/logging"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("model circuit open")

// Default breaker settings.
const (
	defaultMaxFailures uint32        = 5
	defaultTimeout     time.Duration = 30 * time.Second
	defaultInterval    time.Duration = 60 * time.Second
)

// BreakerOptions configures a Breaker.
type BreakerOptions struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a half-open probe.
	Timeout time.Duration
	// Interval clears failure counts periodically while closed.
	Interval time.Duration
	Logger   logging.Logger
}

// WithMaxFailures sets the consecutive failure threshold.
func WithMaxFailures(n uint32) func(o *BreakerOptions) {
	return func(o *BreakerOptions) { o.MaxFailures = n }
}

// WithOpenTimeout sets how long the circuit stays open.
func WithOpenTimeout(d time.Duration) func(o *BreakerOptions) {
	return func(o *BreakerOptions) { o.Timeout = d }
}

// WithBreakerLogger sets the logger for state changes.
func WithBreakerLogger(l logging.Logger) func(o *BreakerOptions) {
	return func(o *BreakerOptions) { o.Logger = l }
}

// Breaker wraps a Model with circuit breaker protection. Once the wrapped
// model fails MaxFailures times in a row further calls fail fast with
// ErrCircuitOpen until Timeout elapses.
type Breaker struct {
	inner Model
	cb    *gobreaker.CircuitBreaker[Response]
}

var _ Model = (*Breaker)(nil)

// NewBreaker wraps inner.
func NewBreaker(inner Model, optFns ...func(o *BreakerOptions)) *Breaker {
	opts := BreakerOptions{
		MaxFailures: defaultMaxFailures,
		Timeout:     defaultTimeout,
		Interval:    defaultInterval,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = defaultMaxFailures
	}

	logger := opts.Logger
	maxFailures := opts.MaxFailures

	cb := gobreaker.NewCircuitBreaker[Response](gobreaker.Settings{
		Name:        "model:" + inner.Info().Name,
		MaxRequests: 1,
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("model.breaker.state", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Breaker{inner: inner, cb: cb}
}

// Info implements Model.
func (b *Breaker) Info() Info { return b.inner.Info() }

// State reports the current circuit state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// Counts reports the breaker's request counters.
func (b *Breaker) Counts() gobreaker.Counts { return b.cb.Counts() }

// Generate implements Model. Partial chunks are forwarded as they arrive;
// the breaker counts the generation as a whole.
func (b *Breaker) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		final, err := b.cb.Execute(func() (Response, error) {
			return b.forward(ctx, req, respCh)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				err = fmt.Errorf("model %q: %w: %w", b.inner.Info().Name, ErrCircuitOpen, err)
			}
			errCh <- err
			return
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- final:
		}
	}()

	return respCh, errCh
}

func (b *Breaker) forward(ctx context.Context, req Request, out chan<- Response) (Response, error) {
	innerResp, innerErr := b.inner.Generate(ctx, req)

	var final Response
	var got bool

	for innerResp != nil || innerErr != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-innerResp:
			if !ok {
				innerResp = nil
				continue
			}
			if !r.Partial {
				final, got = r, true
				continue
			}
			select {
			case out <- r:
			case <-ctx.Done():
				return Response{}, ctx.Err()
			}
		case err, ok := <-innerErr:
			if !ok {
				innerErr = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}

	if !got {
		return Response{}, fmt.Errorf("model %q produced no final response", b.inner.Info().Name)
	}
	return final, nil
}
