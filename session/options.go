package session

import "github.com/Ygeth/adkProject/logging"

// Options configure the session stores in this package tree.
type Options struct {
	// Overwrite makes Create replace an existing session for the same key
	// instead of failing with core.ErrSessionExists.
	Overwrite bool
	// NewID generates ids for Create calls that leave SessionID empty.
	NewID  func() string
	Logger logging.Logger
}

// DefaultOptions returns the fail-on-duplicate configuration.
func DefaultOptions() Options {
	return Options{NewID: NewSessionID, Logger: logging.NoOpLogger{}}
}

// WithOverwrite lets Create replace an existing session.
func WithOverwrite() func(o *Options) {
	return func(o *Options) { o.Overwrite = true }
}

// WithLogger sets the store logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) func(o *Options) {
	return func(o *Options) {
		if fn != nil {
			o.NewID = fn
		}
	}
}

// Apply builds Options from DefaultOptions and optFns.
func Apply(optFns ...func(o *Options)) Options {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}
