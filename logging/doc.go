// Package logging provides the minimal Logger interface injected into stores,
// tools, flows and the runner, plus adapters over log/slog.
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping *slog.Logger, built by New from a Config
//   - NoOpLogger for silent operation (tests, minimal setups)
//
// Usage:
//
//	logger := logging.New(logging.Config{Level: logging.LogLevelDebug, Format: "json"})
//	store := session.NewInMemoryStore(session.WithLogger(logger))
//
// Event names are dotted lowercase (tool.call.start, runner.event.delivered)
// followed by key/value attributes.
package logging
