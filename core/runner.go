package core

import "context"

// Runner executes a root agent within a conversational session.
//
// Semantics:
//   - Events of one run are delivered in the order the agent produced them.
//   - The events channel is closed when the run completes; the error channel
//     carries at most one terminal error then closes.
//   - Context cancellation or Cancel(runID) stops further emission.
type Runner interface {
	// Run starts an asynchronous run for the session identified by key with
	// userContent as input. The immediate error covers startup failures such
	// as a missing session.
	Run(ctx context.Context, key SessionKey, userContent Content) (string, <-chan Event, <-chan error, error)

	// Cancel requests cooperative termination of an in-flight run.
	Cancel(runID string) error
}
