// Package runner drives one conversational turn of a root agent against a
// session store.
//
// The Runner is the coordination hub between a caller (usually the
// conversation driver) and the agent tree:
//   - it appends the user message to the session history
//   - runs the root agent in its own goroutine
//   - applies each emitted event's state delta, persists the event and then
//     signals the agent to continue
//   - forwards every event, partial ones included, to the caller
//   - saves the final response text under the output key of the agent that
//     produced it
//
// Each run is traced with an OpenTelemetry span and can be cancelled by id.
package runner
