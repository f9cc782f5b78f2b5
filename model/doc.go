// Package model holds the provider-neutral generation contract used by the
// flow: Request in, a stream of Responses out.
//
// Vendor adapters live in the openai and anthropic subpackages. ScriptedModel
// replays canned turns for tests and offline demos, and Breaker wraps any
// Model in a circuit breaker so a failing provider is not hammered.
package model
