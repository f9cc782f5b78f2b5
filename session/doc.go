// Package session houses concrete implementations of core.SessionStore.
// The contract (and the Session struct) live in the core package so agents
// and tools never depend on a concrete backend.
//
// InMemoryStore keeps live sessions in a process local map; the redis
// sub-package persists the same documents durably. Only the wiring layer
// decides which implementation to instantiate.
package session
