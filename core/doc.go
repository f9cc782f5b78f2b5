// Package core provides the foundational domain types, interfaces and execution
// contexts shared by the agents, tools and stores of the weather assistant:
//
//   - Sessions (key/value state plus event history scoped by app, user and session id)
//   - Events (immutable communication + orchestration records)
//   - RunContext / ToolContext (scoped execution and the state handle given to tools)
//   - SessionStore, the pluggable persistence contract for sessions
//
// Implementation concerns (persistence backends, model providers, concrete
// agents) live in their own packages so this package stays dependency-light.
package core
