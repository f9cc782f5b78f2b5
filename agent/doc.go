// Package agent builds runnable agents from plain descriptors.
//
// A Descriptor names an agent, the model identifier that drives it, its
// instruction, tools, sub-agents and optional output key. New resolves the
// model identifiers and materializes the whole tree as ModelAgents wired
// parent to child. Running a ModelAgent delegates to the flow package.
//
// BaseAgent carries the identity and hierarchy plumbing shared by agent
// implementations; embed it and call Bind with the outer value so lookups
// return the concrete agent.
package agent
