package core

// Agent is a processing unit driven by a Runner. Agents receive a RunContext,
// emit events through it and wait for the runner to persist each one before
// continuing.
//
// Implementations must respect context cancellation and wait for Resume after
// every emitted event.
type Agent interface {
	Name() string
	Description() string
	Run(runCtx *RunContext) error
	SetSubAgents(children ...Agent) error
	SubAgents() []Agent
	Parent() Agent
	FindAgent(name string) Agent
}

// OutputKeyed is implemented by agents whose final response text is saved
// into session state under OutputKey after each turn.
type OutputKeyed interface {
	OutputKey() string
}

// AgentInfo carries identifying details about an agent used in contexts & events.
type AgentInfo struct{ Name, Type string }
