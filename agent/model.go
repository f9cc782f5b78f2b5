package agent

import (
	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/flow"
	"github.com/Ygeth/adkProject/model"
	"github.com/Ygeth/adkProject/tool"
)

// ModelAgentOptions configures a ModelAgent.
type ModelAgentOptions struct {
	Description        string
	Instruction        Instruction
	Tools              []tool.Tool
	OutputKey          string
	EnableStreaming    bool
	MaxHistoryMessages int
	FlowOptions        []func(o *flow.Options)
}

// ModelAgent is an agent whose behaviour is decided by a language model
// with a fixed instruction and tool set.
type ModelAgent struct {
	BaseAgent

	llm                model.Model
	instruction        Instruction
	tools              []tool.Tool
	outputKey          string
	enableStreaming    bool
	maxHistoryMessages int
	flowOpts           []func(o *flow.Options)
}

var (
	_ core.Agent       = (*ModelAgent)(nil)
	_ core.OutputKeyed = (*ModelAgent)(nil)
	_ flow.Agent       = (*ModelAgent)(nil)
)

// NewModelAgent creates a ModelAgent named name answering with llm.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:        NewInstructionFromText("You are " + name + ", a helpful assistant."),
		MaxHistoryMessages: 50,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:          NewBaseAgent(name, opts.Description),
		llm:                llm,
		instruction:        opts.Instruction,
		tools:              append([]tool.Tool(nil), opts.Tools...),
		outputKey:          opts.OutputKey,
		enableStreaming:    opts.EnableStreaming,
		maxHistoryMessages: opts.MaxHistoryMessages,
		flowOpts:           opts.FlowOptions,
	}
	a.Bind(a)
	return a
}

// Model implements flow.Agent.
func (a *ModelAgent) Model() model.Model { return a.llm }

// ResolveInstructions implements flow.Agent.
func (a *ModelAgent) ResolveInstructions(rc *core.RunContext) (string, error) {
	return a.instruction.Resolve(rc)
}

// Tools returns a copy of the agent's tools.
func (a *ModelAgent) Tools() []tool.Tool { return append([]tool.Tool(nil), a.tools...) }

// IsStreamingEnabled implements flow.Agent.
func (a *ModelAgent) IsStreamingEnabled() bool { return a.enableStreaming }

// MaxHistoryMessages implements flow.Agent.
func (a *ModelAgent) MaxHistoryMessages() int { return a.maxHistoryMessages }

// OutputKey implements core.OutputKeyed.
func (a *ModelAgent) OutputKey() string { return a.outputKey }

// Run executes one turn of the agent through a flow.
func (a *ModelAgent) Run(rc *core.RunContext) error {
	rc.LogDebug("agent.run.start", "agent", a.Name(), "run", rc.RunID, "tools", len(a.tools), "sub_agents", len(a.SubAgents()))

	if err := flow.New(a, a.flowOpts...).Run(rc); err != nil {
		rc.LogError("agent.run.error", "agent", a.Name(), "error", err.Error())
		return err
	}

	rc.LogDebug("agent.run.complete", "agent", a.Name())
	return nil
}
