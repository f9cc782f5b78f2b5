package flow

import (
	"errors"
	"fmt"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/model"
	"github.com/Ygeth/adkProject/tool"
)

// Agent is what the flow needs from a model-backed agent.
type Agent interface {
	core.Agent

	// Model returns the model answering for this agent.
	Model() model.Model

	// ResolveInstructions returns the raw instruction text; the flow renders
	// it against session state.
	ResolveInstructions(runCtx *core.RunContext) (string, error)

	// Tools returns the agent's own tools in registration order.
	Tools() []tool.Tool

	IsStreamingEnabled() bool

	// MaxHistoryMessages bounds the history sent to the model; zero or less
	// sends everything.
	MaxHistoryMessages() int
}

// RequestProcessor contributes to the model request before each call.
type RequestProcessor interface {
	Name() string
	ProcessRequest(runCtx *core.RunContext, req *model.Request, agent Agent) error
}

// ErrEmptyModelResponse is returned when the model stream ends without a
// final response.
var ErrEmptyModelResponse = errors.New("model returned no final response")

// Options configure a Flow.
type Options struct {
	RequestProcessors []RequestProcessor
	Executor          FunctionExecutor
}

// Flow drives one agent through model calls and tool executions until it
// produces a final answer or transfers the turn.
type Flow struct {
	agent      Agent
	processors []RequestProcessor
	executor   FunctionExecutor
}

// New returns a flow for agent with the instruction and history processors
// and a sequential function executor.
func New(agent Agent, optFns ...func(o *Options)) *Flow {
	opts := Options{
		RequestProcessors: []RequestProcessor{NewInstructionsProcessor(), NewContentsProcessor()},
		Executor:          NewFunctionExecutor(FunctionExecutorConfig{MaxParallel: 1}),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Flow{agent: agent, processors: opts.RequestProcessors, executor: opts.Executor}
}

// Run executes the loop. It returns nil once a final response has been
// emitted, after a transfer target finished, or when a tool asked to skip
// summarization or escalate.
func (f *Flow) Run(runCtx *core.RunContext) error {
	for {
		if err := runCtx.Err(); err != nil {
			return err
		}
		if runCtx.Limiter != nil {
			if err := runCtx.Limiter.Increment(); err != nil {
				runCtx.LogWarn("flow.model.limit", "agent", f.agent.Name(), "calls", runCtx.Limiter.Count())
				return err
			}
		}

		tools := f.toolset()
		req, err := f.buildRequest(runCtx, tools)
		if err != nil {
			return err
		}

		resp, err := f.generate(runCtx, req)
		if err != nil {
			return err
		}

		ev := core.NewEvent(runCtx.RunID, f.agent.Name())
		content := resp.Content
		if content.Role == "" {
			content.Role = core.RoleAssistant
		}
		ev.Content = &content
		if err := f.emit(runCtx, ev); err != nil {
			return err
		}

		calls := ev.GetFunctionCalls()
		if len(calls) == 0 {
			runCtx.LogDebug("flow.final", "agent", f.agent.Name(), "event_id", ev.ID)
			return nil
		}

		responses, err := f.executor.Execute(runCtx, f.agent.Name(), tools, calls, func(e core.Event) error {
			return f.emit(runCtx, e)
		})
		if err != nil {
			return err
		}

		if target := transferTarget(responses); target != "" {
			return f.transfer(runCtx, target)
		}
		if stopsTurn(responses) {
			return nil
		}
	}
}

// toolset returns the tools offered in this iteration, in order.
func (f *Flow) toolset() []tool.Tool {
	tools := f.agent.Tools()
	subs := f.agent.SubAgents()
	if len(subs) == 0 {
		return tools
	}

	names := make([]string, 0, len(subs))
	for _, s := range subs {
		names = append(names, s.Name())
	}
	out := make([]tool.Tool, 0, len(tools)+1)
	out = append(out, tools...)
	return append(out, tool.NewTransferToAgentTool(names...))
}

func (f *Flow) buildRequest(runCtx *core.RunContext, tools []tool.Tool) (model.Request, error) {
	req := model.Request{Stream: f.agent.IsStreamingEnabled()}
	for _, p := range f.processors {
		if err := p.ProcessRequest(runCtx, &req, f.agent); err != nil {
			return model.Request{}, fmt.Errorf("request processor %s: %w", p.Name(), err)
		}
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, model.NewFunctionDefinition(t.Name(), t.Description(), t.Parameters()))
	}
	return req, nil
}

// generate calls the model, emitting partial chunks as they stream in, and
// returns the final response.
func (f *Flow) generate(runCtx *core.RunContext, req model.Request) (model.Response, error) {
	m := f.agent.Model()
	if m == nil {
		return model.Response{}, fmt.Errorf("agent %s has no model", f.agent.Name())
	}

	respCh, errCh := m.Generate(runCtx.Context, req)

	var (
		final model.Response
		got   bool
	)
	for respCh != nil || errCh != nil {
		select {
		case <-runCtx.Done():
			return model.Response{}, runCtx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				final, got = r, true
				continue
			}
			partial := core.NewEvent(runCtx.RunID, f.agent.Name())
			partial.Content = &r.Content
			isPartial := true
			partial.Partial = &isPartial
			if err := runCtx.EmitEvent(partial); err != nil {
				return model.Response{}, err
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				runCtx.LogError("flow.model.error", "agent", f.agent.Name(), "model", m.Info().Name, "error", err.Error())
				return model.Response{}, fmt.Errorf("agent %s: model %s: %w", f.agent.Name(), m.Info().Name, err)
			}
		}
	}

	if !got {
		return model.Response{}, fmt.Errorf("agent %s: %w", f.agent.Name(), ErrEmptyModelResponse)
	}
	if final.Usage != nil {
		runCtx.LogDebug("flow.model.usage", "agent", f.agent.Name(), "prompt_tokens", final.Usage.PromptTokens, "completion_tokens", final.Usage.CompletionTokens)
	}
	return final, nil
}

// emit sends ev and, for complete events, waits until it is persisted and
// reloads the session so the next step sees its effects.
func (f *Flow) emit(runCtx *core.RunContext, ev core.Event) error {
	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}
	if ev.IsPartial() {
		return nil
	}
	if err := runCtx.WaitForResume(); err != nil {
		return err
	}
	if runCtx.SessionStore == nil {
		return nil
	}
	if err := runCtx.RefreshSession(); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

func (f *Flow) transfer(runCtx *core.RunContext, name string) error {
	target := f.agent.FindAgent(name)
	if target == nil {
		root := core.Agent(f.agent)
		for p := f.agent.Parent(); p != nil; p = p.Parent() {
			root = p
		}
		target = root.FindAgent(name)
	}
	if target == nil {
		return fmt.Errorf("transfer from %s: agent %q not found", f.agent.Name(), name)
	}

	branch := runCtx.Branch
	if branch == "" {
		branch = f.agent.Name()
	}
	branch += "." + target.Name()

	runCtx.LogInfo("flow.transfer", "from", f.agent.Name(), "to", target.Name(), "branch", branch)
	return target.Run(runCtx.WithAgent(core.AgentInfo{Name: target.Name(), Type: "model"}).WithBranch(branch))
}

func transferTarget(responses []core.Event) string {
	for _, ev := range responses {
		if t := ev.Actions.TransferToAgent; t != nil && *t != "" {
			return *t
		}
	}
	return ""
}

func stopsTurn(responses []core.Event) bool {
	for _, ev := range responses {
		if ev.IsEscalation() {
			return true
		}
		if s := ev.Actions.SkipSummarization; s != nil && *s {
			return true
		}
	}
	return false
}
