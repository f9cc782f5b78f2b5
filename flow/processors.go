package flow

import (
	"fmt"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/internal/util"
	"github.com/Ygeth/adkProject/model"
)

// InstructionsProcessor resolves the agent instruction and renders it as a
// template over the current session state.
type InstructionsProcessor struct{}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor { return &InstructionsProcessor{} }

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest sets req.Instructions.
func (p *InstructionsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent Agent) error {
	text, err := agent.ResolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("resolve instruction: %w", err)
	}

	rendered, err := util.RenderTemplate(text, runCtx.StateView())
	if err != nil {
		return fmt.Errorf("render instruction: %w", err)
	}

	runCtx.LogDebug("flow.instruction.resolved", "agent", agent.Name(), "length", len(rendered))
	req.Instructions = rendered
	return nil
}

// ContentsProcessor copies the conversation history into the request.
type ContentsProcessor struct{}

// NewContentsProcessor creates a new contents processor.
func NewContentsProcessor() *ContentsProcessor { return &ContentsProcessor{} }

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest sets req.Contents from the session history, newest last.
// A truncated window never starts with function responses whose calls were
// cut off, since providers reject those.
func (p *ContentsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent Agent) error {
	events := runCtx.GetSessionHistory()

	if limit := agent.MaxHistoryMessages(); limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
		for len(events) > 0 && len(events[0].GetFunctionResponses()) > 0 {
			events = events[1:]
		}
	}

	contents := make([]core.Content, 0, len(events))
	for _, ev := range events {
		if ev.Content == nil || len(ev.Content.Parts) == 0 || ev.IsError() {
			continue
		}
		contents = append(contents, *ev.Content)
	}

	req.Contents = contents
	return nil
}
