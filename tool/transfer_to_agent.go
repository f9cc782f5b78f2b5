package tool

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Ygeth/adkProject/core"
)

// TransferToAgentName is the function name the flow injects for agents
// that own sub-agents.
const TransferToAgentName = "transfer_to_agent"

// transferToAgentTool hands the turn over to a named sub-agent.
type transferToAgentTool struct {
	targets []string
}

// NewTransferToAgentTool constructs the transfer tool. targets lists the
// agent names the model may choose from; an empty list accepts any name.
func NewTransferToAgentTool(targets ...string) Tool {
	return &transferToAgentTool{targets: targets}
}

func (t *transferToAgentTool) Name() string { return TransferToAgentName }

func (t *transferToAgentTool) Description() string {
	d := "Transfer the conversation to another agent by name. Use when another agent is better suited."
	if len(t.targets) > 0 {
		d += " Available agents: " + strings.Join(t.targets, ", ") + "."
	}
	return d
}

func (t *transferToAgentTool) Parameters() map[string]any {
	agent := map[string]any{"type": "string", "description": "Target agent name"}
	if len(t.targets) > 0 {
		agent["enum"] = t.targets
	}
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"agent": agent},
		"required":   []string{"agent"},
	}
}

func (t *transferToAgentTool) Call(tc *core.ToolContext, args map[string]any) (any, error) {
	agentName, _ := args["agent"].(string)
	if agentName == "" {
		return nil, NewToolError(TransferToAgentName, "field 'agent' must be non-empty string", CodeValidation)
	}
	if len(t.targets) > 0 && !slices.Contains(t.targets, agentName) {
		return nil, NewToolError(TransferToAgentName, fmt.Sprintf("unknown agent '%s'", agentName), CodeValidation)
	}
	tc.TransferToAgent(agentName)
	return map[string]any{"transferred": true, "agent": agentName}, nil
}
