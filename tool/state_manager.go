package tool

import (
	"fmt"

	"github.com/Ygeth/adkProject/core"
)

// StateManagerTool lets an agent read and write session state entries, for
// example to record a user's temperature unit preference. Writes go through
// the ToolContext so they are persisted with the function response event.
type StateManagerTool struct {
	name        string
	description string
	allowed     map[string]bool
}

// NewStateManagerTool creates a state tool. When keys are given, only those
// state keys may be read or written.
func NewStateManagerTool(keys ...string) *StateManagerTool {
	var allowed map[string]bool
	if len(keys) > 0 {
		allowed = make(map[string]bool, len(keys))
		for _, k := range keys {
			allowed[k] = true
		}
	}
	return &StateManagerTool{
		name: "state_manager",
		description: "Reads or writes a session state entry. " +
			"Supports operations: get_state, set_state.",
		allowed: allowed,
	}
}

// Name returns the tool identifier.
func (t *StateManagerTool) Name() string { return t.name }

// Description returns the tool description.
func (t *StateManagerTool) Description() string { return t.description }

// Parameters returns the JSON schema for tool parameters.
func (t *StateManagerTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":        "string",
				"enum":        []string{"get_state", "set_state"},
				"description": "The state operation to perform",
			},
			"key": map[string]any{
				"type":        "string",
				"description": "State key",
			},
			"value": map[string]any{
				"description": "Value for set_state (any type)",
			},
		},
		"required": []string{"operation", "key"},
	}
}

// Call implements the Tool interface.
func (t *StateManagerTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	operation, _ := args["operation"].(string)
	key, _ := args["key"].(string)
	if key == "" {
		return nil, NewToolError(t.name, "key parameter is required", CodeValidation)
	}
	if t.allowed != nil && !t.allowed[key] {
		return nil, NewToolError(t.name, fmt.Sprintf("state key '%s' is not accessible", key), CodeValidation)
	}

	switch operation {
	case "get_state":
		value, exists := toolCtx.GetState(key)
		return map[string]any{
			"key":    key,
			"exists": exists,
			"value":  value,
		}, nil
	case "set_state":
		value := args["value"]
		toolCtx.SetState(key, value)
		return map[string]any{
			"key":     key,
			"value":   value,
			"success": true,
			"message": fmt.Sprintf("State key '%s' set successfully", key),
		}, nil
	default:
		return nil, NewToolError(t.name, fmt.Sprintf("unknown operation: %s", operation), CodeValidation)
	}
}
