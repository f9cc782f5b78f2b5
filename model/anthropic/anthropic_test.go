package anthropic

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/model"
)

func TestToMessages_ToolResultsInUserMessage(t *testing.T) {
	contents := []core.Content{
		core.NewTextContent(core.RoleUser, "Weather in London and Tokyo?"),
		{Role: core.RoleAssistant, Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "a", Name: "get_weather", Arguments: `{"city":"London"}`}},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "b", Name: "get_weather", Arguments: `{"city":"Tokyo"}`}},
		}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "a", Name: "get_weather", Response: "cloudy"}}}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "b", Name: "get_weather", Error: "boom"}}}},
		core.NewTextContent(core.RoleAssistant, "Done."),
	}

	msgs := toMessages(contents)
	require.Len(t, msgs, 4)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Len(t, msgs[1].Content, 2)

	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "a", msgs[2].Content[0].OfToolResult.ToolUseID)
	assert.Equal(t, "b", msgs[2].Content[1].OfToolResult.ToolUseID)

	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[3].Role)
}

func TestSystemBlocks(t *testing.T) {
	blocks := systemBlocks(model.Request{
		Instructions: "Be helpful.",
		Contents:     []core.Content{core.NewTextContent(core.RoleSystem, "Extra.")},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "Be helpful.", blocks[0].Text)
	assert.Equal(t, "Extra.", blocks[1].Text)
}

func TestToTools_CarriesDescription(t *testing.T) {
	tools := toTools([]model.ToolDefinition{model.NewFunctionDefinition("say_hello", "Greets.", map[string]any{
		"type":       "object",
		"properties": map[string]any{"name": map[string]any{"type": "string"}},
		"required":   []any{"name"},
	})})
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].OfTool)
	assert.Equal(t, "say_hello", tools[0].OfTool.Name)
	assert.Equal(t, "Greets.", tools[0].OfTool.Description.Value)
	assert.Equal(t, []string{"name"}, tools[0].OfTool.InputSchema.Required)
}
