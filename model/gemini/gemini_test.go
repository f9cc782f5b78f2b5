package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/model"
)

func TestToContents(t *testing.T) {
	contents := toContents([]core.Content{
		core.NewTextContent(core.RoleSystem, "ignored here"),
		core.NewTextContent(core.RoleUser, "Weather in London?"),
		{Role: core.RoleAssistant, Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "call_1", Name: "get_weather", Arguments: `{"city":"London"}`}},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "call_2", Name: "get_current_time", Arguments: `{"city":"London"}`}},
		}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
			ID: "call_1", Name: "get_weather", Response: map[string]any{"status": "success", "report": "Cloudy"},
		}}}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{
			ID: "call_2", Name: "get_current_time", Response: "10:00",
		}}}},
		core.NewTextContent(core.RoleAssistant, "It's cloudy."),
	})

	require.Len(t, contents, 4)
	assert.Equal(t, roleUser, contents[0].Role)
	assert.Equal(t, []genai.Part{genai.Text("Weather in London?")}, contents[0].Parts)

	assert.Equal(t, roleModel, contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	assert.Equal(t, genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "London"}}, contents[1].Parts[0])

	assert.Equal(t, roleUser, contents[2].Role, "tool results travel as one user turn")
	require.Len(t, contents[2].Parts, 2)
	assert.Equal(t, genai.FunctionResponse{
		Name:     "get_weather",
		Response: map[string]any{"status": "success", "report": "Cloudy"},
	}, contents[2].Parts[0])
	assert.Equal(t, genai.FunctionResponse{
		Name:     "get_current_time",
		Response: map[string]any{"result": "10:00"},
	}, contents[2].Parts[1])

	assert.Equal(t, roleModel, contents[3].Role)
}

func TestResponseMap_Error(t *testing.T) {
	got := responseMap(core.FunctionResponse{Name: "get_weather", Error: "boom"})
	assert.Equal(t, map[string]any{"error": "boom"}, got)
}

func TestSystemInstruction(t *testing.T) {
	assert.Nil(t, systemInstruction(model.Request{}))

	got := systemInstruction(model.Request{
		Instructions: "You are a weather agent.",
		Contents:     []core.Content{core.NewTextContent(core.RoleSystem, "Be brief.")},
	})
	require.NotNil(t, got)
	assert.Equal(t, []genai.Part{genai.Text("You are a weather agent."), genai.Text("Be brief.")}, got.Parts)
}

func TestToTools(t *testing.T) {
	tools := toTools([]model.ToolDefinition{
		model.NewFunctionDefinition("get_weather", "Retrieves the weather.", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city": map[string]any{"type": "string", "description": "City name"},
				"unit": map[string]any{"type": "string", "enum": []any{"Celsius", "Fahrenheit"}},
				"tags": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
			"required": []string{"city"},
		}),
	})

	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 1)
	decl := tools[0].FunctionDeclarations[0]
	assert.Equal(t, "get_weather", decl.Name)
	assert.Equal(t, "Retrieves the weather.", decl.Description)

	params := decl.Parameters
	require.NotNil(t, params)
	assert.Equal(t, genai.TypeObject, params.Type)
	assert.Equal(t, []string{"city"}, params.Required)
	assert.Equal(t, &genai.Schema{Type: genai.TypeString, Description: "City name"}, params.Properties["city"])
	assert.Equal(t, []string{"Celsius", "Fahrenheit"}, params.Properties["unit"].Enum)
	assert.Equal(t, genai.TypeArray, params.Properties["tags"].Type)
	assert.Equal(t, genai.TypeString, params.Properties["tags"].Items.Type)
}

func TestFromResponse(t *testing.T) {
	resp := fromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: roleModel, Parts: []genai.Part{
				genai.Text("Checking."),
				genai.FunctionCall{Name: "get_weather", Args: map[string]any{"city": "Paris"}},
			}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.UsageMetadata{PromptTokenCount: 7, CandidatesTokenCount: 3, TotalTokenCount: 10},
	})

	assert.Equal(t, core.RoleAssistant, resp.Content.Role)
	assert.Equal(t, "stop", resp.FinishReason)
	require.Len(t, resp.Content.Parts, 2)
	assert.Equal(t, core.TextPart{Text: "Checking."}, resp.Content.Parts[0])

	call, ok := resp.Content.Parts[1].(core.FunctionCallPart)
	require.True(t, ok)
	assert.Equal(t, "get_weather", call.FunctionCall.Name)
	assert.JSONEq(t, `{"city":"Paris"}`, call.FunctionCall.Arguments)
	assert.NotEmpty(t, call.FunctionCall.ID)

	assert.Equal(t, &model.TokenUsage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10}, resp.Usage)
}

func TestFromResponse_MaxTokens(t *testing.T) {
	resp := fromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: roleModel, Parts: []genai.Part{genai.Text("Cut")}},
			FinishReason: genai.FinishReasonMaxTokens,
		}},
	})
	assert.Equal(t, "length", resp.FinishReason)
}

func TestAppendPart_MergesText(t *testing.T) {
	var parts []genai.Part
	parts = appendPart(parts, genai.Text("Hel"))
	parts = appendPart(parts, genai.Text("lo"))
	parts = appendPart(parts, genai.FunctionCall{Name: "get_weather"})
	assert.Equal(t, []genai.Part{genai.Text("Hello"), genai.FunctionCall{Name: "get_weather"}}, parts)
}

func TestNewModel_RequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewModel(context.Background())
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestInfo(t *testing.T) {
	m := NewModelFromClient(nil, WithModel("gemini-2.0-flash"))
	assert.Equal(t, model.Info{Name: "gemini-2.0-flash", Provider: "gemini", SupportsTools: true}, m.Info())
	assert.NoError(t, m.Close())
}
