package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/internal/testutil"
	"github.com/Ygeth/adkProject/model"
	"github.com/Ygeth/adkProject/tool"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(name string) (model.Model, error) {
	args := m.Called(name)
	if mdl, ok := args.Get(0).(model.Model); ok {
		return mdl, args.Error(1)
	}
	return nil, args.Error(1)
}

func echoTool(name string) tool.Tool {
	return tool.NewFunctionTool(name, "echo", map[string]any{"type": "object"},
		func(_ *core.ToolContext, args map[string]any) (any, error) { return args, nil })
}

func teamDescriptor() Descriptor {
	return Descriptor{
		Name:        "weather_agent_v2",
		Model:       "root-model",
		Instruction: "You are the main Weather Agent coordinating a team.",
		Description: "Main agent: handles weather, delegates greetings/farewells.",
		Tools:       []tool.Tool{echoTool("get_weather")},
		SubAgents: []Descriptor{
			{Name: "greeting_agent", Model: "sub-model", Instruction: "Greet the user.", Description: "Handles simple greetings."},
			{Name: "farewell_agent", Model: "sub-model", Instruction: "Say goodbye.", Description: "Handles simple farewells."},
		},
	}
}

func TestBaseAgent_HierarchyAndFind(t *testing.T) {
	root := NewModelAgent("root", nil)
	a := NewModelAgent("a", nil)
	b := NewModelAgent("b", nil)
	require.NoError(t, root.SetSubAgents(a, b))

	assert.Same(t, root, a.Parent())
	assert.Same(t, root, b.Parent())
	assert.Nil(t, root.Parent())
	assert.Len(t, root.SubAgents(), 2)

	found, ok := root.FindAgent("b").(*ModelAgent)
	require.True(t, ok, "FindAgent returns the concrete agent")
	assert.Same(t, b, found)
	assert.Same(t, root, root.FindAgent("root"))
	assert.Nil(t, root.FindAgent("missing"))
	assert.Same(t, root, Root(b))
}

func TestBaseAgent_SetSubAgentsRejectsConflicts(t *testing.T) {
	root := NewModelAgent("root", nil)
	other := NewModelAgent("other", nil)
	child := NewModelAgent("child", nil)

	assert.Error(t, root.SetSubAgents(child, NewModelAgent("child", nil)))
	assert.Empty(t, root.SubAgents())

	require.NoError(t, root.SetSubAgents(child))
	assert.Error(t, other.SetSubAgents(child), "child already has a parent")
	assert.Same(t, root, child.Parent())

	require.NoError(t, root.SetSubAgents())
	assert.Nil(t, child.Parent(), "replaced children are detached")
}

func TestInstruction(t *testing.T) {
	static := NewInstructionFromText("Be brief.")
	assert.True(t, static.IsStatic())
	text, err := static.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", text)

	dynamic := NewInstructionFromFunc(func(rc *core.RunContext) (string, error) {
		return "Helping " + rc.Key.UserID, nil
	})
	assert.False(t, dynamic.IsStatic())
	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).Store(t)
	rc, _ := testutil.RunContext(t, store, sess, "a")
	text, err = dynamic.Resolve(rc)
	require.NoError(t, err)
	assert.Equal(t, "Helping user_state_demo", text)
}

func TestDescriptor_Validate(t *testing.T) {
	require.NoError(t, teamDescriptor().Validate())

	bad := teamDescriptor()
	bad.Name = "weather agent"
	bad.SubAgents[1].Name = "greeting_agent"
	bad.SubAgents[0].Model = ""
	bad.Tools = append(bad.Tools, echoTool("get_weather"))

	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"weather agent" must be an identifier`)
	assert.Contains(t, err.Error(), `"greeting_agent" used twice`)
	assert.Contains(t, err.Error(), "model is required")
	assert.Contains(t, err.Error(), `tool "get_weather" registered twice`)
}

func TestNew_BuildsTree(t *testing.T) {
	rootModel := model.NewScriptedModel("root-model")
	subModel := model.NewScriptedModel("sub-model")

	resolver := new(MockResolver)
	resolver.On("Resolve", "root-model").Return(rootModel, nil).Once()
	resolver.On("Resolve", "sub-model").Return(subModel, nil).Twice()

	root, err := New(teamDescriptor(), resolver, func(o *ModelAgentOptions) { o.MaxHistoryMessages = 10 })
	require.NoError(t, err)
	resolver.AssertExpectations(t)

	assert.Equal(t, "weather_agent_v2", root.Name())
	assert.Same(t, rootModel, root.Model())
	assert.Equal(t, "Main agent: handles weather, delegates greetings/farewells.", root.Description())
	assert.Len(t, root.Tools(), 1)
	assert.Equal(t, 10, root.MaxHistoryMessages())
	assert.False(t, root.IsStreamingEnabled())

	subs := root.SubAgents()
	require.Len(t, subs, 2)
	assert.Equal(t, "greeting_agent", subs[0].Name())
	assert.Equal(t, "farewell_agent", subs[1].Name())
	greeting := root.FindAgent("greeting_agent").(*ModelAgent)
	assert.Same(t, subModel, greeting.Model())
	assert.Same(t, root, greeting.Parent())

	text, err := greeting.ResolveInstructions(nil)
	require.NoError(t, err)
	assert.Equal(t, "Greet the user.", text)
}

func TestNew_ResolverFailure(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("Resolve", "root-model").Return(model.NewScriptedModel("root-model"), nil)
	resolver.On("Resolve", "sub-model").Return(nil, errors.New("unknown provider"))

	_, err := New(teamDescriptor(), resolver)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `agent "greeting_agent"`)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNew_InvalidDescriptorSkipsResolution(t *testing.T) {
	resolver := new(MockResolver)
	_, err := New(Descriptor{Name: "x"}, resolver)
	require.Error(t, err)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything)
}

func TestModelAgent_RunDelegatesToSubAgent(t *testing.T) {
	registry := model.NewRegistry(nil)
	rootModel := model.NewScriptedModel("root-model",
		model.Call(tool.TransferToAgentName, map[string]string{"agent": "farewell_agent"}))
	subModel := model.NewScriptedModel("sub-model", model.Reply("Goodbye! Have a great day."))
	registry.Register("root-model", rootModel)
	registry.Register("sub-model", subModel)

	root, err := New(teamDescriptor(), registry)
	require.NoError(t, err)

	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).Store(t)
	rc, rec := testutil.PersistingRunContext(t, store, sess, root.Name(), "Thanks, bye!")
	require.NoError(t, root.Run(rc))

	events := rec.Close()
	require.Len(t, events, 3)
	last := events[len(events)-1]
	assert.Equal(t, "farewell_agent", last.Author)
	assert.Equal(t, "Goodbye! Have a great day.", last.Text())

	reqs := subModel.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Say goodbye.", reqs[0].Instructions)
	assert.Len(t, sess.GetEvents(), 4, "user, call, response, final")
}

func TestModelAgent_OutputKey(t *testing.T) {
	a := NewModelAgent("weather_agent_v4_stateful", model.NewScriptedModel("m"), func(o *ModelAgentOptions) {
		o.OutputKey = "last_weather_report"
		o.EnableStreaming = true
	})
	var keyed core.OutputKeyed = a
	assert.Equal(t, "last_weather_report", keyed.OutputKey())
	assert.True(t, a.IsStreamingEnabled())

	text, err := a.ResolveInstructions(nil)
	require.NoError(t, err)
	assert.Equal(t, "You are weather_agent_v4_stateful, a helpful assistant.", text)
}
