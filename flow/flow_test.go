package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/internal/testutil"
	"github.com/Ygeth/adkProject/model"
	"github.com/Ygeth/adkProject/tool"
)

type stubAgent struct {
	name        string
	instruction string
	llm         model.Model
	tools       []tool.Tool
	subs        []core.Agent
	parent      core.Agent
	stream      bool
	history     int
}

func (a *stubAgent) Name() string                  { return a.name }
func (a *stubAgent) Description() string           { return "stub " + a.name }
func (a *stubAgent) Run(rc *core.RunContext) error { return New(a).Run(rc) }
func (a *stubAgent) SubAgents() []core.Agent       { return a.subs }
func (a *stubAgent) Parent() core.Agent            { return a.parent }
func (a *stubAgent) Model() model.Model            { return a.llm }
func (a *stubAgent) Tools() []tool.Tool            { return a.tools }
func (a *stubAgent) IsStreamingEnabled() bool      { return a.stream }
func (a *stubAgent) MaxHistoryMessages() int       { return a.history }
func (a *stubAgent) ResolveInstructions(*core.RunContext) (string, error) {
	return a.instruction, nil
}

func (a *stubAgent) SetSubAgents(children ...core.Agent) error {
	a.subs = children
	for _, c := range children {
		if s, ok := c.(*stubAgent); ok {
			s.parent = a
		}
	}
	return nil
}

func (a *stubAgent) FindAgent(name string) core.Agent {
	if a.name == name {
		return a
	}
	for _, s := range a.subs {
		if found := s.FindAgent(name); found != nil {
			return found
		}
	}
	return nil
}

type cityArgs struct {
	City string `json:"city" description:"City name"`
}

func recordingTool() tool.Tool {
	return tool.NewTypedTool("get_weather_stateful", "Weather with unit preference.", func(tc *core.ToolContext, a cityArgs) (any, error) {
		unit, _ := tc.GetState("user_preference_temperature_unit")
		tc.SetState("last_city_checked_stateful", a.City)
		return map[string]any{"status": "success", "report": a.City + " in " + unit.(string)}, nil
	})
}

func TestFlow_FinalAnswerWithoutTools(t *testing.T) {
	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).Store(t)
	rc, rec := testutil.PersistingRunContext(t, store, sess, "weather_agent", "hello")

	m := model.NewScriptedModel("scripted", model.Reply("Hi there."))
	require.NoError(t, New(&stubAgent{name: "weather_agent", llm: m}).Run(rc))

	events := rec.Close()
	require.Len(t, events, 1)
	assert.True(t, events[0].IsFinalResponse())
	assert.Equal(t, "Hi there.", events[0].Text())
	assert.Equal(t, "weather_agent", events[0].Author)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Contents, 1)
	assert.Equal(t, core.RoleUser, reqs[0].Contents[0].Role)
	assert.Empty(t, reqs[0].Tools)
}

func TestFlow_ToolLoopPersistsStateBetweenSteps(t *testing.T) {
	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).
		State("user_preference_temperature_unit", "Fahrenheit").
		Store(t)
	rc, rec := testutil.PersistingRunContext(t, store, sess, "weather_agent_v4_stateful", "Weather in New York?")

	m := model.NewScriptedModel("scripted",
		model.Call("get_weather_stateful", map[string]string{"city": "New York"}),
		model.Replyf(func(req model.Request) string { return "Result: " + model.LastToolOutput(req) }),
	)
	a := &stubAgent{
		name:        "weather_agent_v4_stateful",
		instruction: "Unit is {{.user_preference_temperature_unit}}.",
		llm:         m,
		tools:       []tool.Tool{recordingTool()},
	}
	require.NoError(t, New(a).Run(rc))

	events := rec.Close()
	require.Len(t, events, 3)
	assert.Len(t, events[0].GetFunctionCalls(), 1)
	require.Len(t, events[1].GetFunctionResponses(), 1)
	assert.Equal(t, "New York", events[1].Actions.StateDelta["last_city_checked_stateful"])
	assert.True(t, events[2].IsFinalResponse())

	v, ok := sess.GetState("last_city_checked_stateful")
	require.True(t, ok)
	assert.Equal(t, "New York", v)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Unit is Fahrenheit.", reqs[0].Instructions)
	require.Len(t, reqs[0].Tools, 1)
	assert.Equal(t, "get_weather_stateful", reqs[0].Tools[0].Function.Name)
	assert.Len(t, reqs[1].Contents, 3, "user, call, response")
	assert.Contains(t, events[2].Text(), "New York in Fahrenheit")
}

func TestFlow_UnknownToolIsReportedToModel(t *testing.T) {
	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).Store(t)
	rc, rec := testutil.PersistingRunContext(t, store, sess, "weather_agent", "?")

	m := model.NewScriptedModel("scripted", model.Call("does_not_exist", nil), model.Reply("Sorry."))
	require.NoError(t, New(&stubAgent{name: "weather_agent", llm: m}).Run(rc))

	events := rec.Close()
	require.Len(t, events, 3)
	fr := events[1].GetFunctionResponses()
	require.Len(t, fr, 1)
	assert.Contains(t, fr[0].Error, tool.CodeNotFound)
}

func TestFlow_TransferRunsSubAgent(t *testing.T) {
	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).Store(t)
	rc, rec := testutil.PersistingRunContext(t, store, sess, "weather_agent_v2", "Hi!")

	rootModel := model.NewScriptedModel("root", model.Call(tool.TransferToAgentName, map[string]string{"agent": "greeting_agent"}))
	greetModel := model.NewScriptedModel("greet", model.Reply("Hello, friend!"))

	root := &stubAgent{name: "weather_agent_v2", llm: rootModel}
	greeting := &stubAgent{name: "greeting_agent", llm: greetModel}
	require.NoError(t, root.SetSubAgents(greeting, &stubAgent{name: "farewell_agent"}))

	require.NoError(t, root.Run(rc))

	events := rec.Close()
	require.Len(t, events, 3)
	require.NotNil(t, events[1].Actions.TransferToAgent)
	assert.Equal(t, "greeting_agent", *events[1].Actions.TransferToAgent)
	assert.Equal(t, "greeting_agent", events[2].Author)
	assert.Equal(t, "Hello, friend!", events[2].Text())
	assert.Nil(t, events[0].Branch, "the root agent runs on the trunk")
	require.NotNil(t, events[2].Branch)
	assert.Equal(t, "weather_agent_v2.greeting_agent", *events[2].Branch)

	offered := rootModel.Requests()[0].Tools
	require.Len(t, offered, 1)
	assert.Equal(t, tool.TransferToAgentName, offered[0].Function.Name)
	assert.Empty(t, greetModel.Requests()[0].Tools, "leaf agents get no transfer tool")
}

func TestFlow_ModelCallLimit(t *testing.T) {
	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).Store(t)
	rc, rec := testutil.PersistingRunContext(t, store, sess, "weather_agent", "loop")
	rc.Limiter = core.NewModelLimiter(2)

	m := model.NewScriptedModel("scripted",
		model.Call("get_weather_stateful", map[string]string{"city": "a"}),
		model.Call("get_weather_stateful", map[string]string{"city": "b"}),
		model.Call("get_weather_stateful", map[string]string{"city": "c"}),
	)
	require.NoError(t, store.SetState(rc.Context, testutil.DemoKey, "user_preference_temperature_unit", "Celsius"))

	err := New(&stubAgent{name: "weather_agent", llm: m, tools: []tool.Tool{recordingTool()}}).Run(rc)
	assert.ErrorIs(t, err, core.ErrModelCallLimit)
	rec.Close()
	assert.Equal(t, 1, m.Remaining())
}

func TestFlow_ModelErrorPropagates(t *testing.T) {
	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).Store(t)
	rc, rec := testutil.PersistingRunContext(t, store, sess, "weather_agent", "hi")
	defer rec.Close()

	boom := errors.New("rate limited")
	err := New(&stubAgent{name: "weather_agent", llm: model.NewScriptedModel("s", model.Fail(boom))}).Run(rc)
	assert.ErrorIs(t, err, boom)
}

func TestFlow_StreamingEmitsPartials(t *testing.T) {
	store, sess := testutil.NewSessionBuilder(testutil.DemoKey).Store(t)
	rc, rec := testutil.PersistingRunContext(t, store, sess, "weather_agent", "hi")

	a := &stubAgent{name: "weather_agent", llm: model.NewScriptedModel("s", model.Reply("one two")), stream: true}
	require.NoError(t, New(a).Run(rc))

	events := rec.Close()
	require.Len(t, events, 3)
	assert.True(t, events[0].IsPartial())
	assert.True(t, events[1].IsPartial())
	assert.Equal(t, "one two", events[2].Text())

	history := sess.GetEvents()
	assert.Len(t, history, 2, "user message and final answer only")
}
