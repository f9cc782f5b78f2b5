package adkproject

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ygeth/adkProject/agent"
	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/model"
)

var key = core.SessionKey{AppName: "weather_tutorial_app", UserID: "user_1", SessionID: "session_001"}

func TestApp_InvokeSync(t *testing.T) {
	ctx := context.Background()
	m := model.NewScriptedModel("m", model.Reply("Tokyo is experiencing light rain."))
	app := New(agent.NewModelAgent("weather_agent_v1", m))

	_, err := app.NewSession(ctx, key, nil)
	require.NoError(t, err)

	runID, events, err := app.InvokeSync(ctx, key, "How about Tokyo?")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, runID, events[0].InvocationID)
	assert.Equal(t, "Tokyo is experiencing light rain.", events[0].Text())

	sess, err := app.SessionStore().Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, sess.GetEvents(), 2)
}

func TestApp_Conversation(t *testing.T) {
	ctx := context.Background()
	m := model.NewScriptedModel("m", model.Reply("Hello!"))
	app := New(agent.NewModelAgent("greeting_agent", m))

	_, err := app.NewSession(ctx, key, nil)
	require.NoError(t, err)

	answer, err := app.Conversation(key).Ask(ctx, "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", answer)
}

func TestApp_InvokeSyncPropagatesRunError(t *testing.T) {
	ctx := context.Background()
	app := New(agent.NewModelAgent("a", model.NewScriptedModel("m")))
	_, err := app.NewSession(ctx, key, nil)
	require.NoError(t, err)

	_, _, err = app.InvokeSync(ctx, key, "hi")
	assert.ErrorIs(t, err, model.ErrScriptExhausted)
}
