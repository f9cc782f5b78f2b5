package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ygeth/adkProject/logging"
	"github.com/Ygeth/adkProject/model"
	"github.com/Ygeth/adkProject/model/gemini"
	"github.com/Ygeth/adkProject/session"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"AGENT_MODEL":      "gpt-4o-mini",
		"ROOT_AGENT_MODEL": "gpt-4o",
	}))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.AgentModel)
	assert.Equal(t, "gpt-4o", cfg.RootAgentModel)
	assert.Equal(t, ProviderOpenAI, cfg.ModelProvider)
	assert.Equal(t, "weather_tutorial_app", cfg.AppName)
	assert.Equal(t, logging.LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "adk:session:", cfg.Redis.Prefix)
	assert.Zero(t, cfg.Redis.TTL)
	assert.Equal(t, 45*time.Second, cfg.TurnTimeout)
	assert.Equal(t, uint32(5), cfg.BreakerMaxFailures)
	assert.Equal(t, "off", cfg.Tracing)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"AGENT_MODEL":          "claude-3-5-haiku-latest",
		"ROOT_AGENT_MODEL":     "claude-3-5-sonnet-latest",
		"MODEL_PROVIDER":       "Anthropic",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "json",
		"SESSION_BACKEND":      "redis",
		"REDIS_ADDR":           "redis:6380",
		"REDIS_DB":             "2",
		"REDIS_TTL":            "24h",
		"TURN_TIMEOUT":         "10s",
		"BREAKER_MAX_FAILURES": "3",
		"TRACING":              "stdout",
	}))
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.ModelProvider)
	assert.Equal(t, logging.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, BackendRedis, cfg.SessionBackend)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 10*time.Second, cfg.TurnTimeout)
	assert.Equal(t, uint32(3), cfg.BreakerMaxFailures)
	assert.Equal(t, "stdout", cfg.Tracing)
}

func TestFromLookup_ReportsEveryProblem(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{
		"ROOT_AGENT_MODEL": "  ",
		"MODEL_PROVIDER":   "mistral",
		"TURN_TIMEOUT":     "soon",
		"REDIS_DB":         "-1",
	}))
	require.Error(t, err)

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "AGENT_MODEL", cfgErr.Var)

	msg := err.Error()
	for _, v := range []string{"AGENT_MODEL", "ROOT_AGENT_MODEL", "MODEL_PROVIDER", "TURN_TIMEOUT", "REDIS_DB"} {
		assert.Contains(t, msg, v)
	}
}

func TestFromLookup_Gemini(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"AGENT_MODEL":            "gemini-2.0-flash",
		"MODEL_GEMINI_2_0_FLASH": "gemini-2.0-flash",
		"MODEL_PROVIDER":         "gemini",
	}))
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.ModelProvider)
	assert.Equal(t, "gemini-2.0-flash", cfg.RootAgentModel, "falls back to MODEL_GEMINI_2_0_FLASH")
}

func TestFromLookup_RootModelWinsOverGeminiFallback(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"AGENT_MODEL":            "gpt-4o-mini",
		"ROOT_AGENT_MODEL":       "gpt-4o",
		"MODEL_GEMINI_2_0_FLASH": "gemini-2.0-flash",
	}))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.RootAgentModel)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AGENT_MODEL=from-file\nROOT_AGENT_MODEL=root-from-file\n"), 0o600))

	t.Setenv("AGENT_MODEL", "from-env")
	t.Setenv("ROOT_AGENT_MODEL", "")
	require.NoError(t, os.Unsetenv("ROOT_AGENT_MODEL"))

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AgentModel, "environment wins over the file")
	assert.Equal(t, "root-from-file", cfg.RootAgentModel)
}

func TestSplitModelID(t *testing.T) {
	p, id := SplitModelID("anthropic/claude-3-5-haiku-latest", ProviderOpenAI)
	assert.Equal(t, ProviderAnthropic, p)
	assert.Equal(t, "claude-3-5-haiku-latest", id)

	p, id = SplitModelID("gpt-4o", ProviderOpenAI)
	assert.Equal(t, ProviderOpenAI, p)
	assert.Equal(t, "gpt-4o", id)

	p, id = SplitModelID("gemini/gemini-2.0-flash", ProviderOpenAI)
	assert.Equal(t, ProviderGemini, p)
	assert.Equal(t, "gemini-2.0-flash", id)

	p, id = SplitModelID("meta/llama", ProviderAnthropic)
	assert.Equal(t, ProviderAnthropic, p)
	assert.Equal(t, "meta/llama", id)
}

func TestModelRegistry_WrapsInBreaker(t *testing.T) {
	cfg := &Config{ModelProvider: ProviderOpenAI, BreakerMaxFailures: 2}
	reg := cfg.ModelRegistry(logging.NoOpLogger{})

	m, err := reg.Resolve("anthropic/claude-3-5-haiku-latest")
	require.NoError(t, err)
	b, ok := m.(*model.Breaker)
	require.True(t, ok)
	assert.Equal(t, "anthropic", b.Info().Provider)

	again, err := reg.Resolve("anthropic/claude-3-5-haiku-latest")
	require.NoError(t, err)
	assert.Same(t, m, again)

	m, err = reg.Resolve("gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai", m.Info().Provider)
}

func TestModelRegistry_Gemini(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "test-key")
	cfg := &Config{ModelProvider: ProviderGemini, BreakerMaxFailures: 2}
	reg := cfg.ModelRegistry(logging.NoOpLogger{})

	m, err := reg.Resolve("gemini-2.0-flash")
	require.NoError(t, err)
	assert.Equal(t, model.Info{Name: "gemini-2.0-flash", Provider: "gemini", SupportsTools: true}, m.Info())

	m, err = reg.Resolve("gemini/gemini-1.5-pro")
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", m.Info().Name)
}

func TestModelRegistry_GeminiWithoutKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	cfg := &Config{ModelProvider: ProviderOpenAI, BreakerMaxFailures: 2}

	_, err := cfg.ModelRegistry(logging.NoOpLogger{}).Resolve("gemini/gemini-2.0-flash")
	assert.ErrorIs(t, err, gemini.ErrNoAPIKey)
}

func TestSessionStore_Memory(t *testing.T) {
	cfg := &Config{SessionBackend: BackendMemory}
	store, closeFn, err := cfg.SessionStore(context.Background(), logging.NoOpLogger{})
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeFn()) }()
	assert.IsType(t, &session.InMemoryStore{}, store)
}
