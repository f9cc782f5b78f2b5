package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/logging"
	"github.com/Ygeth/adkProject/model"
	"github.com/Ygeth/adkProject/model/anthropic"
	"github.com/Ygeth/adkProject/model/gemini"
	"github.com/Ygeth/adkProject/model/openai"
	"github.com/Ygeth/adkProject/session"
	"github.com/Ygeth/adkProject/session/redisstore"
	"github.com/Ygeth/adkProject/telemetry"
)

// Provider names accepted by MODEL_PROVIDER and as model id prefixes.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Session backends accepted by SESSION_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Error reports a missing or invalid environment variable.
type Error struct {
	Var    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Var, e.Reason)
}

// RedisConfig holds the redis backend settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Config is the resolved runtime configuration.
type Config struct {
	AgentModel         string
	RootAgentModel     string
	ModelProvider      string
	AppName            string
	LogLevel           logging.LogLevel
	LogFormat          string
	SessionBackend     string
	Redis              RedisConfig
	TurnTimeout        time.Duration
	BreakerMaxFailures uint32
	Tracing            string
}

// Load reads the given .env files (".env" when none is named; missing files
// are ignored) and then resolves the configuration from the environment.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves the configuration through lookup. All problems are
// reported together.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		AgentModel:     r.required("AGENT_MODEL"),
		RootAgentModel: r.fallback("ROOT_AGENT_MODEL", "MODEL_GEMINI_2_0_FLASH"),
		ModelProvider:  r.oneOf("MODEL_PROVIDER", ProviderOpenAI, ProviderOpenAI, ProviderAnthropic, ProviderGemini),
		AppName:        r.str("APP_NAME", "weather_tutorial_app"),
		LogLevel:       r.level("LOG_LEVEL"),
		LogFormat:      r.oneOf("LOG_FORMAT", "text", "text", "json"),
		SessionBackend: r.oneOf("SESSION_BACKEND", BackendMemory, BackendMemory, BackendRedis),
		Redis: RedisConfig{
			Addr:     r.str("REDIS_ADDR", "localhost:6379"),
			Password: r.str("REDIS_PASSWORD", ""),
			DB:       r.integer("REDIS_DB", 0),
			Prefix:   r.str("REDIS_PREFIX", "adk:session:"),
			TTL:      r.duration("REDIS_TTL", 0),
		},
		TurnTimeout:        r.duration("TURN_TIMEOUT", 45*time.Second),
		BreakerMaxFailures: uint32(r.integer("BREAKER_MAX_FAILURES", 5)),
		Tracing:            r.oneOf("TRACING", telemetry.ExporterOff, telemetry.ExporterOff, telemetry.ExporterStdout),
	}

	if cfg.TurnTimeout <= 0 {
		r.fail("TURN_TIMEOUT", "must be positive")
	}
	if cfg.BreakerMaxFailures == 0 {
		r.fail("BREAKER_MAX_FAILURES", "must be at least 1")
	}

	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Logger builds the configured logger.
func (c *Config) Logger() logging.Logger {
	return logging.New(logging.Config{Level: c.LogLevel, Format: c.LogFormat, Output: os.Stderr})
}

// ModelRegistry returns a registry that builds provider models on demand,
// each guarded by a circuit breaker. A model id may carry a provider prefix
// ("anthropic/claude-3-5-haiku-latest"); otherwise MODEL_PROVIDER applies.
func (c *Config) ModelRegistry(logger logging.Logger) *model.Registry {
	return model.NewRegistry(func(name string) (model.Model, error) {
		provider, id := SplitModelID(name, c.ModelProvider)

		var m model.Model
		switch provider {
		case ProviderOpenAI:
			m = openai.NewModel(openai.WithModel(id))
		case ProviderAnthropic:
			m = anthropic.NewModel(anthropic.WithModel(id))
		case ProviderGemini:
			gm, err := gemini.NewModel(context.Background(), gemini.WithModel(id))
			if err != nil {
				return nil, err
			}
			m = gm
		default:
			return nil, fmt.Errorf("unknown model provider %q", provider)
		}

		return model.NewBreaker(m,
			model.WithMaxFailures(c.BreakerMaxFailures),
			model.WithBreakerLogger(logger),
		), nil
	})
}

// SplitModelID separates an optional "provider/" prefix from a model id.
func SplitModelID(name, fallback string) (provider, id string) {
	if p, rest, ok := strings.Cut(name, "/"); ok {
		switch strings.ToLower(p) {
		case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
			return strings.ToLower(p), rest
		}
	}
	return fallback, name
}

// SessionStore builds the configured store. The returned close function
// releases backend connections.
func (c *Config) SessionStore(ctx context.Context, logger logging.Logger) (core.SessionStore, func() error, error) {
	switch c.SessionBackend {
	case BackendRedis:
		store := redisstore.New(redisstore.Config{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
			TTL:      c.Redis.TTL,
		}, session.WithLogger(logger))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("config: redis %s: %w", c.Redis.Addr, err)
		}
		return store, store.Close, nil
	default:
		return session.NewInMemoryStore(session.WithLogger(logger)), func() error { return nil }, nil
	}
}

// InitTracing installs the configured tracer provider.
func (c *Config) InitTracing(ctx context.Context) (func(context.Context) error, error) {
	return telemetry.Init(ctx, telemetry.Config{Exporter: c.Tracing, ServiceName: c.AppName})
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) fail(name, reason string) {
	r.errs = append(r.errs, &Error{Var: name, Reason: reason})
}

func (r *reader) get(name string) (string, bool) {
	v, ok := r.lookup(name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *reader) required(name string) string {
	v, ok := r.get(name)
	if !ok {
		r.fail(name, "required but not set")
	}
	return v
}

// fallback reads name, or alt when name is unset. Only name is reported
// when both are missing.
func (r *reader) fallback(name, alt string) string {
	if v, ok := r.get(name); ok {
		return v
	}
	if v, ok := r.get(alt); ok {
		return v
	}
	r.fail(name, "required but not set")
	return ""
}

func (r *reader) str(name, def string) string {
	if v, ok := r.get(name); ok {
		return v
	}
	return def
}

func (r *reader) oneOf(name, def string, allowed ...string) string {
	v, ok := r.get(name)
	if !ok {
		return def
	}
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	r.fail(name, fmt.Sprintf("%q is not one of %s", v, strings.Join(allowed, ", ")))
	return def
}

func (r *reader) integer(name string, def int) int {
	v, ok := r.get(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		r.fail(name, fmt.Sprintf("%q is not a non-negative integer", v))
		return def
	}
	return n
}

func (r *reader) duration(name string, def time.Duration) time.Duration {
	v, ok := r.get(name)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(name, fmt.Sprintf("%q is not a duration", v))
		return def
	}
	return d
}

func (r *reader) level(name string) logging.LogLevel {
	v, _ := r.get(name)
	l, err := logging.ParseLevel(v)
	if err != nil {
		r.fail(name, err.Error())
	}
	return l
}
