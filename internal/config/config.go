// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Embeddings provider selection: ollama | openai | deterministic | mock
	EmbedProvider string        `env:"EMBED_PROVIDER" envDefault:"deterministic"`
	EmbedModel    string        `env:"EMBED_MODEL" envDefault:"text-embedding-3-small"`
	EmbedDim      int           `env:"EMBED_DIM" envDefault:"768"`
	EmbedBatch    int           `env:"EMBED_BATCH" envDefault:"256"`
	EmbedTimeout  time.Duration `env:"EMBED_TIMEOUT" envDefault:"60s"`
	// EmbedChunkWords bounds whitespace chunks sent per provider call so
	// payload sizes stay predictable.
	EmbedChunkWords int `env:"EMBED_CHUNK_WORDS" envDefault:"256"`

	OllamaURL     string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`

	// Cache backend: sqlite | redis | none
	CacheBackend string `env:"CACHE_BACKEND" envDefault:"sqlite"`
	CachePath    string `env:"CACHE_PATH" envDefault:".cache/embeddings.db"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// Adjudicator (title tie-break) LLM
	LLMProvider string        `env:"LLM_PROVIDER" envDefault:"mock"`
	LLMModel    string        `env:"LLM_MODEL" envDefault:"llama3.1"`
	LLMTimeout  time.Duration `env:"LLM_TIMEOUT" envDefault:"15s"`
	// LLMMaxPromptTokens caps adjudication prompt size.
	LLMMaxPromptTokens int `env:"LLM_MAX_PROMPT_TOKENS" envDefault:"2048"`

	// Optional Postgres persistence for batch results; empty disables it.
	DBURL string `env:"DB_URL"`

	// Scoring
	RecencyHorizonMonths int     `env:"RECENCY_HORIZON_MONTHS" envDefault:"36"`
	ContextPenalty       float64 `env:"CONTEXT_PENALTY" envDefault:"0.2"`
	// Context sense reference sentences are hand-tuned; they are
	// configuration, not hidden logic.
	ContextHiringSentence    string `env:"CONTEXT_HIRING_SENTENCE" envDefault:"Work that involves hiring candidates, owning requisitions, sourcing, interviewing, offers."`
	ContextRecruitedSentence string `env:"CONTEXT_RECRUITED_SENTENCE" envDefault:"Being a job applicant or being recruited by a company."`
	BatchWorkers             int    `env:"BATCH_WORKERS" envDefault:"4"`

	// Normalizer vocabulary override (YAML); empty uses built-in defaults.
	VocabPath string `env:"VOCAB_PATH"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"jd-fit-evaluator"`

	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// Embed Backoff Configuration
	EmbedBackoffMaxElapsedTime  time.Duration `env:"EMBED_BACKOFF_MAX_ELAPSED_TIME" envDefault:"30s"`
	EmbedBackoffInitialInterval time.Duration `env:"EMBED_BACKOFF_INITIAL_INTERVAL" envDefault:"1s"`
	EmbedBackoffMaxInterval     time.Duration `env:"EMBED_BACKOFF_MAX_INTERVAL" envDefault:"8s"`
	EmbedBackoffMultiplier      float64       `env:"EMBED_BACKOFF_MULTIPLIER" envDefault:"2.0"`
	EmbedMaxAttempts            uint64        `env:"EMBED_MAX_ATTEMPTS" envDefault:"5"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// GetEmbedBackoffConfig returns backoff configuration appropriate for the
// current environment. Tests use much shorter timeouts.
func (c Config) GetEmbedBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 10 * time.Millisecond, 100 * time.Millisecond, 2.0
	}
	return c.EmbedBackoffMaxElapsedTime, c.EmbedBackoffInitialInterval, c.EmbedBackoffMaxInterval, c.EmbedBackoffMultiplier
}
