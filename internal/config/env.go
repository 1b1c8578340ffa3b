package config

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 3000)
	Port int `envconfig:"PORT" default:"3000"`

	// DataDir is the data directory path, holding the settings file and the
	// file-backed stores.
	// Env: DATA_DIR
	// Default: ~/.tooldex
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL. Postgres enables vector-indexed
	// search; SQLite is supported for entity storage.
	// Env: DB_URL
	DBURL string `envconfig:"DB_URL"`

	// UseDatabase routes persistence to the database, with automatic
	// fallback to file storage on failure. When false all entity groups are
	// file-routed.
	// Env: USE_DATABASE (default: false)
	UseDatabase bool `envconfig:"USE_DATABASE" default:"false"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Embedding configures the network embedding endpoint.
	// Env: EMBEDDING_*
	Embedding EmbeddingEnvConfig `envconfig:"EMBEDDING"`
}

// EmbeddingEnvConfig configures the network embedding provider.
type EmbeddingEnvConfig struct {
	// BaseURL is the OpenAI-compatible endpoint base URL.
	// Env: EMBEDDING_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the embedding model identifier.
	// Env: EMBEDDING_MODEL (default: text-embedding-3-small)
	Model string `envconfig:"MODEL" default:"text-embedding-3-small"`

	// APIKey authenticates against the embedding endpoint. When empty the
	// offline vectorizer is used.
	// Env: EMBEDDING_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// TimeoutSeconds is the per-request timeout.
	// Env: EMBEDDING_TIMEOUT_SECONDS (default: 60)
	TimeoutSeconds int `envconfig:"TIMEOUT_SECONDS" default:"60"`

	// MaxRetries is the retry budget for transient failures.
	// Env: EMBEDDING_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`

	// MaxChars truncates input text before sending. Long inputs are
	// silently truncated, not rejected.
	// Env: EMBEDDING_MAX_CHARS (default: 8000)
	MaxChars int `envconfig:"MAX_CHARS" default:"8000"`
}

// loadEnv reads configuration from environment variables.
func loadEnv() (EnvConfig, error) {
	var env EnvConfig
	if err := envconfig.Process("", &env); err != nil {
		return EnvConfig{}, err
	}
	return env, nil
}
