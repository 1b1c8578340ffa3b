// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultSearchLimit     = 10
	DefaultSearchThreshold = 0.7
	MaxSearchLimit         = 100
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// EmbeddingConfig is the resolved network embedding endpoint configuration.
type EmbeddingConfig struct {
	baseURL    string
	model      string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	maxChars   int
}

// BaseURL returns the endpoint base URL.
func (e EmbeddingConfig) BaseURL() string { return e.baseURL }

// Model returns the configured embedding model name.
func (e EmbeddingConfig) Model() string { return e.model }

// APIKey returns the endpoint API key.
func (e EmbeddingConfig) APIKey() string { return e.apiKey }

// Timeout returns the per-request timeout.
func (e EmbeddingConfig) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the retry budget.
func (e EmbeddingConfig) MaxRetries() int { return e.maxRetries }

// MaxChars returns the input truncation length.
func (e EmbeddingConfig) MaxChars() int { return e.maxChars }

// AppConfig is the immutable application configuration.
type AppConfig struct {
	host        string
	port        int
	dataDir     string
	dbURL       string
	useDatabase bool
	logLevel    string
	logFormat   LogFormat
	embedding   EmbeddingConfig
}

// DefaultDataDir returns the default data directory, ~/.tooldex, falling
// back to a directory under the working directory when the home directory
// cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tooldex"
	}
	return filepath.Join(home, ".tooldex")
}

// SettingsFilePath returns the settings file path under dir.
func SettingsFilePath(dir string) string {
	return filepath.Join(dir, "settings.json")
}

// EmbeddingsFilePath returns the file-backed vector store path under dir.
func EmbeddingsFilePath(dir string) string {
	return filepath.Join(dir, "embeddings.json")
}

// LoadConfig loads configuration from a .env file (optional) and the
// environment.
func LoadConfig(envFile string) (AppConfig, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	env, err := loadEnv()
	if err != nil {
		return AppConfig{}, fmt.Errorf("process environment: %w", err)
	}

	dataDir := env.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return AppConfig{}, fmt.Errorf("resolve home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".tooldex")
	}

	format := LogFormatPretty
	if LogFormat(env.LogFormat) == LogFormatJSON {
		format = LogFormatJSON
	}

	return AppConfig{
		host:        env.Host,
		port:        env.Port,
		dataDir:     dataDir,
		dbURL:       env.DBURL,
		useDatabase: env.UseDatabase,
		logLevel:    env.LogLevel,
		logFormat:   format,
		embedding: EmbeddingConfig{
			baseURL:    env.Embedding.BaseURL,
			model:      env.Embedding.Model,
			apiKey:     env.Embedding.APIKey,
			timeout:    time.Duration(env.Embedding.TimeoutSeconds) * time.Second,
			maxRetries: env.Embedding.MaxRetries,
			maxChars:   env.Embedding.MaxChars,
		},
	}, nil
}

// Host returns the server bind host.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port bind address.
func (c AppConfig) Addr() string { return fmt.Sprintf("%s:%d", c.host, c.port) }

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// UseDatabase reports whether persistence is database-routed.
func (c AppConfig) UseDatabase() bool { return c.useDatabase }

// LogLevel returns the log verbosity.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Embedding returns the embedding endpoint configuration.
func (c AppConfig) Embedding() EmbeddingConfig { return c.embedding }

// SettingsPath returns the path of the JSON settings file.
func (c AppConfig) SettingsPath() string {
	return filepath.Join(c.dataDir, "settings.json")
}

// EmbeddingsPath returns the path of the file-backed vector store.
func (c AppConfig) EmbeddingsPath() string {
	return filepath.Join(c.dataDir, "embeddings.json")
}

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// WithAddr returns a copy with the bind address overridden. Empty host or
// zero port leaves the existing value untouched.
func (c AppConfig) WithAddr(host string, port int) AppConfig {
	if host != "" {
		c.host = host
	}
	if port > 0 {
		c.port = port
	}
	return c
}

// WithDataDir returns a copy with the data directory overridden.
func (c AppConfig) WithDataDir(dir string) AppConfig {
	if dir != "" {
		c.dataDir = dir
	}
	return c
}
