package tooldex

import (
	"fmt"
	"log/slog"

	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/infrastructure/provider"
	"github.com/tooldex/tooldex/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dataDir     string
	dbURL       string
	useDatabase bool
	embedder    toolsearch.Embedder
	logger      *slog.Logger
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir: config.DefaultDataDir(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database backend. Embeddings are
// stored as JSON and ranked in memory.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = fmt.Sprintf("sqlite:///%s", path)
		c.useDatabase = true
	}
}

// WithPostgres configures PostgreSQL with the pgvector extension as the
// database backend.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
		c.useDatabase = true
	}
}

// WithDatabaseURL configures the database from a URL
// (sqlite:///path or postgres://...).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
		c.useDatabase = url != ""
	}
}

// WithFileStorageOnly pins all persistence to the JSON file backend even
// when a database URL is configured.
func WithFileStorageOnly() Option {
	return func(c *clientConfig) {
		c.useDatabase = false
	}
}

// WithOpenAI sets OpenAI as the primary embedding provider. The offline
// vectorizer remains the fallback.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.embedder = provider.NewOpenAIProvider(provider.OpenAIConfig{APIKey: apiKey})
	}
}

// WithOpenAIConfig sets OpenAI with custom configuration as the primary
// embedding provider.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.embedder = provider.NewOpenAIProvider(cfg)
	}
}

// WithEmbedder sets a custom primary embedding provider.
func WithEmbedder(e toolsearch.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithDataDir sets the data directory for file-backed storage.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		if dir != "" {
			c.dataDir = dir
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
