// Package tooldex provides a library for managing MCP servers and
// semantically searching their tools.
//
// Tool descriptors are embedded into vectors and indexed for similarity
// search. Persistence is dual-backend: a JSON file store that is always
// available, and an optional database backend (SQLite or PostgreSQL with
// pgvector) with transparent per-call fallback to the file store.
//
// Basic usage:
//
//	client, err := tooldex.New(
//	    tooldex.WithDataDir("/var/lib/tooldex"),
//	    tooldex.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Index every configured server's tools
//	report, err := client.Search.RebuildAll(ctx)
//
//	// Rank tools against a query
//	result, err := client.Search.Search(ctx, "weather forecast",
//	    service.WithLimit(5),
//	    service.WithThreshold(0.1),
//	)
package tooldex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/tooldex/tooldex/application/service"
	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/infrastructure/fallback"
	"github.com/tooldex/tooldex/infrastructure/filestore"
	"github.com/tooldex/tooldex/infrastructure/persistence"
	"github.com/tooldex/tooldex/infrastructure/provider"
	"github.com/tooldex/tooldex/internal/config"
	"github.com/tooldex/tooldex/internal/database"
)

// Client is the main entry point for the tooldex library.
//
// Access resources via struct fields:
//
//	client.Search.Search(ctx, "query")
//	client.Registry.ListServers(ctx)
type Client struct {
	// Public resource fields (direct service access)
	Search   *service.ToolSearch
	Registry *service.Registry

	db    database.Database
	hasDB bool

	settings *filestore.Settings
	router   *fallback.Router

	logger  *slog.Logger
	dataDir string
	closed  atomic.Bool
}

// New creates a new Client with the given options. Without a database
// option all persistence goes to JSON files under the data directory.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	settings, err := filestore.OpenSettings(config.SettingsFilePath(cfg.dataDir))
	if err != nil {
		return nil, err
	}
	fileVectors, err := filestore.NewFileVectorStore(config.EmbeddingsFilePath(cfg.dataDir))
	if err != nil {
		return nil, err
	}

	fileBackend := fallback.Backend{
		Users:   filestore.NewUserStore(settings),
		Groups:  filestore.NewGroupStore(settings),
		Servers: filestore.NewServerStore(settings),
		Market:  filestore.NewMarketStore(settings),
		Vectors: fileVectors,
	}

	useDatabase := cfg.useDatabase && cfg.dbURL != ""
	router := fallback.NewRouter(useDatabase)

	client := &Client{
		settings: settings,
		router:   router,
		logger:   logger,
		dataDir:  cfg.dataDir,
	}

	var (
		users   registry.UserStore     = fileBackend.Users
		groups  registry.GroupStore    = fileBackend.Groups
		servers registry.ServerStore   = fileBackend.Servers
		market  registry.MarketStore   = fileBackend.Market
		vectors toolsearch.VectorStore = fileBackend.Vectors
	)

	if useDatabase {
		ctx := context.Background()

		db, err := database.NewDatabase(ctx, cfg.dbURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// SQLite keeps GORM's defaults: capping the pool is pointless for a
		// single-file engine and splits an in-memory database per connection.
		if db.IsPostgres() {
			if err := db.ConfigurePool(25, 5, 30*time.Minute); err != nil {
				errClose := db.Close()
				return nil, errors.Join(fmt.Errorf("configure pool: %w", err), errClose)
			}
		}
		if err := persistence.AutoMigrate(db); err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
		}

		var dbVectors toolsearch.VectorStore
		if db.IsPostgres() {
			dbVectors = persistence.NewPostgresVectorStore(db, logger)
		} else {
			dbVectors = persistence.NewSQLiteVectorStore(db, logger)
		}

		dbBackend := fallback.Backend{
			Users:   persistence.NewUserStore(db),
			Groups:  persistence.NewGroupStore(db),
			Servers: persistence.NewServerStore(db),
			Market:  persistence.NewMarketStore(db),
			Vectors: dbVectors,
		}

		migrator := fallback.NewMigrator(settings, logger, fileBackend, dbBackend)
		if err := migrator.MigrateToDatabase(ctx); err != nil {
			// Migration failure leaves the file backend authoritative for this
			// run; per-call fallback keeps the process serviceable.
			logger.Warn("file to database migration failed", "error", err)
		}

		users = fallback.NewUserStore(router, logger, dbBackend.Users, fileBackend.Users)
		groups = fallback.NewGroupStore(router, logger, dbBackend.Groups, fileBackend.Groups)
		servers = fallback.NewServerStore(router, logger, dbBackend.Servers, fileBackend.Servers)
		market = fallback.NewMarketStore(router, logger, dbBackend.Market, fileBackend.Market)
		vectors = fallback.NewVectorStore(router, logger, dbBackend.Vectors, fileBackend.Vectors)

		client.db = db
		client.hasDB = true
	}

	embedder := provider.NewFallbackEmbedder(cfg.embedder, logger)
	catalog := service.NewStoreCatalog(servers)

	client.Search = service.NewToolSearch(vectors, embedder, catalog, logger)
	client.Registry = service.NewRegistry(users, groups, servers, market, logger)

	return client, nil
}

// Close releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return service.ErrClientClosed
	}

	if c.hasDB {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	c.logger.Info("tooldex client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// DataDir returns the data directory.
func (c *Client) DataDir() string {
	return c.dataDir
}

// RoutingTable returns the per-entity-group backend router.
func (c *Client) RoutingTable() *fallback.Router {
	return c.router
}
