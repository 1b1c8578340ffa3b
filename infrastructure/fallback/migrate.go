package fallback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/infrastructure/filestore"
)

// Backend groups one storage backend's stores.
type Backend struct {
	Users   registry.UserStore
	Groups  registry.GroupStore
	Servers registry.ServerStore
	Market  registry.MarketStore
	Vectors toolsearch.VectorStore
}

// Migrator copies every file-backed record into the database. This is the
// one-time bulk path that runs when database routing is first enabled; it is
// distinct from per-call fallback and gated by a persisted flag so it runs
// at most once. Every copy is an upsert, so a re-run after an operator
// resets the flag is safe.
type Migrator struct {
	settings *filestore.Settings
	logger   *slog.Logger
	file     Backend
	db       Backend
}

// NewMigrator creates a Migrator between the two backends.
func NewMigrator(settings *filestore.Settings, logger *slog.Logger, file, db Backend) *Migrator {
	return &Migrator{settings: settings, logger: logger, file: file, db: db}
}

// MigrateToDatabase copies all file-backed records into the database and
// marks migration complete. A no-op when the flag is already set.
func (m *Migrator) MigrateToDatabase(ctx context.Context) error {
	if m.settings.MigrationCompleted() {
		m.logger.Debug("file to database migration already completed, skipping")
		return nil
	}

	users, err := m.file.Users.Find(ctx)
	if err != nil {
		return fmt.Errorf("read users from file storage: %w", err)
	}
	for _, user := range users {
		if _, err := m.db.Users.Save(ctx, user); err != nil {
			return fmt.Errorf("migrate user %q: %w", user.Username(), err)
		}
	}

	groups, err := m.file.Groups.Find(ctx)
	if err != nil {
		return fmt.Errorf("read groups from file storage: %w", err)
	}
	for _, group := range groups {
		if _, err := m.db.Groups.Save(ctx, group); err != nil {
			return fmt.Errorf("migrate group %q: %w", group.Name(), err)
		}
	}

	servers, err := m.file.Servers.Find(ctx)
	if err != nil {
		return fmt.Errorf("read servers from file storage: %w", err)
	}
	for _, server := range servers {
		if _, err := m.db.Servers.Save(ctx, server); err != nil {
			return fmt.Errorf("migrate server %q: %w", server.Name(), err)
		}
	}

	market, err := m.file.Market.Find(ctx)
	if err != nil {
		return fmt.Errorf("read market servers from file storage: %w", err)
	}
	for _, entry := range market {
		if _, err := m.db.Market.Save(ctx, entry); err != nil {
			return fmt.Errorf("migrate market server %q: %w", entry.Name(), err)
		}
	}

	records, err := m.file.Vectors.List(ctx, "")
	if err != nil {
		return fmt.Errorf("read embeddings from file storage: %w", err)
	}
	for _, record := range records {
		if err := m.db.Vectors.Upsert(ctx, record); err != nil {
			return fmt.Errorf("migrate embedding %q: %w", record.ContentID(), err)
		}
	}

	if err := m.settings.SetMigrationCompleted(true); err != nil {
		return fmt.Errorf("persist migration flag: %w", err)
	}

	m.logger.Info("migrated file storage to database",
		"users", len(users),
		"groups", len(groups),
		"servers", len(servers),
		"market_servers", len(market),
		"embeddings", len(records),
	)
	return nil
}
