package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/internal/database"
)

// ErrReconcileFailed indicates a schema migration step failed. Fatal for the
// operation that triggered it, not for the process.
var ErrReconcileFailed = errors.New("vector schema reconciliation failed")

// embeddingsTable is the Postgres embedding table managed with raw DDL.
const embeddingsTable = "vector_embeddings"

// indexStrategy is one ANN index definition. Strategies are tried in order
// of preference; an engine that rejects one falls through to the next.
type indexStrategy struct {
	name string
	sql  string
}

// annIndexName is the single similarity index the reconciler manages.
const annIndexName = "idx_vector_embeddings_embedding"

// indexStrategies returns the ordered ANN strategies for the table:
// inverted-file first (cheap to build), then graph-based, then a coarse
// single-list inverted file as a last resort.
func indexStrategies(table string) []indexStrategy {
	return []indexStrategy{
		{
			name: "ivfflat",
			sql: fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS %s ON %s USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
				annIndexName, table),
		},
		{
			name: "hnsw",
			sql: fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (embedding vector_cosine_ops)`,
				annIndexName, table),
		},
		{
			name: "ivfflat-coarse",
			sql: fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS %s ON %s USING ivfflat (embedding vector_cosine_ops) WITH (lists = 1)`,
				annIndexName, table),
		},
	}
}

// migrationPlan returns the DDL statements that retype the vector column to
// the target width. Each statement is individually atomic. Rows whose stored
// width already matches are preserved; incomparable rows are nulled out —
// the recovery path for those is an operator-triggered re-embedding pass,
// not an automatic one.
func migrationPlan(table string, dimensions int) []string {
	return []string{
		fmt.Sprintf(`DROP INDEX IF EXISTS %s`, annIndexName),
		fmt.Sprintf(
			`ALTER TABLE %s ALTER COLUMN embedding TYPE vector(%d) USING CASE WHEN vector_dims(embedding) = %d THEN embedding::vector(%d) ELSE NULL END`,
			table, dimensions, dimensions, dimensions),
	}
}

// schemaExecutor is the SQL surface the reconciler drives. Production use
// goes through gormSchemaExecutor over database.Database.
type schemaExecutor interface {
	// columnWidth reports the declared width of the embedding column,
	// 0 when the table does not exist yet.
	columnWidth(ctx context.Context, table string) (int, error)
	// exec runs one DDL statement.
	exec(ctx context.Context, stmt string) error
	// execAtomic runs the statements in a single transaction.
	execAtomic(ctx context.Context, stmts []string) error
}

// gormSchemaExecutor implements schemaExecutor on a live connection.
type gormSchemaExecutor struct {
	db database.Database
}

func (e gormSchemaExecutor) columnWidth(ctx context.Context, table string) (int, error) {
	var width int
	err := e.db.Session(ctx).Raw(`
SELECT a.atttypmod
FROM pg_attribute a
JOIN pg_class c ON a.attrelid = c.oid
WHERE c.relname = ? AND a.attname = 'embedding'`, table).Scan(&width).Error
	if err != nil {
		return 0, fmt.Errorf("introspect vector width: %w", err)
	}
	if width < 0 {
		// atttypmod is -1 for an unconstrained vector column.
		width = 0
	}
	return width, nil
}

func (e gormSchemaExecutor) exec(ctx context.Context, stmt string) error {
	return e.db.Session(ctx).Exec(stmt).Error
}

func (e gormSchemaExecutor) execAtomic(ctx context.Context, stmts []string) error {
	return database.WithTransaction(ctx, e.db, func(tx *gorm.DB) error {
		for _, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("%s: %w", stmt, err)
			}
		}
		return nil
	})
}

// SchemaReconciler keeps the Postgres vector column's width consistent with
// whatever embedding model is currently in effect. It is invoked lazily by
// the vector store when a width mismatch is observed, never on a timer.
type SchemaReconciler struct {
	exec   schemaExecutor
	table  string
	logger *slog.Logger

	// Migration is process-wide serialized: the mutex orders migrations for
	// different widths, singleflight collapses concurrent calls for the
	// same width into one execution.
	mu    sync.Mutex
	group singleflight.Group
}

// NewSchemaReconciler creates a SchemaReconciler for the embeddings table.
func NewSchemaReconciler(db database.Database, logger *slog.Logger) *SchemaReconciler {
	return newSchemaReconciler(gormSchemaExecutor{db: db}, logger)
}

func newSchemaReconciler(exec schemaExecutor, logger *slog.Logger) *SchemaReconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaReconciler{
		exec:   exec,
		table:  embeddingsTable,
		logger: logger,
	}
}

// Ensure makes the vector column exactly dimensions wide, creating the table
// on first use and migrating the column (index drop, column re-type, index
// rebuild) when the widths differ. Idempotent: a second call for the same
// width is a no-op.
func (r *SchemaReconciler) Ensure(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: invalid dimensions %d", ErrReconcileFailed, dimensions)
	}

	key := fmt.Sprintf("%s:%d", r.table, dimensions)
	_, err, _ := r.group.Do(key, func() (any, error) {
		return nil, r.ensure(ctx, dimensions)
	})
	return err
}

func (r *SchemaReconciler) ensure(ctx context.Context, dimensions int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.exec.columnWidth(ctx, r.table)
	if err != nil {
		return errors.Join(ErrReconcileFailed, err)
	}

	if current == 0 {
		// Table absent: first use.
		if err := r.createTable(ctx, dimensions); err != nil {
			return errors.Join(ErrReconcileFailed, err)
		}
		r.createIndex(ctx)
		return nil
	}

	if current == dimensions {
		return nil
	}

	r.logger.Warn("vector width mismatch, migrating schema",
		"table", r.table,
		"current", current,
		"target", dimensions,
	)

	// The index drop and the column re-type commit together; a failure
	// between them must not leave the table indexed at the wrong width.
	if err := r.exec.execAtomic(ctx, migrationPlan(r.table, dimensions)); err != nil {
		return errors.Join(ErrReconcileFailed, err)
	}

	r.createIndex(ctx)

	// Another writer racing this migration to a different width is rare
	// (only when the model configuration changes) but must surface as a
	// retryable error, never as silent corruption.
	final, err := r.exec.columnWidth(ctx, r.table)
	if err != nil {
		return errors.Join(ErrReconcileFailed, err)
	}
	if final != dimensions {
		return fmt.Errorf("%w: width is %d after migrating to %d", toolsearch.ErrReconcileRetry, final, dimensions)
	}

	r.logger.Info("vector schema migrated", "table", r.table, "dimensions", dimensions)
	return nil
}

// CurrentWidth introspects the declared width of the embedding column.
// Returns 0 when the table does not exist yet.
func (r *SchemaReconciler) CurrentWidth(ctx context.Context) (int, error) {
	return r.exec.columnWidth(ctx, r.table)
}

func (r *SchemaReconciler) createTable(ctx context.Context, dimensions int) error {
	if err := r.exec.exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id BIGSERIAL PRIMARY KEY,
    content_type VARCHAR(64) NOT NULL,
    content_id VARCHAR(255) NOT NULL,
    text_content TEXT NOT NULL,
    embedding VECTOR(%d),
    dimensions INTEGER NOT NULL,
    metadata JSONB,
    model VARCHAR(255) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (content_type, content_id)
)`, r.table, dimensions)
	if err := r.exec.exec(ctx, createSQL); err != nil {
		return fmt.Errorf("create embeddings table: %w", err)
	}
	return nil
}

// createIndex tries each ANN strategy in order until one succeeds. All
// strategies failing is not fatal: similarity search still works through a
// sequential scan, just slower.
func (r *SchemaReconciler) createIndex(ctx context.Context) {
	for _, strategy := range indexStrategies(r.table) {
		if err := r.exec.exec(ctx, strategy.sql); err != nil {
			r.logger.Warn("index strategy unsupported, trying next",
				"strategy", strategy.name,
				"error", err,
			)
			continue
		}
		r.logger.Info("similarity index ready", "strategy", strategy.name)
		return
	}
	r.logger.Warn("no similarity index could be created, searches will be unindexed")
}
