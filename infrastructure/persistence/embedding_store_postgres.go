package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/internal/database"
)

// PostgresVectorStore implements toolsearch.VectorStore on the pgvector
// extension. Similarity queries use the cosine distance operator and run
// against whatever ANN index the reconciler managed to build.
type PostgresVectorStore struct {
	db         database.Database
	reconciler *SchemaReconciler
	logger     *slog.Logger
}

// NewPostgresVectorStore creates a PostgresVectorStore.
func NewPostgresVectorStore(db database.Database, logger *slog.Logger) *PostgresVectorStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVectorStore{
		db:         db,
		reconciler: NewSchemaReconciler(db, logger),
		logger:     logger,
	}
}

// Reconciler exposes the schema reconciler, mainly for operational tooling.
func (s *PostgresVectorStore) Reconciler() *SchemaReconciler { return s.reconciler }

// Upsert inserts or replaces the record for its key. The schema is
// reconciled first whenever the vector's width differs from the column's
// configured width.
func (s *PostgresVectorStore) Upsert(ctx context.Context, record toolsearch.EmbeddingRecord) error {
	if err := s.reconciler.Ensure(ctx, record.Dimensions()); err != nil {
		return err
	}

	sql := fmt.Sprintf(`
INSERT INTO %s (content_type, content_id, text_content, embedding, dimensions, metadata, model, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (content_type, content_id) DO UPDATE SET
    text_content = EXCLUDED.text_content,
    embedding = EXCLUDED.embedding,
    dimensions = EXCLUDED.dimensions,
    metadata = EXCLUDED.metadata,
    model = EXCLUDED.model,
    updated_at = EXCLUDED.updated_at`, embeddingsTable)

	now := time.Now().UTC()
	err := s.db.Session(ctx).Exec(sql,
		record.ContentType(),
		record.ContentID(),
		record.TextContent(),
		database.Vector(record.Vector()),
		record.Dimensions(),
		metadataToMap(record.Metadata()),
		record.Model(),
		now,
		now,
	).Error
	if err != nil {
		return fmt.Errorf("upsert embedding %s/%s: %w", record.ContentType(), record.ContentID(), err)
	}
	return nil
}

// embeddingRow is the scan target for embedding queries.
type embeddingRow struct {
	ContentType string          `gorm:"column:content_type"`
	ContentID   string          `gorm:"column:content_id"`
	TextContent string          `gorm:"column:text_content"`
	Embedding   database.Vector `gorm:"column:embedding"`
	Metadata    JSONMap         `gorm:"column:metadata"`
	Model       string          `gorm:"column:model"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
	Distance    float64         `gorm:"column:distance"`
}

func (row embeddingRow) record() toolsearch.EmbeddingRecord {
	return toolsearch.NewEmbeddingRecord(
		row.ContentType,
		row.ContentID,
		row.TextContent,
		row.Embedding,
		mapToMetadata(row.Metadata),
		row.Model,
	).WithTimestamps(row.CreatedAt, row.UpdatedAt)
}

// Search ranks stored vectors by cosine similarity to the query. The query
// width is reconciled against the column first — comparing vectors of
// different lengths is meaningless, so a mismatched query migrates the
// column exactly like a mismatched write would.
func (s *PostgresVectorStore) Search(ctx context.Context, query []float64, limit int, threshold float64, contentType string) ([]toolsearch.Match, error) {
	if len(query) == 0 {
		return []toolsearch.Match{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	if err := s.reconciler.Ensure(ctx, len(query)); err != nil {
		return nil, err
	}

	var sql strings.Builder
	sql.WriteString(`SELECT content_type, content_id, text_content, embedding, metadata, model, created_at, updated_at, embedding <=> ? AS distance FROM `)
	sql.WriteString(embeddingsTable)
	sql.WriteString(` WHERE embedding IS NOT NULL`)

	args := []any{database.Vector(query)}
	if contentType != "" {
		sql.WriteString(` AND content_type = ?`)
		args = append(args, contentType)
	}
	sql.WriteString(` ORDER BY distance ASC LIMIT ?`)
	args = append(args, limit)

	var rows []embeddingRow
	if err := s.db.Session(ctx).Raw(sql.String(), args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	matches := make([]toolsearch.Match, 0, len(rows))
	for _, row := range rows {
		similarity := 1.0 - row.Distance
		if threshold >= 0 && similarity <= threshold {
			continue
		}
		matches = append(matches, toolsearch.NewMatch(row.record(), similarity))
	}
	return matches, nil
}

// List returns every record of the given content type, all types when empty.
func (s *PostgresVectorStore) List(ctx context.Context, contentType string) ([]toolsearch.EmbeddingRecord, error) {
	sql := fmt.Sprintf(`SELECT content_type, content_id, text_content, embedding, metadata, model, created_at, updated_at, 0.0 AS distance FROM %s`, embeddingsTable)
	var args []any
	if contentType != "" {
		sql += ` WHERE content_type = ?`
		args = append(args, contentType)
	}

	var rows []embeddingRow
	if err := s.db.Session(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	records := make([]toolsearch.EmbeddingRecord, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}

// Count returns the number of stored records of the given content type.
func (s *PostgresVectorStore) Count(ctx context.Context, contentType string) (int64, error) {
	sql := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, embeddingsTable)
	var args []any
	if contentType != "" {
		sql += ` WHERE content_type = ?`
		args = append(args, contentType)
	}

	var count int64
	if err := s.db.Session(ctx).Raw(sql, args...).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

// DeleteByServer removes every tool record whose content ID carries the
// server's prefix ("{server}:{tool}").
func (s *PostgresVectorStore) DeleteByServer(ctx context.Context, serverName string) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE content_type = ? AND content_id LIKE ? ESCAPE '\'`, embeddingsTable)
	err := s.db.Session(ctx).Exec(sql, toolsearch.ContentTypeTool, serverLikePattern(serverName)).Error
	if err != nil {
		return fmt.Errorf("delete embeddings for server %s: %w", serverName, err)
	}
	return nil
}

// serverLikePattern builds the LIKE pattern matching every content ID of a
// server. LIKE metacharacters in the name are escaped so a server called
// "my_server" cannot match "myXserver".
func serverLikePattern(serverName string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(serverName)
	return escaped + ":%"
}

var _ toolsearch.VectorStore = (*PostgresVectorStore)(nil)
