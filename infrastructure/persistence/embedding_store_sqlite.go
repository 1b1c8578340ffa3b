package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm/clause"

	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/internal/database"
)

// SQLiteVectorStore implements toolsearch.VectorStore on SQLite. Vectors are
// JSON columns and ranking happens in memory — SQLite has no vector index,
// so no schema reconciliation is needed: records of any width coexist and
// mismatched pairs simply score zero.
type SQLiteVectorStore struct {
	repo   database.Repository[toolsearch.EmbeddingRecord, SQLiteEmbeddingModel]
	logger *slog.Logger
}

// NewSQLiteVectorStore creates a SQLiteVectorStore.
func NewSQLiteVectorStore(db database.Database, logger *slog.Logger) *SQLiteVectorStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteVectorStore{
		repo:   database.NewRepository[toolsearch.EmbeddingRecord, SQLiteEmbeddingModel](db, SQLiteEmbeddingMapper{}, "embedding"),
		logger: logger,
	}
}

// Upsert inserts or replaces the record for its key.
func (s *SQLiteVectorStore) Upsert(ctx context.Context, record toolsearch.EmbeddingRecord) error {
	model := s.repo.Mapper().ToModel(record)
	model.UpdatedAt = time.Now().UTC()

	result := s.repo.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_type"}, {Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text_content", "embedding", "dimensions", "metadata", "model", "updated_at"}),
	}).Create(&model)

	if result.Error != nil {
		return fmt.Errorf("upsert embedding %s/%s: %w", record.ContentType(), record.ContentID(), result.Error)
	}
	return nil
}

// Search loads candidate records and ranks them in memory.
func (s *SQLiteVectorStore) Search(ctx context.Context, query []float64, limit int, threshold float64, contentType string) ([]toolsearch.Match, error) {
	if len(query) == 0 {
		return []toolsearch.Match{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	records, err := s.List(ctx, contentType)
	if err != nil {
		return nil, err
	}
	return toolsearch.RankRecords(query, records, limit, threshold), nil
}

// List returns every record of the given content type, all types when empty.
func (s *SQLiteVectorStore) List(ctx context.Context, contentType string) ([]toolsearch.EmbeddingRecord, error) {
	var options []registry.Option
	if contentType != "" {
		options = append(options, registry.WithField("content_type", contentType))
	}
	return s.repo.Find(ctx, options...)
}

// Count returns the number of stored records of the given content type.
func (s *SQLiteVectorStore) Count(ctx context.Context, contentType string) (int64, error) {
	var options []registry.Option
	if contentType != "" {
		options = append(options, registry.WithField("content_type", contentType))
	}
	return s.repo.Count(ctx, options...)
}

// DeleteByServer removes every tool record whose content ID carries the
// server's prefix.
func (s *SQLiteVectorStore) DeleteByServer(ctx context.Context, serverName string) error {
	result := s.repo.DB(ctx).
		Where(`content_type = ? AND content_id LIKE ? ESCAPE '\'`, toolsearch.ContentTypeTool, serverLikePattern(serverName)).
		Delete(&SQLiteEmbeddingModel{})
	if result.Error != nil {
		return fmt.Errorf("delete embeddings for server %s: %w", serverName, result.Error)
	}
	return nil
}

var _ toolsearch.VectorStore = (*SQLiteVectorStore)(nil)
