package toolsearch

import (
	"context"
	"errors"
)

// Store errors.
var (
	// ErrDimensionMismatch indicates the store's configured vector width
	// differs from the vector being written or queried and reconciliation
	// failed or was not possible.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrReconcileRetry indicates another writer changed the configured
	// width mid-operation. The operation is safe to retry.
	ErrReconcileRetry = errors.New("vector width changed concurrently, retry")
)

// VectorStore persists embedding records and answers similarity queries.
// Implementations own dimensional consistency: before accepting a write
// whose vector width differs from the configured column width they must
// reconcile the schema, and a query of the wrong width must return empty
// results rather than garbage.
type VectorStore interface {
	// Upsert inserts or replaces the record for its (contentType, contentID)
	// key. Dimensions is always derived from the vector itself.
	Upsert(ctx context.Context, record EmbeddingRecord) error

	// Search returns matches ordered by descending similarity, capped at
	// limit. Similarity is 1 - cosineDistance(query, stored). Matches with
	// similarity <= threshold are excluded; threshold < 0 disables
	// filtering. contentType narrows the candidate set when non-empty.
	Search(ctx context.Context, query []float64, limit int, threshold float64, contentType string) ([]Match, error)

	// List returns every record of the given content type (all types when
	// empty), without vectors being ranked.
	List(ctx context.Context, contentType string) ([]EmbeddingRecord, error)

	// Count returns the number of stored records of the given content type.
	Count(ctx context.Context, contentType string) (int64, error)

	// DeleteByServer removes every tool record belonging to serverName.
	// Defined capability: implemented at the store level, not yet reachable
	// from any public operation.
	DeleteByServer(ctx context.Context, serverName string) error
}

// Embedder converts text into fixed-width embedding vectors.
type Embedder interface {
	// Embed returns one vector per input text plus the name of the model
	// that produced them.
	Embed(ctx context.Context, texts []string) (Embeddings, error)
}

// Embeddings is the result of an Embed call.
type Embeddings struct {
	vectors [][]float64
	model   string
}

// NewEmbeddings creates an Embeddings result.
func NewEmbeddings(vectors [][]float64, model string) Embeddings {
	return Embeddings{vectors: vectors, model: model}
}

// Vectors returns the embedding vectors, one per input text.
func (e Embeddings) Vectors() [][]float64 { return e.vectors }

// Model returns the producing model's name.
func (e Embeddings) Model() string { return e.model }
