package provider

import (
	"context"
	"log/slog"

	"github.com/tooldex/tooldex/domain/toolsearch"
)

// FallbackEmbedder tries a primary network embedder and falls back to the
// deterministic offline vectorizer on any failure. Because the offline
// strategy never fails, Embed as a whole never fails — provider outages
// degrade recall, not availability.
type FallbackEmbedder struct {
	primary toolsearch.Embedder
	offline *OfflineVectorizer
	logger  *slog.Logger
}

// NewFallbackEmbedder creates a FallbackEmbedder. A nil primary routes every
// call straight to the offline vectorizer (the no-credentials case).
func NewFallbackEmbedder(primary toolsearch.Embedder, logger *slog.Logger) *FallbackEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackEmbedder{
		primary: primary,
		offline: NewOfflineVectorizer(),
		logger:  logger,
	}
}

// Embed returns embeddings from the primary strategy, or from the offline
// vectorizer when the primary is unconfigured or fails. The result's model
// name identifies which strategy produced the vectors.
func (f *FallbackEmbedder) Embed(ctx context.Context, texts []string) (toolsearch.Embeddings, error) {
	if f.primary != nil {
		result, err := f.primary.Embed(ctx, texts)
		if err == nil {
			return result, nil
		}
		f.logger.Warn("network embedding failed, using offline vectorizer", "error", err)
	}
	return f.offline.Embed(ctx, texts)
}

var _ toolsearch.Embedder = (*FallbackEmbedder)(nil)
