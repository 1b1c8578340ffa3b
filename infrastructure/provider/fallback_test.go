package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldex/tooldex/domain/toolsearch"
)

type failingEmbedder struct {
	err error
}

func (f failingEmbedder) Embed(context.Context, []string) (toolsearch.Embeddings, error) {
	return toolsearch.Embeddings{}, f.err
}

func TestFallbackEmbedder_NilPrimaryUsesOffline(t *testing.T) {
	e := NewFallbackEmbedder(nil, nil)

	result, err := e.Embed(context.Background(), []string{"search files"})
	require.NoError(t, err)
	assert.Equal(t, OfflineModel, result.Model())
	require.Len(t, result.Vectors(), 1)
	assert.Len(t, result.Vectors()[0], OfflineDimensions)
}

func TestFallbackEmbedder_PrimaryFailureFallsBack(t *testing.T) {
	e := NewFallbackEmbedder(failingEmbedder{err: errors.New("connection refused")}, nil)

	result, err := e.Embed(context.Background(), []string{"search files"})
	require.NoError(t, err)
	assert.Equal(t, OfflineModel, result.Model())
}

func TestFallbackEmbedder_PrimarySuccessPassesThrough(t *testing.T) {
	primary := NewOfflineVectorizer()
	e := NewFallbackEmbedder(embedderWithModel{inner: primary, model: "primary-model"}, nil)

	result, err := e.Embed(context.Background(), []string{"search files"})
	require.NoError(t, err)
	assert.Equal(t, "primary-model", result.Model())
}

type embedderWithModel struct {
	inner toolsearch.Embedder
	model string
}

func (e embedderWithModel) Embed(ctx context.Context, texts []string) (toolsearch.Embeddings, error) {
	result, err := e.inner.Embed(ctx, texts)
	if err != nil {
		return toolsearch.Embeddings{}, err
	}
	return toolsearch.NewEmbeddings(result.Vectors(), e.model), nil
}
