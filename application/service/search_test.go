package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/infrastructure/filestore"
	"github.com/tooldex/tooldex/infrastructure/provider"
	"github.com/tooldex/tooldex/internal/config"
)

// fixedCatalog serves a static server list.
type fixedCatalog struct {
	servers []registry.ServerConfig
}

func (c fixedCatalog) ListActiveServers(context.Context) ([]registry.ServerConfig, error) {
	return c.servers, nil
}

func weatherCatalog() fixedCatalog {
	return fixedCatalog{servers: []registry.ServerConfig{
		registry.NewServerConfig("weather",
			registry.WithEnabled(true),
			registry.WithTools([]registry.Tool{
				registry.NewTool("getForecast", "Get weather forecast for a location", map[string]any{"type": "object"}),
				registry.NewTool("getAlerts", "Get severe weather alerts", nil),
			}),
		),
		registry.NewServerConfig("fs",
			registry.WithEnabled(true),
			registry.WithTools([]registry.Tool{
				registry.NewTool("readFile", "Read a file from disk", nil),
			}),
		),
		registry.NewServerConfig("disabled",
			registry.WithEnabled(false),
			registry.WithTools([]registry.Tool{
				registry.NewTool("hidden", "Never indexed", nil),
			}),
		),
		registry.NewServerConfig("toolless", registry.WithEnabled(true)),
	}}
}

func newTestStore(t *testing.T) *filestore.FileVectorStore {
	t.Helper()
	store, err := filestore.NewFileVectorStore(filepath.Join(t.TempDir(), "embeddings.json"))
	require.NoError(t, err)
	return store
}

func newTestSearch(t *testing.T, catalog registry.Catalog) (*ToolSearch, *filestore.FileVectorStore) {
	t.Helper()
	store := newTestStore(t)
	embedder := provider.NewFallbackEmbedder(nil, nil)
	return NewToolSearch(store, embedder, catalog, nil), store
}

func TestToolSearch_RebuildAllSkipsIneligible(t *testing.T) {
	search, store := newTestSearch(t, weatherCatalog())
	ctx := context.Background()

	report, err := search.RebuildAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.ServersIndexed())
	assert.Equal(t, 3, report.ToolsIndexed())
	assert.Equal(t, 0, report.ToolsFailed())

	count, err := store.Count(ctx, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestToolSearch_SearchFindsRelevantTool(t *testing.T) {
	search, _ := newTestSearch(t, weatherCatalog())
	ctx := context.Background()

	_, err := search.RebuildAll(ctx)
	require.NoError(t, err)

	result, err := search.Search(ctx, "weather forecast for a city", WithThreshold(0.1))
	require.NoError(t, err)
	require.NotZero(t, result.Total())

	top := result.Results()[0]
	assert.Equal(t, "weather", top.ServerName())
	assert.Equal(t, "getForecast", top.ToolName())
	assert.Greater(t, top.Similarity(), 0.1)
	assert.Equal(t, toolsearch.ProvenanceMetadata, top.Provenance())
	assert.Equal(t, "weather_getForecast Get weather forecast for a location", top.SearchableText())
}

func TestToolSearch_SearchUnrelatedQueryAtHighThreshold(t *testing.T) {
	search, _ := newTestSearch(t, weatherCatalog())
	ctx := context.Background()

	_, err := search.RebuildAll(ctx)
	require.NoError(t, err)

	result, err := search.Search(ctx, "unrelated quantum physics", WithThreshold(0.9))
	require.NoError(t, err)
	assert.Zero(t, result.Total())
}

func TestToolSearch_SearchServerFilter(t *testing.T) {
	search, _ := newTestSearch(t, weatherCatalog())
	ctx := context.Background()

	_, err := search.RebuildAll(ctx)
	require.NoError(t, err)

	result, err := search.Search(ctx, "read a file from disk", WithThreshold(0), WithServers("weather"))
	require.NoError(t, err)
	for _, r := range result.Results() {
		assert.Equal(t, "weather", r.ServerName())
	}
}

func TestSearchOptions_Clamping(t *testing.T) {
	cfg := newSearchConfig()
	assert.Equal(t, config.DefaultSearchLimit, cfg.limit)
	assert.InDelta(t, config.DefaultSearchThreshold, cfg.threshold, 0.0001)

	WithLimit(0)(cfg)
	assert.Equal(t, 1, cfg.limit)
	WithLimit(1000)(cfg)
	assert.Equal(t, config.MaxSearchLimit, cfg.limit)

	WithThreshold(-0.5)(cfg)
	assert.Zero(t, cfg.threshold)
	WithThreshold(1.5)(cfg)
	assert.InDelta(t, 1.0, cfg.threshold, 0.0001)
}

// flakyEmbedder fails on selected calls and otherwise delegates to the
// offline vectorizer.
type flakyEmbedder struct {
	inner  toolsearch.Embedder
	call   int
	failOn map[int]bool
}

func (f *flakyEmbedder) Embed(ctx context.Context, texts []string) (toolsearch.Embeddings, error) {
	f.call++
	if f.failOn[f.call] {
		return toolsearch.Embeddings{}, errors.New("provider unavailable")
	}
	return f.inner.Embed(ctx, texts)
}

func TestToolSearch_BatchContinuesPastFailures(t *testing.T) {
	catalog := fixedCatalog{servers: []registry.ServerConfig{
		registry.NewServerConfig("weather",
			registry.WithEnabled(true),
			registry.WithTools([]registry.Tool{
				registry.NewTool("first", "first tool", nil),
				registry.NewTool("second", "second tool", nil),
				registry.NewTool("third", "third tool", nil),
			}),
		),
	}}
	store := newTestStore(t)
	embedder := &flakyEmbedder{inner: provider.NewOfflineVectorizer(), failOn: map[int]bool{2: true}}
	search := NewToolSearch(store, embedder, catalog, nil)
	ctx := context.Background()

	indexed, err := search.RebuildServer(ctx, "weather")
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)

	records, err := store.List(ctx, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	ids := make(map[string]bool, len(records))
	for _, r := range records {
		ids[r.ContentID()] = true
	}
	assert.True(t, ids["weather:first"])
	assert.False(t, ids["weather:second"])
	assert.True(t, ids["weather:third"])
}

func TestToolSearch_RebuildServerErrors(t *testing.T) {
	search, _ := newTestSearch(t, weatherCatalog())
	ctx := context.Background()

	_, err := search.RebuildServer(ctx, "missing")
	assert.ErrorIs(t, err, ErrServerNotFound)

	_, err = search.RebuildServer(ctx, "disabled")
	assert.ErrorIs(t, err, ErrServerNotEligible)

	_, err = search.RebuildServer(ctx, "toolless")
	assert.ErrorIs(t, err, ErrServerNotEligible)
}

// fixedWidthEmbedder produces constant unit vectors of a configurable width,
// standing in for a provider with a different dimensionality.
type fixedWidthEmbedder struct {
	width int
}

func (f fixedWidthEmbedder) Embed(_ context.Context, texts []string) (toolsearch.Embeddings, error) {
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vec := make([]float64, f.width)
		vec[0] = 1
		vectors[i] = vec
	}
	return toolsearch.NewEmbeddings(vectors, "fixed-width"), nil
}

func TestToolSearch_ReindexAbsorbsWidthChange(t *testing.T) {
	catalog := weatherCatalog()
	store := newTestStore(t)
	ctx := context.Background()

	wide := NewToolSearch(store, provider.NewOfflineVectorizer(), catalog, nil)
	_, err := wide.RebuildAll(ctx)
	require.NoError(t, err)

	// A new provider with a different width re-indexes everything; stale
	// wide records are replaced in place.
	narrow := NewToolSearch(store, fixedWidthEmbedder{width: 50}, catalog, nil)
	_, err = narrow.RebuildAll(ctx)
	require.NoError(t, err)

	records, err := store.List(ctx, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, 50, r.Dimensions())
		assert.Equal(t, "fixed-width", r.Model())
	}

	result, err := narrow.Search(ctx, "weather forecast for a city", WithThreshold(0))
	require.NoError(t, err)
	assert.NotZero(t, result.Total())
}

func TestToolSearch_ListVectorized(t *testing.T) {
	search, _ := newTestSearch(t, weatherCatalog())
	ctx := context.Background()

	_, err := search.RebuildAll(ctx)
	require.NoError(t, err)

	all, err := search.ListVectorized(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "fs", all[0].ServerName())
	assert.Equal(t, "readFile", all[0].ToolName())
	assert.Equal(t, "getAlerts", all[1].ToolName())
	assert.Equal(t, "getForecast", all[2].ToolName())

	weatherOnly, err := search.ListVectorized(ctx, []string{"weather"})
	require.NoError(t, err)
	require.Len(t, weatherOnly, 2)
	for _, tool := range weatherOnly {
		assert.Equal(t, "weather", tool.ServerName())
	}
}

func TestToolSearch_Stats(t *testing.T) {
	search, _ := newTestSearch(t, weatherCatalog())
	ctx := context.Background()

	_, err := search.RebuildAll(ctx)
	require.NoError(t, err)

	stats, err := search.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalVectorizedTools())
	assert.Equal(t, 3, stats.TotalActiveServers())
	assert.Equal(t, 2, stats.TotalServersWithTools())
	assert.False(t, stats.LastUpdated().IsZero())

	byName := make(map[string]ServerStat, len(stats.ServerStats()))
	for _, s := range stats.ServerStats() {
		byName[s.ServerName()] = s
	}
	assert.Equal(t, 2, byName["weather"].ToolsCount())
	assert.Equal(t, 1, byName["fs"].ToolsCount())
	assert.Equal(t, 0, byName["disabled"].ToolsCount())
	assert.False(t, byName["disabled"].IsActive())
}
