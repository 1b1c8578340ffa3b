package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/internal/database"
)

// newTestDB creates an in-memory SQLite database with all tables migrated.
func newTestDB(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, AutoMigrate(db))
	return db
}

func toolRecord(server, tool, description string, vector []float64) toolsearch.EmbeddingRecord {
	meta := toolsearch.NewToolMetadata(server, tool, description, map[string]any{"type": "object"})
	return toolsearch.NewEmbeddingRecord(
		toolsearch.ContentTypeTool,
		server+":"+tool,
		server+"_"+tool+" "+description,
		vector,
		meta,
		"test",
	)
}

func TestSQLiteVectorStore_UpsertAndSearch(t *testing.T) {
	store := NewSQLiteVectorStore(newTestDB(t), nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, toolRecord("weather", "getForecast", "Get weather forecast", []float64{1, 0, 0})))
	require.NoError(t, store.Upsert(ctx, toolRecord("fs", "readFile", "Read a file", []float64{0, 1, 0})))

	matches, err := store.Search(ctx, []float64{1, 0, 0}, 10, 0, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "weather:getForecast", matches[0].Record().ContentID())
	assert.InDelta(t, 1.0, matches[0].Similarity(), 0.001)
	assert.Equal(t, toolsearch.ProvenanceMetadata, matches[0].Provenance())
	assert.Equal(t, "weather", matches[0].Identity().ServerName())
}

func TestSQLiteVectorStore_UpsertReplaces(t *testing.T) {
	store := NewSQLiteVectorStore(newTestDB(t), nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, toolRecord("weather", "getForecast", "first", []float64{1, 0})))
	require.NoError(t, store.Upsert(ctx, toolRecord("weather", "getForecast", "second", []float64{0, 1})))

	records, err := store.List(ctx, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []float64{0, 1}, records[0].Vector())
	assert.Equal(t, 2, records[0].Dimensions())
}

func TestSQLiteVectorStore_MixedWidthsCoexist(t *testing.T) {
	store := NewSQLiteVectorStore(newTestDB(t), nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, toolRecord("a", "wide", "wide", []float64{1, 0, 0, 0})))
	require.NoError(t, store.Upsert(ctx, toolRecord("a", "narrow", "narrow", []float64{1, 0})))

	// Only records matching the query width can score above zero.
	matches, err := store.Search(ctx, []float64{1, 0, 0, 0}, 10, 0, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a:wide", matches[0].Record().ContentID())
}

func TestSQLiteVectorStore_EmptyQueryReturnsEmpty(t *testing.T) {
	store := NewSQLiteVectorStore(newTestDB(t), nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, toolRecord("weather", "getForecast", "forecast", []float64{1, 0})))

	matches, err := store.Search(ctx, nil, 10, 0, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSQLiteVectorStore_CountAndDeleteByServer(t *testing.T) {
	store := NewSQLiteVectorStore(newTestDB(t), nil)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, toolRecord("weather", "getForecast", "forecast", []float64{1, 0})))
	require.NoError(t, store.Upsert(ctx, toolRecord("weather", "getAlerts", "alerts", []float64{0, 1})))
	require.NoError(t, store.Upsert(ctx, toolRecord("fs", "readFile", "read", []float64{1, 1})))

	count, err := store.Count(ctx, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, store.DeleteByServer(ctx, "weather"))

	records, err := store.List(ctx, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fs:readFile", records[0].ContentID())
}

func TestEntityStores_SQLiteRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		store := NewUserStore(db)
		_, err := store.Save(ctx, registry.NewUser("alice", "hash1", true))
		require.NoError(t, err)
		_, err = store.Save(ctx, registry.NewUser("alice", "hash2", false))
		require.NoError(t, err)

		user, err := store.FindOne(ctx, registry.WithUsername("alice"))
		require.NoError(t, err)
		assert.Equal(t, "hash2", user.PasswordHash())
		assert.False(t, user.IsAdmin())

		require.NoError(t, store.Delete(ctx, "alice"))
		_, err = store.FindOne(ctx, registry.WithUsername("alice"))
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})

	t.Run("servers", func(t *testing.T) {
		store := NewServerStore(db)
		server := registry.NewServerConfig("weather",
			registry.WithCommand("npx", "-y", "weather-server"),
			registry.WithEnabled(true),
			registry.WithTools([]registry.Tool{
				registry.NewTool("getForecast", "Get weather forecast", nil),
			}),
		)
		_, err := store.Save(ctx, server)
		require.NoError(t, err)

		got, err := store.FindOne(ctx, registry.WithServerName("weather"))
		require.NoError(t, err)
		assert.Equal(t, "npx", got.Command())
		assert.Equal(t, []string{"-y", "weather-server"}, got.Args())
		require.Len(t, got.Tools(), 1)
		assert.Equal(t, "getForecast", got.Tools()[0].Name())
	})

	t.Run("groups", func(t *testing.T) {
		store := NewGroupStore(db)
		_, err := store.Save(ctx, registry.NewGroup("g1", "dev", "developer tools", []string{"weather"}))
		require.NoError(t, err)

		group, err := store.FindOne(ctx, registry.WithGroupID("g1"))
		require.NoError(t, err)
		assert.Equal(t, "dev", group.Name())
		assert.Equal(t, []string{"weather"}, group.Servers())
	})

	t.Run("market", func(t *testing.T) {
		store := NewMarketStore(db)
		_, err := store.Save(ctx, registry.NewMarketServer("fs", "Filesystem", "File tools", []string{"files"}, nil))
		require.NoError(t, err)

		entry, err := store.FindOne(ctx, registry.WithServerName("fs"))
		require.NoError(t, err)
		assert.Equal(t, "Filesystem", entry.DisplayName())
		assert.Equal(t, []string{"files"}, entry.Categories())
	})
}

func TestSQLiteVectorStore_DeleteByServerLiteralName(t *testing.T) {
	store := NewSQLiteVectorStore(newTestDB(t), nil)
	ctx := context.Background()

	// "_" in a server name is a literal character, not a wildcard.
	require.NoError(t, store.Upsert(ctx, toolRecord("my_server", "a", "a", []float64{1, 0})))
	require.NoError(t, store.Upsert(ctx, toolRecord("myXserver", "b", "b", []float64{0, 1})))

	require.NoError(t, store.DeleteByServer(ctx, "my_server"))

	records, err := store.List(ctx, toolsearch.ContentTypeTool)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "myXserver:b", records[0].ContentID())
}

func TestServerLikePattern(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "weather", want: "weather:%"},
		{name: "underscore", in: "my_server", want: `my\_server:%`},
		{name: "percent", in: "odd%name", want: `odd\%name:%`},
		{name: "backslash", in: `a\b`, want: `a\\b:%`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serverLikePattern(tt.in))
		})
	}
}
