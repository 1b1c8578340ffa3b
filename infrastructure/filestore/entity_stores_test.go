package filestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldex/tooldex/domain/registry"
)

func newTestSettings(t *testing.T) *Settings {
	t.Helper()
	settings, err := OpenSettings(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	return settings
}

func TestUserStore_SaveFindDelete(t *testing.T) {
	store := NewUserStore(newTestSettings(t))
	ctx := context.Background()

	_, err := store.Save(ctx, registry.NewUser("alice", "hash1", true))
	require.NoError(t, err)
	_, err = store.Save(ctx, registry.NewUser("bob", "hash2", false))
	require.NoError(t, err)

	users, err := store.Find(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	alice, err := store.FindOne(ctx, registry.WithUsername("alice"))
	require.NoError(t, err)
	assert.Equal(t, "hash1", alice.PasswordHash())
	assert.True(t, alice.IsAdmin())

	// Saving the same username replaces the entry.
	_, err = store.Save(ctx, registry.NewUser("alice", "hash3", false))
	require.NoError(t, err)
	alice, err = store.FindOne(ctx, registry.WithUsername("alice"))
	require.NoError(t, err)
	assert.Equal(t, "hash3", alice.PasswordHash())
	assert.False(t, alice.IsAdmin())

	require.NoError(t, store.Delete(ctx, "alice"))
	_, err = store.FindOne(ctx, registry.WithUsername("alice"))
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestGroupStore_FindByID(t *testing.T) {
	store := NewGroupStore(newTestSettings(t))
	ctx := context.Background()

	_, err := store.Save(ctx, registry.NewGroup("g1", "dev", "developer tools", []string{"fs", "git"}))
	require.NoError(t, err)

	group, err := store.FindOne(ctx, registry.WithGroupID("g1"))
	require.NoError(t, err)
	assert.Equal(t, "dev", group.Name())
	assert.Equal(t, []string{"fs", "git"}, group.Servers())

	_, err = store.FindOne(ctx, registry.WithGroupID("missing"))
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestServerStore_RoundTrip(t *testing.T) {
	store := NewServerStore(newTestSettings(t))
	ctx := context.Background()

	server := registry.NewServerConfig("weather",
		registry.WithCommand("npx", "-y", "weather-server"),
		registry.WithEnv(map[string]string{"API_KEY": "k"}),
		registry.WithEnabled(true),
		registry.WithTools([]registry.Tool{
			registry.NewTool("getForecast", "Get weather forecast for a location", map[string]any{"type": "object"}),
		}),
	)
	_, err := store.Save(ctx, server)
	require.NoError(t, err)

	got, err := store.FindOne(ctx, registry.WithServerName("weather"))
	require.NoError(t, err)
	assert.Equal(t, "npx", got.Command())
	assert.Equal(t, []string{"-y", "weather-server"}, got.Args())
	assert.True(t, got.Enabled())
	require.Len(t, got.Tools(), 1)
	assert.Equal(t, "getForecast", got.Tools()[0].Name())
}

func TestServerStore_FindSortedAndClipped(t *testing.T) {
	store := NewServerStore(newTestSettings(t))
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := store.Save(ctx, registry.NewServerConfig(name))
		require.NoError(t, err)
	}

	servers, err := store.Find(ctx)
	require.NoError(t, err)
	require.Len(t, servers, 3)
	assert.Equal(t, "alpha", servers[0].Name())
	assert.Equal(t, "mid", servers[1].Name())
	assert.Equal(t, "zeta", servers[2].Name())

	page, err := store.Find(ctx, registry.WithOffset(1), registry.WithLimit(1))
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "mid", page[0].Name())
}

func TestEntityStores_PersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	ctx := context.Background()

	settings, err := OpenSettings(path)
	require.NoError(t, err)
	_, err = NewServerStore(settings).Save(ctx, registry.NewServerConfig("weather", registry.WithEnabled(true)))
	require.NoError(t, err)
	_, err = NewMarketStore(settings).Save(ctx, registry.NewMarketServer("fs", "Filesystem", "File tools", []string{"files"}, nil))
	require.NoError(t, err)

	reopened, err := OpenSettings(path)
	require.NoError(t, err)

	server, err := NewServerStore(reopened).FindOne(ctx, registry.WithServerName("weather"))
	require.NoError(t, err)
	assert.True(t, server.Enabled())

	market, err := NewMarketStore(reopened).FindOne(ctx, registry.WithServerName("fs"))
	require.NoError(t, err)
	assert.Equal(t, "Filesystem", market.DisplayName())
}
