package fallback

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldex/tooldex/domain/registry"
)

var errDatabaseDown = errors.New("connection refused")

// fakeServerStore is an in-memory registry.ServerStore that can be forced to
// fail, with call counting to observe routing decisions.
type fakeServerStore struct {
	servers map[string]registry.ServerConfig
	err     error
	calls   int
}

func newFakeServerStore(err error) *fakeServerStore {
	return &fakeServerStore{servers: map[string]registry.ServerConfig{}, err: err}
}

func (f *fakeServerStore) Find(context.Context, ...registry.Option) ([]registry.ServerConfig, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]registry.ServerConfig, 0, len(f.servers))
	for _, s := range f.servers {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeServerStore) FindOne(_ context.Context, options ...registry.Option) (registry.ServerConfig, error) {
	f.calls++
	if f.err != nil {
		return registry.ServerConfig{}, f.err
	}
	for _, cond := range registry.Build(options...).Conditions() {
		if cond.Field() != "name" {
			continue
		}
		name, _ := cond.Value().(string)
		if s, ok := f.servers[name]; ok {
			return s, nil
		}
	}
	return registry.ServerConfig{}, registry.ErrNotFound
}

func (f *fakeServerStore) Save(_ context.Context, server registry.ServerConfig) (registry.ServerConfig, error) {
	f.calls++
	if f.err != nil {
		return registry.ServerConfig{}, f.err
	}
	f.servers[server.Name()] = server
	return server, nil
}

func (f *fakeServerStore) Delete(_ context.Context, name string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	delete(f.servers, name)
	return nil
}

func TestServerStore_FallsBackOnDatabaseFailure(t *testing.T) {
	ctx := context.Background()
	db := newFakeServerStore(errDatabaseDown)
	file := newFakeServerStore(nil)
	_, err := file.Save(ctx, registry.NewServerConfig("weather"))
	require.NoError(t, err)

	store := NewServerStore(NewRouter(true), slog.Default(), db, file)

	// The database error is absorbed; the caller sees the file answer.
	got, err := store.FindOne(ctx, registry.WithServerName("weather"))
	require.NoError(t, err)
	assert.Equal(t, "weather", got.Name())
	assert.Equal(t, 1, db.calls)
}

func TestServerStore_NotFoundIsNotABackendFailure(t *testing.T) {
	ctx := context.Background()
	db := newFakeServerStore(nil)
	file := newFakeServerStore(nil)
	// The file side has the record, but the healthy database answered
	// not-found; that answer stands, no fallback.
	_, err := file.Save(ctx, registry.NewServerConfig("weather"))
	require.NoError(t, err)

	store := NewServerStore(NewRouter(true), slog.Default(), db, file)

	fileCalls := file.calls
	_, err = store.FindOne(ctx, registry.WithServerName("weather"))
	assert.ErrorIs(t, err, registry.ErrNotFound)
	assert.Equal(t, fileCalls, file.calls)
}

func TestServerStore_RoutingDisabledSkipsDatabase(t *testing.T) {
	ctx := context.Background()
	db := newFakeServerStore(nil)
	file := newFakeServerStore(nil)

	store := NewServerStore(NewRouter(false), slog.Default(), db, file)

	_, err := store.Save(ctx, registry.NewServerConfig("weather"))
	require.NoError(t, err)
	assert.Equal(t, 0, db.calls)
	assert.Equal(t, 1, file.calls)
}

func TestServerStore_WriteFallbackDiverges(t *testing.T) {
	ctx := context.Background()
	db := newFakeServerStore(errDatabaseDown)
	file := newFakeServerStore(nil)

	store := NewServerStore(NewRouter(true), slog.Default(), db, file)

	// A write during an outage lands in the file backend only.
	_, err := store.Save(ctx, registry.NewServerConfig("weather"))
	require.NoError(t, err)
	assert.Empty(t, db.servers)
	assert.Len(t, file.servers, 1)

	// Once the database recovers, it answers without the record: the two
	// backends are not reconciled per call.
	db.err = nil
	_, err = store.FindOne(ctx, registry.WithServerName("weather"))
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRouter_PerKindFlags(t *testing.T) {
	router := NewRouter(true)
	for _, kind := range Kinds() {
		assert.True(t, router.UseDatabase(kind))
	}

	router.SetUseDatabase(KindEmbeddings, false)
	assert.False(t, router.UseDatabase(KindEmbeddings))
	assert.True(t, router.UseDatabase(KindUsers))

	disabled := NewRouter(false)
	for _, kind := range Kinds() {
		assert.False(t, disabled.UseDatabase(kind))
	}
}
