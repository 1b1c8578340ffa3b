package fallback

import (
	"context"
	"log/slog"

	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/domain/toolsearch"
)

// UserStore routes user calls between a database-backed and a file-backed
// store.
type UserStore struct {
	router *Router
	logger *slog.Logger
	db     registry.UserStore
	file   registry.UserStore
}

// NewUserStore wraps a database and a file UserStore behind the router.
func NewUserStore(router *Router, logger *slog.Logger, db, file registry.UserStore) UserStore {
	return UserStore{router: router, logger: logger, db: db, file: file}
}

func (s UserStore) Find(ctx context.Context, options ...registry.Option) ([]registry.User, error) {
	return run(s.logger, s.router, KindUsers, "find",
		func() ([]registry.User, error) { return s.db.Find(ctx, options...) },
		func() ([]registry.User, error) { return s.file.Find(ctx, options...) },
	)
}

func (s UserStore) FindOne(ctx context.Context, options ...registry.Option) (registry.User, error) {
	return run(s.logger, s.router, KindUsers, "find_one",
		func() (registry.User, error) { return s.db.FindOne(ctx, options...) },
		func() (registry.User, error) { return s.file.FindOne(ctx, options...) },
	)
}

func (s UserStore) Save(ctx context.Context, user registry.User) (registry.User, error) {
	return run(s.logger, s.router, KindUsers, "save",
		func() (registry.User, error) { return s.db.Save(ctx, user) },
		func() (registry.User, error) { return s.file.Save(ctx, user) },
	)
}

func (s UserStore) Delete(ctx context.Context, username string) error {
	return runErr(s.logger, s.router, KindUsers, "delete",
		func() error { return s.db.Delete(ctx, username) },
		func() error { return s.file.Delete(ctx, username) },
	)
}

// GroupStore routes group calls between backends.
type GroupStore struct {
	router *Router
	logger *slog.Logger
	db     registry.GroupStore
	file   registry.GroupStore
}

// NewGroupStore wraps a database and a file GroupStore behind the router.
func NewGroupStore(router *Router, logger *slog.Logger, db, file registry.GroupStore) GroupStore {
	return GroupStore{router: router, logger: logger, db: db, file: file}
}

func (s GroupStore) Find(ctx context.Context, options ...registry.Option) ([]registry.Group, error) {
	return run(s.logger, s.router, KindGroups, "find",
		func() ([]registry.Group, error) { return s.db.Find(ctx, options...) },
		func() ([]registry.Group, error) { return s.file.Find(ctx, options...) },
	)
}

func (s GroupStore) FindOne(ctx context.Context, options ...registry.Option) (registry.Group, error) {
	return run(s.logger, s.router, KindGroups, "find_one",
		func() (registry.Group, error) { return s.db.FindOne(ctx, options...) },
		func() (registry.Group, error) { return s.file.FindOne(ctx, options...) },
	)
}

func (s GroupStore) Save(ctx context.Context, group registry.Group) (registry.Group, error) {
	return run(s.logger, s.router, KindGroups, "save",
		func() (registry.Group, error) { return s.db.Save(ctx, group) },
		func() (registry.Group, error) { return s.file.Save(ctx, group) },
	)
}

func (s GroupStore) Delete(ctx context.Context, id string) error {
	return runErr(s.logger, s.router, KindGroups, "delete",
		func() error { return s.db.Delete(ctx, id) },
		func() error { return s.file.Delete(ctx, id) },
	)
}

// ServerStore routes server-configuration calls between backends.
type ServerStore struct {
	router *Router
	logger *slog.Logger
	db     registry.ServerStore
	file   registry.ServerStore
}

// NewServerStore wraps a database and a file ServerStore behind the router.
func NewServerStore(router *Router, logger *slog.Logger, db, file registry.ServerStore) ServerStore {
	return ServerStore{router: router, logger: logger, db: db, file: file}
}

func (s ServerStore) Find(ctx context.Context, options ...registry.Option) ([]registry.ServerConfig, error) {
	return run(s.logger, s.router, KindServers, "find",
		func() ([]registry.ServerConfig, error) { return s.db.Find(ctx, options...) },
		func() ([]registry.ServerConfig, error) { return s.file.Find(ctx, options...) },
	)
}

func (s ServerStore) FindOne(ctx context.Context, options ...registry.Option) (registry.ServerConfig, error) {
	return run(s.logger, s.router, KindServers, "find_one",
		func() (registry.ServerConfig, error) { return s.db.FindOne(ctx, options...) },
		func() (registry.ServerConfig, error) { return s.file.FindOne(ctx, options...) },
	)
}

func (s ServerStore) Save(ctx context.Context, server registry.ServerConfig) (registry.ServerConfig, error) {
	return run(s.logger, s.router, KindServers, "save",
		func() (registry.ServerConfig, error) { return s.db.Save(ctx, server) },
		func() (registry.ServerConfig, error) { return s.file.Save(ctx, server) },
	)
}

func (s ServerStore) Delete(ctx context.Context, name string) error {
	return runErr(s.logger, s.router, KindServers, "delete",
		func() error { return s.db.Delete(ctx, name) },
		func() error { return s.file.Delete(ctx, name) },
	)
}

// MarketStore routes catalog calls between backends.
type MarketStore struct {
	router *Router
	logger *slog.Logger
	db     registry.MarketStore
	file   registry.MarketStore
}

// NewMarketStore wraps a database and a file MarketStore behind the router.
func NewMarketStore(router *Router, logger *slog.Logger, db, file registry.MarketStore) MarketStore {
	return MarketStore{router: router, logger: logger, db: db, file: file}
}

func (s MarketStore) Find(ctx context.Context, options ...registry.Option) ([]registry.MarketServer, error) {
	return run(s.logger, s.router, KindMarket, "find",
		func() ([]registry.MarketServer, error) { return s.db.Find(ctx, options...) },
		func() ([]registry.MarketServer, error) { return s.file.Find(ctx, options...) },
	)
}

func (s MarketStore) FindOne(ctx context.Context, options ...registry.Option) (registry.MarketServer, error) {
	return run(s.logger, s.router, KindMarket, "find_one",
		func() (registry.MarketServer, error) { return s.db.FindOne(ctx, options...) },
		func() (registry.MarketServer, error) { return s.file.FindOne(ctx, options...) },
	)
}

func (s MarketStore) Save(ctx context.Context, server registry.MarketServer) (registry.MarketServer, error) {
	return run(s.logger, s.router, KindMarket, "save",
		func() (registry.MarketServer, error) { return s.db.Save(ctx, server) },
		func() (registry.MarketServer, error) { return s.file.Save(ctx, server) },
	)
}

func (s MarketStore) Delete(ctx context.Context, name string) error {
	return runErr(s.logger, s.router, KindMarket, "delete",
		func() error { return s.db.Delete(ctx, name) },
		func() error { return s.file.Delete(ctx, name) },
	)
}

// VectorStore routes embedding calls between backends. Searches that fall
// back to the file store may miss rows written only to the database; weak
// consistency is the accepted price of availability here.
type VectorStore struct {
	router *Router
	logger *slog.Logger
	db     toolsearch.VectorStore
	file   toolsearch.VectorStore
}

// NewVectorStore wraps a database and a file VectorStore behind the router.
func NewVectorStore(router *Router, logger *slog.Logger, db, file toolsearch.VectorStore) VectorStore {
	return VectorStore{router: router, logger: logger, db: db, file: file}
}

func (s VectorStore) Upsert(ctx context.Context, record toolsearch.EmbeddingRecord) error {
	return runErr(s.logger, s.router, KindEmbeddings, "upsert",
		func() error { return s.db.Upsert(ctx, record) },
		func() error { return s.file.Upsert(ctx, record) },
	)
}

func (s VectorStore) Search(ctx context.Context, query []float64, limit int, threshold float64, contentType string) ([]toolsearch.Match, error) {
	return run(s.logger, s.router, KindEmbeddings, "search",
		func() ([]toolsearch.Match, error) { return s.db.Search(ctx, query, limit, threshold, contentType) },
		func() ([]toolsearch.Match, error) { return s.file.Search(ctx, query, limit, threshold, contentType) },
	)
}

func (s VectorStore) List(ctx context.Context, contentType string) ([]toolsearch.EmbeddingRecord, error) {
	return run(s.logger, s.router, KindEmbeddings, "list",
		func() ([]toolsearch.EmbeddingRecord, error) { return s.db.List(ctx, contentType) },
		func() ([]toolsearch.EmbeddingRecord, error) { return s.file.List(ctx, contentType) },
	)
}

func (s VectorStore) Count(ctx context.Context, contentType string) (int64, error) {
	return run(s.logger, s.router, KindEmbeddings, "count",
		func() (int64, error) { return s.db.Count(ctx, contentType) },
		func() (int64, error) { return s.file.Count(ctx, contentType) },
	)
}

func (s VectorStore) DeleteByServer(ctx context.Context, serverName string) error {
	return runErr(s.logger, s.router, KindEmbeddings, "delete_by_server",
		func() error { return s.db.DeleteByServer(ctx, serverName) },
		func() error { return s.file.DeleteByServer(ctx, serverName) },
	)
}

// Compile-time interface checks.
var (
	_ registry.UserStore     = UserStore{}
	_ registry.GroupStore    = GroupStore{}
	_ registry.ServerStore   = ServerStore{}
	_ registry.MarketStore   = MarketStore{}
	_ toolsearch.VectorStore = VectorStore{}
)
