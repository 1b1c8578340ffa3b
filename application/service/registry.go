package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tooldex/tooldex/domain/registry"
)

// Registry manages the configured entities: users, groups, server
// configurations, and the marketplace catalog. Plain CRUD over the routed
// stores; the interesting behavior lives in the storage layer underneath.
type Registry struct {
	users   registry.UserStore
	groups  registry.GroupStore
	servers registry.ServerStore
	market  registry.MarketStore
	logger  *slog.Logger
}

// NewRegistry creates a Registry service.
func NewRegistry(
	users registry.UserStore,
	groups registry.GroupStore,
	servers registry.ServerStore,
	market registry.MarketStore,
	logger *slog.Logger,
) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		users:   users,
		groups:  groups,
		servers: servers,
		market:  market,
		logger:  logger,
	}
}

// ListServers returns all configured servers.
func (r *Registry) ListServers(ctx context.Context) ([]registry.ServerConfig, error) {
	return r.servers.Find(ctx)
}

// Server returns one server configuration by name.
func (r *Registry) Server(ctx context.Context, name string) (registry.ServerConfig, error) {
	return r.servers.FindOne(ctx, registry.WithServerName(name))
}

// SaveServer creates or updates a server configuration.
func (r *Registry) SaveServer(ctx context.Context, server registry.ServerConfig) (registry.ServerConfig, error) {
	if server.Name() == "" {
		return registry.ServerConfig{}, fmt.Errorf("server name is required")
	}
	saved, err := r.servers.Save(ctx, server)
	if err != nil {
		return registry.ServerConfig{}, err
	}
	r.logger.Debug("saved server configuration", "server", saved.Name())
	return saved, nil
}

// DeleteServer removes a server configuration.
func (r *Registry) DeleteServer(ctx context.Context, name string) error {
	return r.servers.Delete(ctx, name)
}

// ListGroups returns all server groups.
func (r *Registry) ListGroups(ctx context.Context) ([]registry.Group, error) {
	return r.groups.Find(ctx)
}

// Group returns one group by identifier.
func (r *Registry) Group(ctx context.Context, id string) (registry.Group, error) {
	return r.groups.FindOne(ctx, registry.WithGroupID(id))
}

// SaveGroup creates or updates a group.
func (r *Registry) SaveGroup(ctx context.Context, group registry.Group) (registry.Group, error) {
	if group.ID() == "" {
		return registry.Group{}, fmt.Errorf("group id is required")
	}
	return r.groups.Save(ctx, group)
}

// DeleteGroup removes a group.
func (r *Registry) DeleteGroup(ctx context.Context, id string) error {
	return r.groups.Delete(ctx, id)
}

// ListUsers returns all users.
func (r *Registry) ListUsers(ctx context.Context) ([]registry.User, error) {
	return r.users.Find(ctx)
}

// User returns one user by username.
func (r *Registry) User(ctx context.Context, username string) (registry.User, error) {
	return r.users.FindOne(ctx, registry.WithUsername(username))
}

// SaveUser creates or updates a user.
func (r *Registry) SaveUser(ctx context.Context, user registry.User) (registry.User, error) {
	if user.Username() == "" {
		return registry.User{}, fmt.Errorf("username is required")
	}
	return r.users.Save(ctx, user)
}

// DeleteUser removes a user.
func (r *Registry) DeleteUser(ctx context.Context, username string) error {
	return r.users.Delete(ctx, username)
}

// ListMarketServers returns the marketplace catalog.
func (r *Registry) ListMarketServers(ctx context.Context) ([]registry.MarketServer, error) {
	return r.market.Find(ctx)
}

// MarketServer returns one catalog entry by name.
func (r *Registry) MarketServer(ctx context.Context, name string) (registry.MarketServer, error) {
	return r.market.FindOne(ctx, registry.WithServerName(name))
}
