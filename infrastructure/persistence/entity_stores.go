package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/internal/database"
)

// UserStore implements registry.UserStore using GORM.
type UserStore struct {
	database.Repository[registry.User, UserModel]
}

// NewUserStore creates a new UserStore.
func NewUserStore(db database.Database) UserStore {
	return UserStore{
		Repository: database.NewRepository[registry.User, UserModel](db, UserMapper{}, "user"),
	}
}

// Save creates or updates a user.
func (s UserStore) Save(ctx context.Context, user registry.User) (registry.User, error) {
	model := s.Mapper().ToModel(user)

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "is_admin"}),
	}).Create(&model)

	if result.Error != nil {
		return registry.User{}, fmt.Errorf("save user: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a user by username.
func (s UserStore) Delete(ctx context.Context, username string) error {
	return s.DeleteBy(ctx, registry.WithUsername(username))
}

// GroupStore implements registry.GroupStore using GORM.
type GroupStore struct {
	database.Repository[registry.Group, GroupModel]
}

// NewGroupStore creates a new GroupStore.
func NewGroupStore(db database.Database) GroupStore {
	return GroupStore{
		Repository: database.NewRepository[registry.Group, GroupModel](db, GroupMapper{}, "group"),
	}
}

// Save creates or updates a group.
func (s GroupStore) Save(ctx context.Context, group registry.Group) (registry.Group, error) {
	model := s.Mapper().ToModel(group)

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "servers"}),
	}).Create(&model)

	if result.Error != nil {
		return registry.Group{}, fmt.Errorf("save group: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a group by identifier.
func (s GroupStore) Delete(ctx context.Context, id string) error {
	return s.DeleteBy(ctx, registry.WithGroupID(id))
}

// ServerStore implements registry.ServerStore using GORM.
type ServerStore struct {
	database.Repository[registry.ServerConfig, ServerConfigModel]
}

// NewServerStore creates a new ServerStore.
func NewServerStore(db database.Database) ServerStore {
	return ServerStore{
		Repository: database.NewRepository[registry.ServerConfig, ServerConfigModel](db, ServerConfigMapper{}, "server"),
	}
}

// Save creates or updates a server configuration.
func (s ServerStore) Save(ctx context.Context, server registry.ServerConfig) (registry.ServerConfig, error) {
	model := s.Mapper().ToModel(server)

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "enabled", "command", "args", "env", "url", "tools", "updated_at"}),
	}).Create(&model)

	if result.Error != nil {
		return registry.ServerConfig{}, fmt.Errorf("save server: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a server configuration by name.
func (s ServerStore) Delete(ctx context.Context, name string) error {
	return s.DeleteBy(ctx, registry.WithServerName(name))
}

// MarketStore implements registry.MarketStore using GORM.
type MarketStore struct {
	database.Repository[registry.MarketServer, MarketServerModel]
}

// NewMarketStore creates a new MarketStore.
func NewMarketStore(db database.Database) MarketStore {
	return MarketStore{
		Repository: database.NewRepository[registry.MarketServer, MarketServerModel](db, MarketServerMapper{}, "market server"),
	}
}

// Save creates or updates a catalog entry.
func (s MarketStore) Save(ctx context.Context, server registry.MarketServer) (registry.MarketServer, error) {
	model := s.Mapper().ToModel(server)

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "description", "categories", "tools"}),
	}).Create(&model)

	if result.Error != nil {
		return registry.MarketServer{}, fmt.Errorf("save market server: %w", result.Error)
	}
	return s.Mapper().ToDomain(model), nil
}

// Delete removes a catalog entry by name.
func (s MarketStore) Delete(ctx context.Context, name string) error {
	return s.DeleteBy(ctx, registry.WithServerName(name))
}

// Compile-time interface checks.
var (
	_ registry.UserStore   = UserStore{}
	_ registry.GroupStore  = GroupStore{}
	_ registry.ServerStore = ServerStore{}
	_ registry.MarketStore = MarketStore{}
)
