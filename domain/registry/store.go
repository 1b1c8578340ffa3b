package registry

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested entity does not exist in the store.
var ErrNotFound = errors.New("entity not found")

// UserStore persists user accounts.
type UserStore interface {
	Find(ctx context.Context, options ...Option) ([]User, error)
	FindOne(ctx context.Context, options ...Option) (User, error)
	Save(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, username string) error
}

// GroupStore persists server groups.
type GroupStore interface {
	Find(ctx context.Context, options ...Option) ([]Group, error)
	FindOne(ctx context.Context, options ...Option) (Group, error)
	Save(ctx context.Context, group Group) (Group, error)
	Delete(ctx context.Context, id string) error
}

// ServerStore persists server configurations.
type ServerStore interface {
	Find(ctx context.Context, options ...Option) ([]ServerConfig, error)
	FindOne(ctx context.Context, options ...Option) (ServerConfig, error)
	Save(ctx context.Context, server ServerConfig) (ServerConfig, error)
	Delete(ctx context.Context, name string) error
}

// MarketStore persists the marketplace catalog.
type MarketStore interface {
	Find(ctx context.Context, options ...Option) ([]MarketServer, error)
	FindOne(ctx context.Context, options ...Option) (MarketServer, error)
	Save(ctx context.Context, server MarketServer) (MarketServer, error)
	Delete(ctx context.Context, name string) error
}

// Catalog lists the servers whose tools are eligible for search indexing.
// The search layer consumes this rather than reaching into ServerStore
// directly, so callers can substitute live MCP session state.
type Catalog interface {
	// ListActiveServers returns every configured server with its discovered
	// tools. Disabled servers are included with Enabled() == false so callers
	// can distinguish "unknown" from "known but ineligible".
	ListActiveServers(ctx context.Context) ([]ServerConfig, error)
}
