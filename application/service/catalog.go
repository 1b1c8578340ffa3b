package service

import (
	"context"

	"github.com/tooldex/tooldex/domain/registry"
)

// StoreCatalog adapts a ServerStore to the registry.Catalog contract the
// search layer consumes.
type StoreCatalog struct {
	servers registry.ServerStore
}

// NewStoreCatalog creates a Catalog backed by the given ServerStore.
func NewStoreCatalog(servers registry.ServerStore) StoreCatalog {
	return StoreCatalog{servers: servers}
}

// ListActiveServers returns every configured server, disabled ones included,
// so callers can distinguish unknown servers from ineligible ones.
func (c StoreCatalog) ListActiveServers(ctx context.Context) ([]registry.ServerConfig, error) {
	return c.servers.Find(ctx)
}

var _ registry.Catalog = StoreCatalog{}
