package filestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tooldex/tooldex/domain/registry"
)

// matches applies query conditions against a field lookup. The file backend
// understands the same field names the database backend maps to columns.
func matches(q registry.Query, field func(string) any) bool {
	for _, cond := range q.Conditions() {
		v := field(cond.Field())
		if cond.In() {
			set, ok := cond.Value().([]string)
			if !ok {
				return false
			}
			found := false
			for _, candidate := range set {
				if candidate == v {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if v != cond.Value() {
			return false
		}
	}
	return true
}

// clip applies limit/offset to an already-filtered slice.
func clip[T any](items []T, q registry.Query) []T {
	if off := q.OffsetValue(); off > 0 {
		if off >= len(items) {
			return []T{}
		}
		items = items[off:]
	}
	if lim := q.LimitValue(); lim > 0 && lim < len(items) {
		items = items[:lim]
	}
	return items
}

// UserStore implements registry.UserStore over the settings file.
type UserStore struct {
	settings *Settings
}

// NewUserStore creates a file-backed UserStore.
func NewUserStore(settings *Settings) UserStore {
	return UserStore{settings: settings}
}

// Find returns users matching the given options.
func (s UserStore) Find(_ context.Context, options ...registry.Option) ([]registry.User, error) {
	q := registry.Build(options...)
	s.settings.mu.RLock()
	defer s.settings.mu.RUnlock()

	var users []registry.User
	for _, doc := range s.settings.doc.Users {
		if matches(q, func(f string) any {
			if f == "username" {
				return doc.Username
			}
			return nil
		}) {
			users = append(users, registry.NewUser(doc.Username, doc.PasswordHash, doc.IsAdmin))
		}
	}
	return clip(users, q), nil
}

// FindOne returns the first user matching the given options.
func (s UserStore) FindOne(ctx context.Context, options ...registry.Option) (registry.User, error) {
	users, err := s.Find(ctx, options...)
	if err != nil {
		return registry.User{}, err
	}
	if len(users) == 0 {
		return registry.User{}, fmt.Errorf("%w: user", registry.ErrNotFound)
	}
	return users[0], nil
}

// Save creates or updates a user.
func (s UserStore) Save(_ context.Context, user registry.User) (registry.User, error) {
	s.settings.mu.Lock()
	defer s.settings.mu.Unlock()

	doc := userDoc{
		Username:     user.Username(),
		PasswordHash: user.PasswordHash(),
		IsAdmin:      user.IsAdmin(),
	}

	replaced := false
	for i, existing := range s.settings.doc.Users {
		if existing.Username == doc.Username {
			s.settings.doc.Users[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		s.settings.doc.Users = append(s.settings.doc.Users, doc)
	}

	if err := s.settings.save(); err != nil {
		return registry.User{}, err
	}
	return user, nil
}

// Delete removes a user by username.
func (s UserStore) Delete(_ context.Context, username string) error {
	s.settings.mu.Lock()
	defer s.settings.mu.Unlock()

	users := s.settings.doc.Users[:0]
	for _, doc := range s.settings.doc.Users {
		if doc.Username != username {
			users = append(users, doc)
		}
	}
	s.settings.doc.Users = users
	return s.settings.save()
}

// GroupStore implements registry.GroupStore over the settings file.
type GroupStore struct {
	settings *Settings
}

// NewGroupStore creates a file-backed GroupStore.
func NewGroupStore(settings *Settings) GroupStore {
	return GroupStore{settings: settings}
}

// Find returns groups matching the given options.
func (s GroupStore) Find(_ context.Context, options ...registry.Option) ([]registry.Group, error) {
	q := registry.Build(options...)
	s.settings.mu.RLock()
	defer s.settings.mu.RUnlock()

	var groups []registry.Group
	for _, doc := range s.settings.doc.Groups {
		if matches(q, func(f string) any {
			switch f {
			case "group_id":
				return doc.ID
			case "name":
				return doc.Name
			default:
				return nil
			}
		}) {
			groups = append(groups, registry.NewGroup(doc.ID, doc.Name, doc.Description, doc.Servers))
		}
	}
	return clip(groups, q), nil
}

// FindOne returns the first group matching the given options.
func (s GroupStore) FindOne(ctx context.Context, options ...registry.Option) (registry.Group, error) {
	groups, err := s.Find(ctx, options...)
	if err != nil {
		return registry.Group{}, err
	}
	if len(groups) == 0 {
		return registry.Group{}, fmt.Errorf("%w: group", registry.ErrNotFound)
	}
	return groups[0], nil
}

// Save creates or updates a group.
func (s GroupStore) Save(_ context.Context, group registry.Group) (registry.Group, error) {
	s.settings.mu.Lock()
	defer s.settings.mu.Unlock()

	doc := groupDoc{
		ID:          group.ID(),
		Name:        group.Name(),
		Description: group.Description(),
		Servers:     group.Servers(),
	}

	replaced := false
	for i, existing := range s.settings.doc.Groups {
		if existing.ID == doc.ID {
			s.settings.doc.Groups[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		s.settings.doc.Groups = append(s.settings.doc.Groups, doc)
	}

	if err := s.settings.save(); err != nil {
		return registry.Group{}, err
	}
	return group, nil
}

// Delete removes a group by identifier.
func (s GroupStore) Delete(_ context.Context, id string) error {
	s.settings.mu.Lock()
	defer s.settings.mu.Unlock()

	groups := s.settings.doc.Groups[:0]
	for _, doc := range s.settings.doc.Groups {
		if doc.ID != id {
			groups = append(groups, doc)
		}
	}
	s.settings.doc.Groups = groups
	return s.settings.save()
}

// ServerStore implements registry.ServerStore over the settings file.
type ServerStore struct {
	settings *Settings
}

// NewServerStore creates a file-backed ServerStore.
func NewServerStore(settings *Settings) ServerStore {
	return ServerStore{settings: settings}
}

// Find returns server configurations matching the given options, sorted by
// name for stable output.
func (s ServerStore) Find(_ context.Context, options ...registry.Option) ([]registry.ServerConfig, error) {
	q := registry.Build(options...)
	s.settings.mu.RLock()
	defer s.settings.mu.RUnlock()

	names := make([]string, 0, len(s.settings.doc.Servers))
	for name := range s.settings.doc.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	var servers []registry.ServerConfig
	for _, name := range names {
		if matches(q, func(f string) any {
			if f == "name" {
				return name
			}
			return nil
		}) {
			servers = append(servers, serverFromDoc(name, s.settings.doc.Servers[name]))
		}
	}
	return clip(servers, q), nil
}

// FindOne returns the first server configuration matching the given options.
func (s ServerStore) FindOne(ctx context.Context, options ...registry.Option) (registry.ServerConfig, error) {
	servers, err := s.Find(ctx, options...)
	if err != nil {
		return registry.ServerConfig{}, err
	}
	if len(servers) == 0 {
		return registry.ServerConfig{}, fmt.Errorf("%w: server", registry.ErrNotFound)
	}
	return servers[0], nil
}

// Save creates or updates a server configuration.
func (s ServerStore) Save(_ context.Context, server registry.ServerConfig) (registry.ServerConfig, error) {
	s.settings.mu.Lock()
	defer s.settings.mu.Unlock()

	doc := serverToDoc(server)
	doc.UpdatedAt = time.Now().UTC()
	s.settings.doc.Servers[server.Name()] = doc

	if err := s.settings.save(); err != nil {
		return registry.ServerConfig{}, err
	}
	return server, nil
}

// Delete removes a server configuration by name.
func (s ServerStore) Delete(_ context.Context, name string) error {
	s.settings.mu.Lock()
	defer s.settings.mu.Unlock()

	delete(s.settings.doc.Servers, name)
	return s.settings.save()
}

// MarketStore implements registry.MarketStore over the settings file.
type MarketStore struct {
	settings *Settings
}

// NewMarketStore creates a file-backed MarketStore.
func NewMarketStore(settings *Settings) MarketStore {
	return MarketStore{settings: settings}
}

// Find returns catalog entries matching the given options, sorted by name.
func (s MarketStore) Find(_ context.Context, options ...registry.Option) ([]registry.MarketServer, error) {
	q := registry.Build(options...)
	s.settings.mu.RLock()
	defer s.settings.mu.RUnlock()

	names := make([]string, 0, len(s.settings.doc.MarketServers))
	for name := range s.settings.doc.MarketServers {
		names = append(names, name)
	}
	sort.Strings(names)

	var servers []registry.MarketServer
	for _, name := range names {
		if matches(q, func(f string) any {
			if f == "name" {
				return name
			}
			return nil
		}) {
			doc := s.settings.doc.MarketServers[name]
			servers = append(servers, registry.NewMarketServer(name, doc.DisplayName, doc.Description, doc.Categories, toolsFromDocs(doc.Tools)))
		}
	}
	return clip(servers, q), nil
}

// FindOne returns the first catalog entry matching the given options.
func (s MarketStore) FindOne(ctx context.Context, options ...registry.Option) (registry.MarketServer, error) {
	servers, err := s.Find(ctx, options...)
	if err != nil {
		return registry.MarketServer{}, err
	}
	if len(servers) == 0 {
		return registry.MarketServer{}, fmt.Errorf("%w: market server", registry.ErrNotFound)
	}
	return servers[0], nil
}

// Save creates or updates a catalog entry.
func (s MarketStore) Save(_ context.Context, server registry.MarketServer) (registry.MarketServer, error) {
	s.settings.mu.Lock()
	defer s.settings.mu.Unlock()

	s.settings.doc.MarketServers[server.Name()] = marketDoc{
		DisplayName: server.DisplayName(),
		Description: server.Description(),
		Categories:  server.Categories(),
		Tools:       toolsToDocs(server.Tools()),
	}

	if err := s.settings.save(); err != nil {
		return registry.MarketServer{}, err
	}
	return server, nil
}

// Delete removes a catalog entry by name.
func (s MarketStore) Delete(_ context.Context, name string) error {
	s.settings.mu.Lock()
	defer s.settings.mu.Unlock()

	delete(s.settings.doc.MarketServers, name)
	return s.settings.save()
}

// Compile-time interface checks.
var (
	_ registry.UserStore   = UserStore{}
	_ registry.GroupStore  = GroupStore{}
	_ registry.ServerStore = ServerStore{}
	_ registry.MarketStore = MarketStore{}
)
