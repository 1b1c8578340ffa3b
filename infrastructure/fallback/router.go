package fallback

import "sync"

// Router decides, per entity group, whether calls go to the database first.
// When a group is routed to the file backend the database is skipped
// entirely; when routed to the database, individual call failures still fall
// back to the file backend.
type Router struct {
	mu sync.RWMutex
	db map[Kind]bool
}

// NewRouter creates a Router. When databaseEnabled is false every group is
// pinned to the file backend.
func NewRouter(databaseEnabled bool) *Router {
	db := make(map[Kind]bool, len(Kinds()))
	for _, kind := range Kinds() {
		db[kind] = databaseEnabled
	}
	return &Router{db: db}
}

// UseDatabase reports whether the given group is routed to the database.
func (r *Router) UseDatabase(kind Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db[kind]
}

// SetUseDatabase pins the given group to the database (true) or the file
// backend (false).
func (r *Router) SetUseDatabase(kind Kind, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.db[kind] = enabled
}
