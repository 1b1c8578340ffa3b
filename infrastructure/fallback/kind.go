// Package fallback routes storage calls between the database and the file
// backend. Every database failure degrades to the file backend for that one
// call, so callers never see storage-layer outages.
package fallback

// Kind identifies an entity group for routing purposes. Routing is decided
// per group rather than globally so a single misbehaving table does not take
// the whole backend off the database.
type Kind string

const (
	KindUsers      Kind = "users"
	KindGroups     Kind = "groups"
	KindServers    Kind = "servers"
	KindMarket     Kind = "market"
	KindEmbeddings Kind = "embeddings"
)

// Kinds lists every routable entity group.
func Kinds() []Kind {
	return []Kind{KindUsers, KindGroups, KindServers, KindMarket, KindEmbeddings}
}
