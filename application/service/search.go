// Package service provides application layer services that orchestrate domain
// operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/domain/toolsearch"
	"github.com/tooldex/tooldex/internal/config"
)

// SearchOption configures a search request.
type SearchOption func(*searchConfig)

// searchConfig holds search parameters.
type searchConfig struct {
	limit     int
	threshold float64
	servers   []string
}

// newSearchConfig creates a searchConfig with defaults.
func newSearchConfig() *searchConfig {
	return &searchConfig{
		limit:     config.DefaultSearchLimit,
		threshold: config.DefaultSearchThreshold,
	}
}

// WithLimit caps the number of results. Values are clamped into
// [1, config.MaxSearchLimit].
func WithLimit(n int) SearchOption {
	return func(c *searchConfig) {
		if n < 1 {
			n = 1
		}
		if n > config.MaxSearchLimit {
			n = config.MaxSearchLimit
		}
		c.limit = n
	}
}

// WithThreshold sets the minimum similarity. Values are clamped into [0, 1].
func WithThreshold(t float64) SearchOption {
	return func(c *searchConfig) {
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		c.threshold = t
	}
}

// WithServers restricts results to the named servers, applied after ranking.
func WithServers(servers ...string) SearchOption {
	return func(c *searchConfig) {
		c.servers = servers
	}
}

// ToolResult is one ranked search hit, reassembled into tool-facing fields.
type ToolResult struct {
	serverName     string
	toolName       string
	description    string
	inputSchema    map[string]any
	similarity     float64
	searchableText string
	provenance     toolsearch.Provenance
}

// ServerName returns the owning server's name.
func (r ToolResult) ServerName() string { return r.serverName }

// ToolName returns the tool name.
func (r ToolResult) ToolName() string { return r.toolName }

// Description returns the tool description.
func (r ToolResult) Description() string { return r.description }

// InputSchema returns the tool's JSON-schema input description.
func (r ToolResult) InputSchema() map[string]any { return r.inputSchema }

// Similarity returns the cosine similarity to the query.
func (r ToolResult) Similarity() float64 { return r.similarity }

// SearchableText returns the exact text that was embedded for this tool.
func (r ToolResult) SearchableText() string { return r.searchableText }

// Provenance reports whether the identity came from structured metadata or
// was heuristically parsed from the embedded text.
func (r ToolResult) Provenance() toolsearch.Provenance { return r.provenance }

// SearchResult is the response of a Search call.
type SearchResult struct {
	query     string
	results   []ToolResult
	limit     int
	threshold float64
	servers   []string
}

// Query returns the original query string.
func (r SearchResult) Query() string { return r.query }

// Results returns the ranked hits.
func (r SearchResult) Results() []ToolResult {
	out := make([]ToolResult, len(r.results))
	copy(out, r.results)
	return out
}

// Total returns the number of hits.
func (r SearchResult) Total() int { return len(r.results) }

// Limit returns the effective result cap.
func (r SearchResult) Limit() int { return r.limit }

// Threshold returns the effective similarity threshold.
func (r SearchResult) Threshold() float64 { return r.threshold }

// Servers returns the server filter, nil when unfiltered.
func (r SearchResult) Servers() []string {
	return append([]string(nil), r.servers...)
}

// VectorizedTool identifies one indexed tool without a similarity score.
type VectorizedTool struct {
	serverName  string
	toolName    string
	description string
	inputSchema map[string]any
}

// ServerName returns the owning server's name.
func (t VectorizedTool) ServerName() string { return t.serverName }

// ToolName returns the tool name.
func (t VectorizedTool) ToolName() string { return t.toolName }

// Description returns the tool description.
func (t VectorizedTool) Description() string { return t.description }

// InputSchema returns the tool's JSON-schema input description.
func (t VectorizedTool) InputSchema() map[string]any { return t.inputSchema }

// RebuildReport summarizes a bulk index rebuild.
type RebuildReport struct {
	serversIndexed int
	toolsIndexed   int
	toolsFailed    int
}

// ServersIndexed returns the number of servers whose tools were indexed.
func (r RebuildReport) ServersIndexed() int { return r.serversIndexed }

// ToolsIndexed returns the number of tools successfully indexed.
func (r RebuildReport) ToolsIndexed() int { return r.toolsIndexed }

// ToolsFailed returns the number of tools that failed to index and were
// skipped.
func (r RebuildReport) ToolsFailed() int { return r.toolsFailed }

// ServerStat is per-server indexing state.
type ServerStat struct {
	serverName string
	toolsCount int
	isActive   bool
}

// ServerName returns the server's name.
func (s ServerStat) ServerName() string { return s.serverName }

// ToolsCount returns the number of indexed tools for the server.
func (s ServerStat) ToolsCount() int { return s.toolsCount }

// IsActive reports whether the server is enabled.
func (s ServerStat) IsActive() bool { return s.isActive }

// Stats summarizes the search index.
type Stats struct {
	totalVectorizedTools  int
	totalActiveServers    int
	totalServersWithTools int
	serverStats           []ServerStat
	lastUpdated           time.Time
}

// TotalVectorizedTools returns the number of indexed tool records.
func (s Stats) TotalVectorizedTools() int { return s.totalVectorizedTools }

// TotalActiveServers returns the number of enabled servers.
func (s Stats) TotalActiveServers() int { return s.totalActiveServers }

// TotalServersWithTools returns the number of servers with at least one
// indexed tool.
func (s Stats) TotalServersWithTools() int { return s.totalServersWithTools }

// ServerStats returns per-server indexing state.
func (s Stats) ServerStats() []ServerStat {
	out := make([]ServerStat, len(s.serverStats))
	copy(out, s.serverStats)
	return out
}

// LastUpdated returns the most recent record update time, zero when the
// index is empty.
func (s Stats) LastUpdated() time.Time { return s.lastUpdated }

// ToolSearch orchestrates semantic search over the tool catalog: it embeds
// text, maintains the vector index, and reassembles ranked tool results.
type ToolSearch struct {
	store    toolsearch.VectorStore
	embedder toolsearch.Embedder
	catalog  registry.Catalog
	logger   *slog.Logger
}

// NewToolSearch creates a ToolSearch service.
func NewToolSearch(store toolsearch.VectorStore, embedder toolsearch.Embedder, catalog registry.Catalog, logger *slog.Logger) *ToolSearch {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolSearch{
		store:    store,
		embedder: embedder,
		catalog:  catalog,
		logger:   logger,
	}
}

// searchableText builds the text that gets embedded for a tool. The leading
// "{server}_{tool}" token is what the heuristic identity parser expects when
// metadata is lost.
func searchableText(serverName string, tool registry.Tool) string {
	text := serverName + "_" + tool.Name()
	if desc := strings.TrimSpace(tool.Description()); desc != "" {
		text += " " + desc
	}
	return text
}

// contentID builds the record key for a tool.
func contentID(serverName, toolName string) string {
	return serverName + ":" + toolName
}

// IngestTool embeds and stores one tool descriptor.
func (s *ToolSearch) IngestTool(ctx context.Context, serverName string, tool registry.Tool) error {
	text := searchableText(serverName, tool)

	embeddings, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("embed tool %s/%s: %w", serverName, tool.Name(), err)
	}
	vectors := embeddings.Vectors()
	if len(vectors) != 1 {
		return fmt.Errorf("embed tool %s/%s: expected 1 vector, got %d", serverName, tool.Name(), len(vectors))
	}

	record := toolsearch.NewEmbeddingRecord(
		toolsearch.ContentTypeTool,
		contentID(serverName, tool.Name()),
		text,
		vectors[0],
		toolsearch.NewToolMetadata(serverName, tool.Name(), tool.Description(), tool.InputSchema()),
		embeddings.Model(),
	)
	if err := s.store.Upsert(ctx, record); err != nil {
		return fmt.Errorf("store tool %s/%s: %w", serverName, tool.Name(), err)
	}
	return nil
}

// ingestServer indexes all of a server's tools sequentially. Per-tool
// failures are logged and skipped; the batch continues.
func (s *ToolSearch) ingestServer(ctx context.Context, server registry.ServerConfig) (indexed, failed int) {
	for _, tool := range server.Tools() {
		if err := s.IngestTool(ctx, server.Name(), tool); err != nil {
			s.logger.Warn("failed to index tool, skipping",
				"server", server.Name(),
				"tool", tool.Name(),
				"error", err,
			)
			failed++
			continue
		}
		indexed++
	}
	return indexed, failed
}

// RebuildAll re-indexes the tools of every enabled server, sequentially per
// server and per tool.
func (s *ToolSearch) RebuildAll(ctx context.Context) (RebuildReport, error) {
	servers, err := s.catalog.ListActiveServers(ctx)
	if err != nil {
		return RebuildReport{}, fmt.Errorf("list servers: %w", err)
	}

	var report RebuildReport
	for _, server := range servers {
		if !server.Enabled() || len(server.Tools()) == 0 {
			continue
		}
		indexed, failed := s.ingestServer(ctx, server)
		report.toolsIndexed += indexed
		report.toolsFailed += failed
		report.serversIndexed++
	}

	s.logger.Info("rebuilt search index",
		"servers", report.serversIndexed,
		"tools", report.toolsIndexed,
		"failed", report.toolsFailed,
	)
	return report, nil
}

// RebuildServer re-indexes one server's tools. Returns ErrServerNotFound for
// an unknown server, ErrServerNotEligible for a disabled server or one with
// no discovered tools.
func (s *ToolSearch) RebuildServer(ctx context.Context, serverName string) (int, error) {
	servers, err := s.catalog.ListActiveServers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list servers: %w", err)
	}

	for _, server := range servers {
		if server.Name() != serverName {
			continue
		}
		if !server.Enabled() || len(server.Tools()) == 0 {
			return 0, fmt.Errorf("%w: %s", ErrServerNotEligible, serverName)
		}
		indexed, failed := s.ingestServer(ctx, server)
		if failed > 0 {
			s.logger.Warn("rebuilt server index with skipped tools",
				"server", serverName,
				"tools", indexed,
				"failed", failed,
			)
		}
		return indexed, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrServerNotFound, serverName)
}

// Search embeds the query and returns matches ranked by descending
// similarity.
func (s *ToolSearch) Search(ctx context.Context, query string, opts ...SearchOption) (SearchResult, error) {
	cfg := newSearchConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	embeddings, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return SearchResult{}, fmt.Errorf("embed query: %w", err)
	}
	vectors := embeddings.Vectors()
	if len(vectors) != 1 {
		return SearchResult{}, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}

	matches, err := s.store.Search(ctx, vectors[0], cfg.limit, cfg.threshold, toolsearch.ContentTypeTool)
	if err != nil {
		return SearchResult{}, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]ToolResult, 0, len(matches))
	for _, match := range matches {
		result := toToolResult(match)
		if len(cfg.servers) > 0 && !containsString(cfg.servers, result.serverName) {
			continue
		}
		results = append(results, result)
	}

	return SearchResult{
		query:     query,
		results:   results,
		limit:     cfg.limit,
		threshold: cfg.threshold,
		servers:   cfg.servers,
	}, nil
}

// ListVectorized enumerates every indexed tool, optionally restricted to the
// named servers.
func (s *ToolSearch) ListVectorized(ctx context.Context, servers []string) ([]VectorizedTool, error) {
	records, err := s.store.List(ctx, toolsearch.ContentTypeTool)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	tools := make([]VectorizedTool, 0, len(records))
	for _, record := range records {
		match := toolsearch.NewMatch(record, 0)
		identity := match.Identity()
		if len(servers) > 0 && !containsString(servers, identity.ServerName()) {
			continue
		}
		tools = append(tools, VectorizedTool{
			serverName:  identity.ServerName(),
			toolName:    identity.ToolName(),
			description: identity.Description(),
			inputSchema: identity.InputSchema(),
		})
	}

	sort.Slice(tools, func(i, j int) bool {
		if tools[i].serverName != tools[j].serverName {
			return tools[i].serverName < tools[j].serverName
		}
		return tools[i].toolName < tools[j].toolName
	})
	return tools, nil
}

// Stats reports index coverage against the configured server catalog.
func (s *ToolSearch) Stats(ctx context.Context) (Stats, error) {
	servers, err := s.catalog.ListActiveServers(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list servers: %w", err)
	}

	records, err := s.store.List(ctx, toolsearch.ContentTypeTool)
	if err != nil {
		return Stats{}, fmt.Errorf("list embeddings: %w", err)
	}

	toolsPerServer := make(map[string]int)
	var lastUpdated time.Time
	for _, record := range records {
		identity := toolsearch.NewMatch(record, 0).Identity()
		toolsPerServer[identity.ServerName()]++
		if record.UpdatedAt().After(lastUpdated) {
			lastUpdated = record.UpdatedAt()
		}
	}

	stats := Stats{
		totalVectorizedTools: len(records),
		lastUpdated:          lastUpdated,
	}
	for _, server := range servers {
		if server.Enabled() {
			stats.totalActiveServers++
		}
		count := toolsPerServer[server.Name()]
		if count > 0 {
			stats.totalServersWithTools++
		}
		stats.serverStats = append(stats.serverStats, ServerStat{
			serverName: server.Name(),
			toolsCount: count,
			isActive:   server.Enabled(),
		})
	}
	return stats, nil
}

func toToolResult(match toolsearch.Match) ToolResult {
	identity := match.Identity()
	return ToolResult{
		serverName:     identity.ServerName(),
		toolName:       identity.ToolName(),
		description:    identity.Description(),
		inputSchema:    identity.InputSchema(),
		similarity:     match.Similarity(),
		searchableText: match.Record().TextContent(),
		provenance:     match.Provenance(),
	}
}

func containsString(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
