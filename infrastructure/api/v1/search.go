// Package v1 implements the version 1 HTTP API.
package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tooldex/tooldex"
	"github.com/tooldex/tooldex/application/service"
	"github.com/tooldex/tooldex/infrastructure/api/middleware"
	"github.com/tooldex/tooldex/infrastructure/api/v1/dto"
)

// SearchRouter handles search API endpoints.
type SearchRouter struct {
	client *tooldex.Client
	logger *slog.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *tooldex.Client) *SearchRouter {
	return &SearchRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Search)
	router.Get("/tools", r.ListTools)
	router.Post("/rebuild", r.RebuildAll)
	router.Post("/rebuild/{server}", r.RebuildServer)
	router.Get("/stats", r.Stats)

	return router
}

// Search handles GET /api/v1/search.
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	params := req.URL.Query()

	query := strings.TrimSpace(params.Get("query"))
	if query == "" {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "query parameter is required", nil), r.logger)
		return
	}

	opts := []service.SearchOption{}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "limit must be an integer", err), r.logger)
			return
		}
		opts = append(opts, service.WithLimit(limit))
	}
	if raw := params.Get("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "threshold must be a number", err), r.logger)
			return
		}
		opts = append(opts, service.WithThreshold(threshold))
	}
	if servers := splitServers(params.Get("servers")); len(servers) > 0 {
		opts = append(opts, service.WithServers(servers...))
	}

	result, err := r.client.Search.Search(ctx, query, opts...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, buildSearchResponse(result))
}

// ListTools handles GET /api/v1/search/tools.
func (r *SearchRouter) ListTools(w http.ResponseWriter, req *http.Request) {
	servers := splitServers(req.URL.Query().Get("servers"))

	tools, err := r.client.Search.ListVectorized(req.Context(), servers)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.ListToolsResponse{
		Tools:   make([]dto.VectorizedTool, len(tools)),
		Total:   len(tools),
		Servers: servers,
	}
	for i, tool := range tools {
		response.Tools[i] = dto.VectorizedTool{
			ServerName:  tool.ServerName(),
			ToolName:    tool.ToolName(),
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		}
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// RebuildAll handles POST /api/v1/search/rebuild.
func (r *SearchRouter) RebuildAll(w http.ResponseWriter, req *http.Request) {
	if _, err := r.client.Search.RebuildAll(req.Context()); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.RebuildResponse{Success: true})
}

// RebuildServer handles POST /api/v1/search/rebuild/{server}.
func (r *SearchRouter) RebuildServer(w http.ResponseWriter, req *http.Request) {
	serverName := chi.URLParam(req, "server")

	count, err := r.client.Search.RebuildServer(req.Context(), serverName)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.RebuildResponse{Success: true, ToolsCount: &count})
}

// Stats handles GET /api/v1/search/stats.
func (r *SearchRouter) Stats(w http.ResponseWriter, req *http.Request) {
	stats, err := r.client.Search.Stats(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.StatsResponse{
		TotalVectorizedTools:  stats.TotalVectorizedTools(),
		TotalActiveServers:    stats.TotalActiveServers(),
		TotalServersWithTools: stats.TotalServersWithTools(),
		ServerStats:           make([]dto.ServerStat, 0, len(stats.ServerStats())),
	}
	for _, s := range stats.ServerStats() {
		response.ServerStats = append(response.ServerStats, dto.ServerStat{
			ServerName: s.ServerName(),
			ToolsCount: s.ToolsCount(),
			IsActive:   s.IsActive(),
		})
	}
	if !stats.LastUpdated().IsZero() {
		t := stats.LastUpdated()
		response.LastUpdated = &t
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

func buildSearchResponse(result service.SearchResult) dto.SearchResponse {
	results := result.Results()
	response := dto.SearchResponse{
		Query:     result.Query(),
		Results:   make([]dto.ToolResult, len(results)),
		Total:     result.Total(),
		Limit:     result.Limit(),
		Threshold: result.Threshold(),
		Servers:   result.Servers(),
	}
	for i, hit := range results {
		response.Results[i] = dto.ToolResult{
			ServerName:     hit.ServerName(),
			ToolName:       hit.ToolName(),
			Description:    hit.Description(),
			InputSchema:    hit.InputSchema(),
			Similarity:     hit.Similarity(),
			SearchableText: hit.SearchableText(),
			Provenance:     string(hit.Provenance()),
		}
	}
	return response
}

// splitServers parses a comma-separated server filter.
func splitServers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	servers := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			servers = append(servers, p)
		}
	}
	if len(servers) == 0 {
		return nil
	}
	return servers
}
