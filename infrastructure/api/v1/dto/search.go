// Package dto defines the JSON request and response shapes of the v1 API.
package dto

import "time"

// ToolResult is one ranked search hit.
type ToolResult struct {
	ServerName     string         `json:"serverName"`
	ToolName       string         `json:"toolName"`
	Description    string         `json:"description"`
	InputSchema    map[string]any `json:"inputSchema,omitempty"`
	Similarity     float64        `json:"similarity"`
	SearchableText string         `json:"searchableText"`
	Provenance     string         `json:"provenance"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Query     string       `json:"query"`
	Results   []ToolResult `json:"results"`
	Total     int          `json:"total"`
	Limit     int          `json:"limit"`
	Threshold float64      `json:"threshold"`
	Servers   []string     `json:"servers,omitempty"`
}

// VectorizedTool is one indexed tool without a similarity score.
type VectorizedTool struct {
	ServerName  string         `json:"serverName"`
	ToolName    string         `json:"toolName"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// ListToolsResponse is the body of GET /search/tools.
type ListToolsResponse struct {
	Tools   []VectorizedTool `json:"tools"`
	Total   int              `json:"total"`
	Servers []string         `json:"servers,omitempty"`
}

// RebuildResponse is the body of POST /search/rebuild.
type RebuildResponse struct {
	Success    bool `json:"success"`
	ToolsCount *int `json:"toolsCount,omitempty"`
}

// ServerStat is per-server indexing state.
type ServerStat struct {
	ServerName string `json:"serverName"`
	ToolsCount int    `json:"toolsCount"`
	IsActive   bool   `json:"isActive"`
}

// StatsResponse is the body of GET /search/stats.
type StatsResponse struct {
	TotalVectorizedTools  int          `json:"totalVectorizedTools"`
	TotalActiveServers    int          `json:"totalActiveServers"`
	TotalServersWithTools int          `json:"totalServersWithTools"`
	ServerStats           []ServerStat `json:"serverStats"`
	LastUpdated           *time.Time   `json:"lastUpdated,omitempty"`
}
