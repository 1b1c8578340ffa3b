// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tooldex/tooldex/application/service"
)

// Searcher provides tool search operations for MCP tools.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...service.SearchOption) (service.SearchResult, error)
	ListVectorized(ctx context.Context, servers []string) ([]service.VectorizedTool, error)
}

// Server wraps the MCP server with tooldex-specific tools.
type Server struct {
	mcpServer *server.MCPServer
	search    Searcher
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(search Searcher, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		search: search,
		logger: logger,
	}

	mcpServer := server.NewMCPServer(
		"tooldex",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools registers all tooldex tools with the MCP server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	searchTool := mcp.NewTool("search_tools",
		mcp.WithDescription("Semantically search the tools of all configured MCP servers"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of results to return (default: 10)"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum similarity in [0,1] (default: 0.7)"),
		),
	)
	mcpServer.AddTool(searchTool, s.handleSearchTools)

	listTool := mcp.NewTool("list_vectorized_tools",
		mcp.WithDescription("List every tool currently in the search index"),
	)
	mcpServer.AddTool(listTool, s.handleListTools)
}

// handleSearchTools handles the search_tools tool invocation.
func (s *Server) handleSearchTools(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query is required"), nil
	}

	opts := []service.SearchOption{
		service.WithLimit(request.GetInt("limit", 10)),
	}
	if threshold := request.GetFloat("threshold", -1); threshold >= 0 {
		opts = append(opts, service.WithThreshold(threshold))
	}

	result, err := s.search.Search(ctx, query, opts...)
	if err != nil {
		s.logger.Error("tool search failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	type searchResult struct {
		ServerName  string  `json:"serverName"`
		ToolName    string  `json:"toolName"`
		Description string  `json:"description"`
		Similarity  float64 `json:"similarity"`
		Provenance  string  `json:"provenance"`
	}

	hits := result.Results()
	results := make([]searchResult, len(hits))
	for i, hit := range hits {
		results[i] = searchResult{
			ServerName:  hit.ServerName(),
			ToolName:    hit.ToolName(),
			Description: hit.Description(),
			Similarity:  hit.Similarity(),
			Provenance:  string(hit.Provenance()),
		}
	}

	jsonBytes, err := json.Marshal(results)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleListTools handles the list_vectorized_tools tool invocation.
func (s *Server) handleListTools(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tools, err := s.search.ListVectorized(ctx, nil)
	if err != nil {
		s.logger.Error("failed to list indexed tools", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tools: %v", err)), nil
	}

	type toolEntry struct {
		ServerName  string `json:"serverName"`
		ToolName    string `json:"toolName"`
		Description string `json:"description"`
	}

	entries := make([]toolEntry, len(tools))
	for i, tool := range tools {
		entries[i] = toolEntry{
			ServerName:  tool.ServerName(),
			ToolName:    tool.ToolName(),
			Description: tool.Description(),
		}
	}

	jsonBytes, err := json.Marshal(entries)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal tools: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server for transport mounting.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
