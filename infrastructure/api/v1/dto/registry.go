package dto

import "time"

// ToolDescriptor is one tool exposed by a configured server.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// Server is one configured MCP server.
type Server struct {
	Name      string            `json:"name"`
	Status    string            `json:"status"`
	Enabled   bool              `json:"enabled"`
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	URL       string            `json:"url,omitempty"`
	Tools     []ToolDescriptor  `json:"tools,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// SaveServerRequest is the body of PUT /servers/{name}.
type SaveServerRequest struct {
	Enabled *bool             `json:"enabled,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
	Tools   []ToolDescriptor  `json:"tools,omitempty"`
}

// ListServersResponse is the body of GET /servers.
type ListServersResponse struct {
	Servers []Server `json:"servers"`
	Total   int      `json:"total"`
}
