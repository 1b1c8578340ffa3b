// Package registry holds the entities managed by the MCP-server backend:
// users, groups, server configurations, and the marketplace catalog.
package registry

import "time"

// Tool describes a single tool exposed by an MCP server.
type Tool struct {
	name        string
	description string
	inputSchema map[string]any
}

// NewTool creates a Tool descriptor.
func NewTool(name, description string, inputSchema map[string]any) Tool {
	return Tool{name: name, description: description, inputSchema: inputSchema}
}

// Name returns the tool name.
func (t Tool) Name() string { return t.name }

// Description returns the human-readable tool description.
func (t Tool) Description() string { return t.description }

// InputSchema returns the tool's JSON-schema input description.
func (t Tool) InputSchema() map[string]any { return t.inputSchema }

// ServerStatus describes the lifecycle state of a configured server.
type ServerStatus string

// ServerStatus values.
const (
	ServerStatusConnected    ServerStatus = "connected"
	ServerStatusConnecting   ServerStatus = "connecting"
	ServerStatusDisconnected ServerStatus = "disconnected"
)

// ServerConfig is one configured MCP server with its discovered tools.
type ServerConfig struct {
	name      string
	status    ServerStatus
	enabled   bool
	command   string
	args      []string
	env       map[string]string
	url       string
	tools     []Tool
	updatedAt time.Time
}

// ServerConfigOption mutates a ServerConfig during construction.
type ServerConfigOption func(*ServerConfig)

// WithCommand sets the launch command and arguments for a stdio server.
func WithCommand(command string, args ...string) ServerConfigOption {
	return func(s *ServerConfig) {
		s.command = command
		s.args = append([]string(nil), args...)
	}
}

// WithURL sets the endpoint for an HTTP/SSE server.
func WithURL(url string) ServerConfigOption {
	return func(s *ServerConfig) { s.url = url }
}

// WithEnv sets environment variables passed to the server process.
func WithEnv(env map[string]string) ServerConfigOption {
	return func(s *ServerConfig) { s.env = env }
}

// WithStatus sets the server status.
func WithStatus(status ServerStatus) ServerConfigOption {
	return func(s *ServerConfig) { s.status = status }
}

// WithTools sets the tool descriptors discovered on the server.
func WithTools(tools []Tool) ServerConfigOption {
	return func(s *ServerConfig) { s.tools = append([]Tool(nil), tools...) }
}

// WithEnabled toggles whether the server participates in routing and search.
func WithEnabled(enabled bool) ServerConfigOption {
	return func(s *ServerConfig) { s.enabled = enabled }
}

// NewServerConfig creates a server configuration.
func NewServerConfig(name string, opts ...ServerConfigOption) ServerConfig {
	s := ServerConfig{
		name:      name,
		status:    ServerStatusDisconnected,
		enabled:   true,
		updatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Name returns the server name.
func (s ServerConfig) Name() string { return s.name }

// Status returns the server status.
func (s ServerConfig) Status() ServerStatus { return s.status }

// Enabled reports whether the server is enabled.
func (s ServerConfig) Enabled() bool { return s.enabled }

// Command returns the launch command for stdio servers.
func (s ServerConfig) Command() string { return s.command }

// Args returns the launch arguments.
func (s ServerConfig) Args() []string { return append([]string(nil), s.args...) }

// Env returns the server's environment variables.
func (s ServerConfig) Env() map[string]string { return s.env }

// URL returns the endpoint for HTTP servers.
func (s ServerConfig) URL() string { return s.url }

// Tools returns the discovered tool descriptors.
func (s ServerConfig) Tools() []Tool { return append([]Tool(nil), s.tools...) }

// UpdatedAt returns the last modification time.
func (s ServerConfig) UpdatedAt() time.Time { return s.updatedAt }

// User is an account that can manage the backend.
type User struct {
	username     string
	passwordHash string
	isAdmin      bool
}

// NewUser creates a User.
func NewUser(username, passwordHash string, isAdmin bool) User {
	return User{username: username, passwordHash: passwordHash, isAdmin: isAdmin}
}

// Username returns the account name.
func (u User) Username() string { return u.username }

// PasswordHash returns the stored password hash.
func (u User) PasswordHash() string { return u.passwordHash }

// IsAdmin reports whether the user has admin rights.
func (u User) IsAdmin() bool { return u.isAdmin }

// Group is a named set of servers exposed together.
type Group struct {
	id          string
	name        string
	description string
	servers     []string
}

// NewGroup creates a Group.
func NewGroup(id, name, description string, servers []string) Group {
	return Group{id: id, name: name, description: description, servers: append([]string(nil), servers...)}
}

// ID returns the group identifier.
func (g Group) ID() string { return g.id }

// Name returns the group name.
func (g Group) Name() string { return g.name }

// Description returns the group description.
func (g Group) Description() string { return g.description }

// Servers returns the names of servers in the group.
func (g Group) Servers() []string { return append([]string(nil), g.servers...) }

// MarketServer is one entry in the marketplace catalog.
type MarketServer struct {
	name        string
	displayName string
	description string
	categories  []string
	tools       []Tool
}

// NewMarketServer creates a MarketServer.
func NewMarketServer(name, displayName, description string, categories []string, tools []Tool) MarketServer {
	return MarketServer{
		name:        name,
		displayName: displayName,
		description: description,
		categories:  append([]string(nil), categories...),
		tools:       append([]Tool(nil), tools...),
	}
}

// Name returns the catalog entry name.
func (m MarketServer) Name() string { return m.name }

// DisplayName returns the human-facing name.
func (m MarketServer) DisplayName() string { return m.displayName }

// Description returns the catalog description.
func (m MarketServer) Description() string { return m.description }

// Categories returns the catalog categories.
func (m MarketServer) Categories() []string { return append([]string(nil), m.categories...) }

// Tools returns the advertised tools.
func (m MarketServer) Tools() []Tool { return append([]Tool(nil), m.tools...) }
