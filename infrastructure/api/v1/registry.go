package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tooldex/tooldex"
	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/infrastructure/api/middleware"
	"github.com/tooldex/tooldex/infrastructure/api/v1/dto"
)

// ServersRouter handles server configuration endpoints.
type ServersRouter struct {
	client *tooldex.Client
	logger *slog.Logger
}

// NewServersRouter creates a new ServersRouter.
func NewServersRouter(client *tooldex.Client) *ServersRouter {
	return &ServersRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for server configuration endpoints.
func (r *ServersRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.ListServers)
	router.Get("/{name}", r.GetServer)
	router.Put("/{name}", r.SaveServer)
	router.Delete("/{name}", r.DeleteServer)

	return router
}

// ListServers handles GET /api/v1/servers.
func (r *ServersRouter) ListServers(w http.ResponseWriter, req *http.Request) {
	servers, err := r.client.Registry.ListServers(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	response := dto.ListServersResponse{
		Servers: make([]dto.Server, len(servers)),
		Total:   len(servers),
	}
	for i, server := range servers {
		response.Servers[i] = buildServer(server)
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// GetServer handles GET /api/v1/servers/{name}.
func (r *ServersRouter) GetServer(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	server, err := r.client.Registry.Server(req.Context(), name)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, buildServer(server))
}

// SaveServer handles PUT /api/v1/servers/{name}. The URL path names the
// server; the body carries its configuration. Saving an existing name
// replaces the configuration wholesale.
func (r *ServersRouter) SaveServer(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	var body dto.SaveServerRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}
	if body.Command == "" && body.URL == "" {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "either command or url is required", nil), r.logger)
		return
	}

	opts := []registry.ServerConfigOption{}
	if body.Command != "" {
		opts = append(opts, registry.WithCommand(body.Command, body.Args...))
	}
	if body.URL != "" {
		opts = append(opts, registry.WithURL(body.URL))
	}
	if len(body.Env) > 0 {
		opts = append(opts, registry.WithEnv(body.Env))
	}
	if body.Enabled != nil {
		opts = append(opts, registry.WithEnabled(*body.Enabled))
	}
	if len(body.Tools) > 0 {
		tools := make([]registry.Tool, len(body.Tools))
		for i, t := range body.Tools {
			tools[i] = registry.NewTool(t.Name, t.Description, t.InputSchema)
		}
		opts = append(opts, registry.WithTools(tools))
	}

	saved, err := r.client.Registry.SaveServer(req.Context(), registry.NewServerConfig(name, opts...))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, buildServer(saved))
}

// DeleteServer handles DELETE /api/v1/servers/{name}.
func (r *ServersRouter) DeleteServer(w http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	if err := r.client.Registry.DeleteServer(req.Context(), name); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func buildServer(server registry.ServerConfig) dto.Server {
	tools := server.Tools()
	out := dto.Server{
		Name:      server.Name(),
		Status:    string(server.Status()),
		Enabled:   server.Enabled(),
		Command:   server.Command(),
		Args:      server.Args(),
		Env:       server.Env(),
		URL:       server.URL(),
		UpdatedAt: server.UpdatedAt(),
	}
	if len(tools) > 0 {
		out.Tools = make([]dto.ToolDescriptor, len(tools))
		for i, t := range tools {
			out.Tools[i] = dto.ToolDescriptor{
				Name:        t.Name(),
				Description: t.Description(),
				InputSchema: t.InputSchema(),
			}
		}
	}
	return out
}
