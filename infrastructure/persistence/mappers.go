package persistence

import (
	"github.com/tooldex/tooldex/domain/registry"
	"github.com/tooldex/tooldex/domain/toolsearch"
)

// UserMapper maps between registry.User and UserModel.
type UserMapper struct{}

// ToDomain converts a database row to the domain value object.
func (UserMapper) ToDomain(entity UserModel) registry.User {
	return registry.NewUser(entity.Username, entity.PasswordHash, entity.IsAdmin)
}

// ToModel converts a domain value object to a database row.
func (UserMapper) ToModel(domain registry.User) UserModel {
	return UserModel{
		Username:     domain.Username(),
		PasswordHash: domain.PasswordHash(),
		IsAdmin:      domain.IsAdmin(),
	}
}

// GroupMapper maps between registry.Group and GroupModel.
type GroupMapper struct{}

// ToDomain converts a database row to the domain value object.
func (GroupMapper) ToDomain(entity GroupModel) registry.Group {
	return registry.NewGroup(entity.GroupID, entity.Name, entity.Description, entity.Servers)
}

// ToModel converts a domain value object to a database row.
func (GroupMapper) ToModel(domain registry.Group) GroupModel {
	return GroupModel{
		GroupID:     domain.ID(),
		Name:        domain.Name(),
		Description: domain.Description(),
		Servers:     domain.Servers(),
	}
}

// toolsToDocs converts domain tools to their JSON column shape.
func toolsToDocs(tools []registry.Tool) ToolDocs {
	docs := make(ToolDocs, len(tools))
	for i, t := range tools {
		docs[i] = ToolDoc{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		}
	}
	return docs
}

// docsToTools converts the JSON column shape back to domain tools.
func docsToTools(docs ToolDocs) []registry.Tool {
	tools := make([]registry.Tool, len(docs))
	for i, d := range docs {
		tools[i] = registry.NewTool(d.Name, d.Description, d.InputSchema)
	}
	return tools
}

// ServerConfigMapper maps between registry.ServerConfig and ServerConfigModel.
type ServerConfigMapper struct{}

// ToDomain converts a database row to the domain value object.
func (ServerConfigMapper) ToDomain(entity ServerConfigModel) registry.ServerConfig {
	return registry.NewServerConfig(entity.Name,
		registry.WithStatus(registry.ServerStatus(entity.Status)),
		registry.WithEnabled(entity.Enabled),
		registry.WithCommand(entity.Command, entity.Args...),
		registry.WithEnv(entity.Env),
		registry.WithURL(entity.URL),
		registry.WithTools(docsToTools(entity.Tools)),
	)
}

// ToModel converts a domain value object to a database row.
func (ServerConfigMapper) ToModel(domain registry.ServerConfig) ServerConfigModel {
	return ServerConfigModel{
		Name:      domain.Name(),
		Status:    string(domain.Status()),
		Enabled:   domain.Enabled(),
		Command:   domain.Command(),
		Args:      domain.Args(),
		Env:       domain.Env(),
		URL:       domain.URL(),
		Tools:     toolsToDocs(domain.Tools()),
		UpdatedAt: domain.UpdatedAt(),
	}
}

// MarketServerMapper maps between registry.MarketServer and MarketServerModel.
type MarketServerMapper struct{}

// ToDomain converts a database row to the domain value object.
func (MarketServerMapper) ToDomain(entity MarketServerModel) registry.MarketServer {
	return registry.NewMarketServer(entity.Name, entity.DisplayName, entity.Description,
		entity.Categories, docsToTools(entity.Tools))
}

// ToModel converts a domain value object to a database row.
func (MarketServerMapper) ToModel(domain registry.MarketServer) MarketServerModel {
	return MarketServerModel{
		Name:        domain.Name(),
		DisplayName: domain.DisplayName(),
		Description: domain.Description(),
		Categories:  domain.Categories(),
		Tools:       toolsToDocs(domain.Tools()),
	}
}

// metadataToMap flattens the typed metadata document into the JSON column
// shape used by both database backends.
func metadataToMap(m toolsearch.ToolMetadata) JSONMap {
	if m.IsZero() {
		return nil
	}
	return JSONMap{
		"serverName":  m.ServerName(),
		"toolName":    m.ToolName(),
		"description": m.Description(),
		"inputSchema": m.InputSchema(),
	}
}

// mapToMetadata parses the JSON column shape back into the typed document.
// Unknown or missing keys simply leave fields empty; the match layer treats
// an empty document as "parse identity from text".
func mapToMetadata(m JSONMap) toolsearch.ToolMetadata {
	if m == nil {
		return toolsearch.ToolMetadata{}
	}
	str := func(key string) string {
		if v, ok := m[key].(string); ok {
			return v
		}
		return ""
	}
	var schema map[string]any
	if v, ok := m["inputSchema"].(map[string]any); ok {
		schema = v
	}
	return toolsearch.NewToolMetadata(str("serverName"), str("toolName"), str("description"), schema)
}

// SQLiteEmbeddingMapper maps between toolsearch.EmbeddingRecord and
// SQLiteEmbeddingModel.
type SQLiteEmbeddingMapper struct{}

// ToDomain converts a database row to the domain record.
func (SQLiteEmbeddingMapper) ToDomain(entity SQLiteEmbeddingModel) toolsearch.EmbeddingRecord {
	record := toolsearch.NewEmbeddingRecord(
		entity.ContentType,
		entity.ContentID,
		entity.TextContent,
		entity.Embedding,
		mapToMetadata(entity.Metadata),
		entity.Model,
	)
	return record.WithTimestamps(entity.CreatedAt, entity.UpdatedAt)
}

// ToModel converts a domain record to a database row.
func (SQLiteEmbeddingMapper) ToModel(domain toolsearch.EmbeddingRecord) SQLiteEmbeddingModel {
	return SQLiteEmbeddingModel{
		ContentType: domain.ContentType(),
		ContentID:   domain.ContentID(),
		TextContent: domain.TextContent(),
		Embedding:   domain.Vector(),
		Dimensions:  domain.Dimensions(),
		Metadata:    metadataToMap(domain.Metadata()),
		Model:       domain.Model(),
		CreatedAt:   domain.CreatedAt(),
		UpdatedAt:   domain.UpdatedAt(),
	}
}
