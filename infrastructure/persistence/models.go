// Package persistence provides database-backed storage implementations.
package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringSlice stores a []string as a JSON column.
type StringSlice []string

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(value any) error {
	return scanJSON(value, s)
}

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// StringMap stores a map[string]string as a JSON column.
type StringMap map[string]string

// Scan implements sql.Scanner.
func (m *StringMap) Scan(value any) error {
	return scanJSON(value, m)
}

// Value implements driver.Valuer.
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// JSONMap stores a map[string]any as a JSON column.
type JSONMap map[string]any

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	return scanJSON(value, m)
}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// ToolDoc is the JSON shape of one tool descriptor inside a server row.
type ToolDoc struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

// ToolDocs stores a []ToolDoc as a JSON column.
type ToolDocs []ToolDoc

// Scan implements sql.Scanner.
func (t *ToolDocs) Scan(value any) error {
	return scanJSON(value, t)
}

// Value implements driver.Valuer.
func (t ToolDocs) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Float64Slice stores a []float64 as a JSON column (SQLite embedding rows).
type Float64Slice []float64

// Scan implements sql.Scanner.
func (f *Float64Slice) Scan(value any) error {
	return scanJSON(value, f)
}

// Value implements driver.Valuer.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

func scanJSON(value any, dest any) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T as JSON", value)
	}

	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

// UserModel is the GORM model for user accounts.
type UserModel struct {
	Username     string `gorm:"column:username;primaryKey"`
	PasswordHash string `gorm:"column:password_hash"`
	IsAdmin      bool   `gorm:"column:is_admin"`
}

// TableName overrides the GORM table name.
func (UserModel) TableName() string { return "users" }

// GroupModel is the GORM model for server groups.
type GroupModel struct {
	GroupID     string      `gorm:"column:group_id;primaryKey"`
	Name        string      `gorm:"column:name"`
	Description string      `gorm:"column:description"`
	Servers     StringSlice `gorm:"column:servers;type:json"`
}

// TableName overrides the GORM table name.
func (GroupModel) TableName() string { return "groups" }

// ServerConfigModel is the GORM model for server configurations.
type ServerConfigModel struct {
	Name      string      `gorm:"column:name;primaryKey"`
	Status    string      `gorm:"column:status"`
	Enabled   bool        `gorm:"column:enabled"`
	Command   string      `gorm:"column:command"`
	Args      StringSlice `gorm:"column:args;type:json"`
	Env       StringMap   `gorm:"column:env;type:json"`
	URL       string      `gorm:"column:url"`
	Tools     ToolDocs    `gorm:"column:tools;type:json"`
	UpdatedAt time.Time   `gorm:"column:updated_at"`
}

// TableName overrides the GORM table name.
func (ServerConfigModel) TableName() string { return "servers" }

// MarketServerModel is the GORM model for marketplace catalog entries.
type MarketServerModel struct {
	Name        string      `gorm:"column:name;primaryKey"`
	DisplayName string      `gorm:"column:display_name"`
	Description string      `gorm:"column:description"`
	Categories  StringSlice `gorm:"column:categories;type:json"`
	Tools       ToolDocs    `gorm:"column:tools;type:json"`
}

// TableName overrides the GORM table name.
func (MarketServerModel) TableName() string { return "market_servers" }

// SQLiteEmbeddingModel is the GORM model for embedding records on SQLite,
// where the vector is a JSON column and ranking happens in memory. The
// Postgres embedding table is managed with raw DDL instead because its
// vector column width is runtime-configurable.
type SQLiteEmbeddingModel struct {
	ID          int64        `gorm:"column:id;primaryKey;autoIncrement"`
	ContentType string       `gorm:"column:content_type;uniqueIndex:idx_embeddings_content"`
	ContentID   string       `gorm:"column:content_id;uniqueIndex:idx_embeddings_content"`
	TextContent string       `gorm:"column:text_content"`
	Embedding   Float64Slice `gorm:"column:embedding;type:json"`
	Dimensions  int          `gorm:"column:dimensions"`
	Metadata    JSONMap      `gorm:"column:metadata;type:json"`
	Model       string       `gorm:"column:model"`
	CreatedAt   time.Time    `gorm:"column:created_at"`
	UpdatedAt   time.Time    `gorm:"column:updated_at"`
}

// TableName overrides the GORM table name.
func (SQLiteEmbeddingModel) TableName() string { return "vector_embeddings" }
