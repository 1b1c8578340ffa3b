// Package toolsearch defines the semantic tool-search domain: embedding
// records, similarity ranking, and the vector store contract.
package toolsearch

import "time"

// ContentTypeTool is the only content class currently vectorized.
const ContentTypeTool = "tool"

// ToolMetadata is the strongly typed metadata document attached to a
// content_type="tool" embedding record.
type ToolMetadata struct {
	serverName  string
	toolName    string
	description string
	inputSchema map[string]any
}

// NewToolMetadata creates a ToolMetadata document.
func NewToolMetadata(serverName, toolName, description string, inputSchema map[string]any) ToolMetadata {
	return ToolMetadata{
		serverName:  serverName,
		toolName:    toolName,
		description: description,
		inputSchema: inputSchema,
	}
}

// ServerName returns the owning server's name.
func (m ToolMetadata) ServerName() string { return m.serverName }

// ToolName returns the tool name.
func (m ToolMetadata) ToolName() string { return m.toolName }

// Description returns the tool description.
func (m ToolMetadata) Description() string { return m.description }

// InputSchema returns the tool's JSON-schema input description.
func (m ToolMetadata) InputSchema() map[string]any { return m.inputSchema }

// IsZero reports whether the document carries no identifying fields.
func (m ToolMetadata) IsZero() bool {
	return m.serverName == "" && m.toolName == "" && m.description == ""
}

// EmbeddingRecord is one vectorized content unit, keyed by
// (contentType, contentID). Dimensions always equals len(Vector) — the
// store enforces this on every write.
type EmbeddingRecord struct {
	contentType string
	contentID   string
	textContent string
	vector      []float64
	metadata    ToolMetadata
	model       string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewEmbeddingRecord creates an EmbeddingRecord. The vector is defensively
// copied.
func NewEmbeddingRecord(contentType, contentID, textContent string, vector []float64, metadata ToolMetadata, model string) EmbeddingRecord {
	cp := make([]float64, len(vector))
	copy(cp, vector)
	now := time.Now().UTC()
	return EmbeddingRecord{
		contentType: contentType,
		contentID:   contentID,
		textContent: textContent,
		vector:      cp,
		metadata:    metadata,
		model:       model,
		createdAt:   now,
		updatedAt:   now,
	}
}

// ContentType returns the content class ("tool").
func (r EmbeddingRecord) ContentType() string { return r.contentType }

// ContentID returns the content identifier ("{server}:{tool}").
func (r EmbeddingRecord) ContentID() string { return r.contentID }

// TextContent returns the exact string that was embedded.
func (r EmbeddingRecord) TextContent() string { return r.textContent }

// Vector returns a copy of the embedding vector.
func (r EmbeddingRecord) Vector() []float64 {
	cp := make([]float64, len(r.vector))
	copy(cp, r.vector)
	return cp
}

// Dimensions returns the vector length.
func (r EmbeddingRecord) Dimensions() int { return len(r.vector) }

// Metadata returns the typed metadata document.
func (r EmbeddingRecord) Metadata() ToolMetadata { return r.metadata }

// Model returns the name of the embedding model that produced the vector.
func (r EmbeddingRecord) Model() string { return r.model }

// CreatedAt returns the creation timestamp.
func (r EmbeddingRecord) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last update timestamp.
func (r EmbeddingRecord) UpdatedAt() time.Time { return r.updatedAt }

// WithTimestamps returns a copy of the record with explicit timestamps,
// used by stores when rehydrating persisted rows.
func (r EmbeddingRecord) WithTimestamps(createdAt, updatedAt time.Time) EmbeddingRecord {
	r.createdAt = createdAt
	r.updatedAt = updatedAt
	return r
}
