package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tooldex/tooldex/domain/toolsearch"
)

// embeddingDoc is the JSON shape of one persisted embedding record.
type embeddingDoc struct {
	ContentType string         `json:"contentType"`
	ContentID   string         `json:"contentId"`
	TextContent string         `json:"textContent"`
	Vector      []float64      `json:"vector"`
	Dimensions  int            `json:"dimensions"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Model       string         `json:"model,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// FileVectorStore keeps embedding records in a single JSON file and ranks
// candidates in memory. It is the storage of last resort: always available,
// with brute-force search that is fine at tool-catalog scale.
type FileVectorStore struct {
	path string

	mu      sync.RWMutex
	records map[string]embeddingDoc
}

// NewFileVectorStore loads (or initializes) the embeddings file at path.
func NewFileVectorStore(path string) (*FileVectorStore, error) {
	s := &FileVectorStore{
		path:    path,
		records: map[string]embeddingDoc{},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read embeddings file: %w", err)
	}

	if len(data) > 0 {
		var docs []embeddingDoc
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("parse embeddings file %s: %w", path, err)
		}
		for _, doc := range docs {
			s.records[recordKey(doc.ContentType, doc.ContentID)] = doc
		}
	}
	return s, nil
}

func recordKey(contentType, contentID string) string {
	return contentType + "\x00" + contentID
}

// save writes all records atomically. Callers must hold the write lock.
func (s *FileVectorStore) save() error {
	docs := make([]embeddingDoc, 0, len(s.records))
	for _, doc := range s.records {
		docs = append(docs, doc)
	}

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode embeddings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".embeddings-*.json")
	if err != nil {
		return fmt.Errorf("create temp embeddings file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write embeddings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close embeddings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace embeddings file: %w", err)
	}
	return nil
}

// Upsert inserts or replaces the record for its (contentType, contentID) key.
func (s *FileVectorStore) Upsert(_ context.Context, record toolsearch.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(record.ContentType(), record.ContentID())
	createdAt := record.CreatedAt()
	previous, hadPrevious := s.records[key]
	if hadPrevious {
		createdAt = previous.CreatedAt
	}

	s.records[key] = embeddingDoc{
		ContentType: record.ContentType(),
		ContentID:   record.ContentID(),
		TextContent: record.TextContent(),
		Vector:      record.Vector(),
		Dimensions:  record.Dimensions(),
		Metadata:    metadataToMap(record.Metadata()),
		Model:       record.Model(),
		CreatedAt:   createdAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.save(); err != nil {
		// Keep memory and disk in agreement when the write fails.
		if hadPrevious {
			s.records[key] = previous
		} else {
			delete(s.records, key)
		}
		return err
	}
	return nil
}

// Search ranks all candidate records against the query in memory. Records of
// a different width score zero similarity and fall to the threshold filter.
func (s *FileVectorStore) Search(ctx context.Context, query []float64, limit int, threshold float64, contentType string) ([]toolsearch.Match, error) {
	if limit <= 0 {
		limit = 10
	}
	records, err := s.List(ctx, contentType)
	if err != nil {
		return nil, err
	}
	return toolsearch.RankRecords(query, records, limit, threshold), nil
}

// List returns every record of the given content type, all types when empty.
func (s *FileVectorStore) List(_ context.Context, contentType string) ([]toolsearch.EmbeddingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []toolsearch.EmbeddingRecord
	for _, doc := range s.records {
		if contentType != "" && doc.ContentType != contentType {
			continue
		}
		records = append(records, docToRecord(doc))
	}
	return records, nil
}

// Count returns the number of stored records of the given content type.
func (s *FileVectorStore) Count(_ context.Context, contentType string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if contentType == "" {
		return int64(len(s.records)), nil
	}
	var n int64
	for _, doc := range s.records {
		if doc.ContentType == contentType {
			n++
		}
	}
	return n, nil
}

// DeleteByServer removes every tool record whose content ID belongs to
// serverName.
func (s *FileVectorStore) DeleteByServer(_ context.Context, serverName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := serverName + ":"
	changed := false
	for key, doc := range s.records {
		if doc.ContentType == toolsearch.ContentTypeTool && strings.HasPrefix(doc.ContentID, prefix) {
			delete(s.records, key)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.save()
}

func docToRecord(doc embeddingDoc) toolsearch.EmbeddingRecord {
	return toolsearch.NewEmbeddingRecord(
		doc.ContentType,
		doc.ContentID,
		doc.TextContent,
		doc.Vector,
		mapToMetadata(doc.Metadata),
		doc.Model,
	).WithTimestamps(doc.CreatedAt, doc.UpdatedAt)
}

// metadataToMap flattens typed tool metadata into its JSON document form.
func metadataToMap(m toolsearch.ToolMetadata) map[string]any {
	if m.IsZero() {
		return nil
	}
	doc := map[string]any{
		"serverName": m.ServerName(),
		"toolName":   m.ToolName(),
	}
	if m.Description() != "" {
		doc["description"] = m.Description()
	}
	if schema := m.InputSchema(); schema != nil {
		doc["inputSchema"] = schema
	}
	return doc
}

// mapToMetadata rehydrates typed tool metadata from its JSON document form.
func mapToMetadata(doc map[string]any) toolsearch.ToolMetadata {
	if len(doc) == 0 {
		return toolsearch.ToolMetadata{}
	}
	str := func(key string) string {
		v, _ := doc[key].(string)
		return v
	}
	schema, _ := doc["inputSchema"].(map[string]any)
	return toolsearch.NewToolMetadata(str("serverName"), str("toolName"), str("description"), schema)
}

var _ toolsearch.VectorStore = (*FileVectorStore)(nil)
