// Package filestore provides the file-backed storage medium: a JSON
// settings document for registry entities and a JSON vector file for
// embedding records. It is both a standalone backend and the fallback
// target for every database-routed operation.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tooldex/tooldex/domain/registry"
)

// settingsDocument is the JSON shape of the settings file.
type settingsDocument struct {
	Users              []userDoc            `json:"users,omitempty"`
	Groups             []groupDoc           `json:"groups,omitempty"`
	Servers            map[string]serverDoc `json:"mcpServers,omitempty"`
	MarketServers      map[string]marketDoc `json:"marketServers,omitempty"`
	MigrationCompleted bool                 `json:"migrationCompleted,omitempty"`
}

type userDoc struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	IsAdmin      bool   `json:"isAdmin,omitempty"`
}

type groupDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Servers     []string `json:"servers"`
}

type toolDoc struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

type serverDoc struct {
	Status    string            `json:"status,omitempty"`
	Enabled   *bool             `json:"enabled,omitempty"`
	Command   string            `json:"command,omitempty"`
	Args      []string          `json:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	URL       string            `json:"url,omitempty"`
	Tools     []toolDoc         `json:"tools,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty"`
}

type marketDoc struct {
	DisplayName string    `json:"displayName,omitempty"`
	Description string    `json:"description,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	Tools       []toolDoc `json:"tools,omitempty"`
}

// Settings owns the JSON settings file. All entity mutations funnel through
// it under one lock, and every mutation is written back atomically (temp
// file plus rename) so a crash never leaves a half-written document.
type Settings struct {
	path string

	mu  sync.RWMutex
	doc settingsDocument
}

// OpenSettings loads (or initializes) the settings file at path.
func OpenSettings(path string) (*Settings, error) {
	s := &Settings{
		path: path,
		doc: settingsDocument{
			Servers:       map[string]serverDoc{},
			MarketServers: map[string]marketDoc{},
		},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("parse settings file %s: %w", path, err)
		}
	}
	if s.doc.Servers == nil {
		s.doc.Servers = map[string]serverDoc{}
	}
	if s.doc.MarketServers == nil {
		s.doc.MarketServers = map[string]marketDoc{}
	}
	return s, nil
}

// Path returns the settings file path.
func (s *Settings) Path() string { return s.path }

// save writes the document atomically. Callers must hold the write lock.
func (s *Settings) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// MigrationCompleted reports whether the one-time file-to-database bulk
// migration has already run.
func (s *Settings) MigrationCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.MigrationCompleted
}

// SetMigrationCompleted persists the bulk-migration flag. Operators reset it
// by editing the settings file.
func (s *Settings) SetMigrationCompleted(completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.MigrationCompleted = completed
	return s.save()
}

func toolsFromDocs(docs []toolDoc) []registry.Tool {
	tools := make([]registry.Tool, len(docs))
	for i, d := range docs {
		tools[i] = registry.NewTool(d.Name, d.Description, d.InputSchema)
	}
	return tools
}

func toolsToDocs(tools []registry.Tool) []toolDoc {
	docs := make([]toolDoc, len(tools))
	for i, t := range tools {
		docs[i] = toolDoc{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		}
	}
	return docs
}

func serverFromDoc(name string, doc serverDoc) registry.ServerConfig {
	enabled := true
	if doc.Enabled != nil {
		enabled = *doc.Enabled
	}
	return registry.NewServerConfig(name,
		registry.WithStatus(registry.ServerStatus(doc.Status)),
		registry.WithEnabled(enabled),
		registry.WithCommand(doc.Command, doc.Args...),
		registry.WithEnv(doc.Env),
		registry.WithURL(doc.URL),
		registry.WithTools(toolsFromDocs(doc.Tools)),
	)
}

func serverToDoc(server registry.ServerConfig) serverDoc {
	enabled := server.Enabled()
	return serverDoc{
		Status:    string(server.Status()),
		Enabled:   &enabled,
		Command:   server.Command(),
		Args:      server.Args(),
		Env:       server.Env(),
		URL:       server.URL(),
		Tools:     toolsToDocs(server.Tools()),
		UpdatedAt: server.UpdatedAt(),
	}
}
