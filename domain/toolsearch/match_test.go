package toolsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatch_MetadataProvenance(t *testing.T) {
	meta := NewToolMetadata("weather", "getForecast", "Get weather forecast for a location", nil)
	record := NewEmbeddingRecord(ContentTypeTool, "weather:getForecast",
		"weather_getForecast Get weather forecast for a location", []float64{1, 0}, meta, "test")

	m := NewMatch(record, 0.8)

	assert.Equal(t, ProvenanceMetadata, m.Provenance())
	assert.Equal(t, "weather", m.Identity().ServerName())
	assert.Equal(t, "getForecast", m.Identity().ToolName())
	assert.Equal(t, "Get weather forecast for a location", m.Identity().Description())
	assert.InDelta(t, 0.8, m.Similarity(), 0.0001)
}

func TestNewMatch_ParsedProvenance(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		serverName  string
		toolName    string
		description string
	}{
		{
			name:        "server prefix recovered from underscore",
			text:        "weather_getForecast Get weather forecast for a location",
			serverName:  "weather",
			toolName:    "weather_getForecast",
			description: "Get weather forecast for a location",
		},
		{
			name:        "no underscore leaves server empty",
			text:        "search Find documents by keyword",
			serverName:  "",
			toolName:    "search",
			description: "Find documents by keyword",
		},
		{
			name:        "leading underscore is not a server prefix",
			text:        "_private internal helper",
			serverName:  "",
			toolName:    "_private",
			description: "internal helper",
		},
		{
			name:        "single token has no description",
			text:        "fs_readFile",
			serverName:  "fs",
			toolName:    "fs_readFile",
			description: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewEmbeddingRecord(ContentTypeTool, "x", tt.text, []float64{1}, ToolMetadata{}, "test")
			m := NewMatch(record, 0.5)

			assert.Equal(t, ProvenanceParsed, m.Provenance())
			assert.Equal(t, tt.serverName, m.Identity().ServerName())
			assert.Equal(t, tt.toolName, m.Identity().ToolName())
			assert.Equal(t, tt.description, m.Identity().Description())
		})
	}
}

func TestNewMatch_EmptyText(t *testing.T) {
	record := NewEmbeddingRecord(ContentTypeTool, "x", "   ", []float64{1}, ToolMetadata{}, "test")
	m := NewMatch(record, 0.5)

	assert.Equal(t, ProvenanceParsed, m.Provenance())
	assert.True(t, m.Identity().IsZero())
}
