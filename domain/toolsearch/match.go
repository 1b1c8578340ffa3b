package toolsearch

import "strings"

// Provenance labels how a match's tool identity was derived.
type Provenance string

// Provenance values. ProvenanceParsed marks the degraded path where tool
// identity was heuristically recovered from the embedded text because the
// structured metadata document was absent.
const (
	ProvenanceMetadata Provenance = "metadata"
	ProvenanceParsed   Provenance = "parsed"
)

// Match is one ranked search result: a record plus its similarity to the
// query vector and the tool identity derived from it.
type Match struct {
	record     EmbeddingRecord
	similarity float64
	identity   ToolMetadata
	provenance Provenance
}

// NewMatch derives a Match from a record. When the record carries structured
// metadata the identity is taken verbatim (ProvenanceMetadata); otherwise it
// is best-effort parsed out of the embedded text (ProvenanceParsed).
func NewMatch(record EmbeddingRecord, similarity float64) Match {
	m := Match{record: record, similarity: similarity}
	if meta := record.Metadata(); !meta.IsZero() {
		m.identity = meta
		m.provenance = ProvenanceMetadata
		return m
	}
	m.identity = parseToolIdentity(record.TextContent())
	m.provenance = ProvenanceParsed
	return m
}

// Record returns the underlying embedding record.
func (m Match) Record() EmbeddingRecord { return m.record }

// Similarity returns the cosine similarity to the query.
func (m Match) Similarity() float64 { return m.similarity }

// Identity returns the derived tool identity.
func (m Match) Identity() ToolMetadata { return m.identity }

// Provenance reports whether the identity is exact or heuristically parsed.
func (m Match) Provenance() Provenance { return m.provenance }

// parseToolIdentity recovers tool identity from embedded text when no
// metadata document is stored. Convention: the first whitespace-delimited
// token is the tool identifier; an underscore-delimited prefix of that token
// is treated as the server name; the remainder of the text is the
// description. Best effort only — the server name is misattributed when the
// tool name itself contains underscores.
func parseToolIdentity(text string) ToolMetadata {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ToolMetadata{}
	}

	toolName := fields[0]
	serverName := ""
	if idx := strings.Index(toolName, "_"); idx > 0 {
		serverName = toolName[:idx]
	}

	description := strings.TrimSpace(strings.TrimPrefix(text, toolName))
	return NewToolMetadata(serverName, toolName, description, nil)
}
