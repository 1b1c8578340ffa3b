package provider

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/tooldex/tooldex/domain/toolsearch"
)

// OfflineModel is the model name recorded for offline-produced vectors, used
// to detect staleness when a real model becomes available again.
const OfflineModel = "fallback"

// OfflineDimensions is the fixed width of offline vectors. Deliberately
// smaller than network models (e.g. 1536 for text-embedding-3-small) — the
// schema reconciler absorbs the width change when strategies switch.
const OfflineDimensions = 100

// offlineVocabulary maps common tool-description words to fixed vector
// positions. Tokens outside the vocabulary still contribute through the
// hash scatter below.
var offlineVocabulary = []string{
	"get", "set", "list", "create", "delete", "update", "search", "find",
	"read", "write", "fetch", "send", "query", "run", "execute", "call",
	"file", "files", "directory", "path", "data", "text", "image", "video",
	"audio", "code", "web", "page", "url", "link", "http", "api",
	"server", "client", "tool", "resource", "database", "table", "record", "user",
	"email", "message", "chat", "weather", "forecast", "location", "map", "time",
	"date", "calendar", "event", "task", "note", "document", "report", "summary",
	"translate", "language", "convert", "format", "parse", "generate", "analyze", "extract",
	"filter", "sort", "count", "sum", "calculate", "number", "value", "key",
	"name", "id", "status", "state", "config", "setting", "option", "parameter",
	"input", "output", "result", "error", "log", "history", "version", "branch",
	"commit", "repository", "project", "issue", "price", "stock", "news", "feed",
	"memory", "store", "cache", "token",
}

// OfflineVectorizer is a deterministic bag-of-words embedder used when no
// network provider is available. Same text always yields the same vector,
// and Embed never fails.
type OfflineVectorizer struct {
	vocabulary map[string]int
	dimensions int
}

// NewOfflineVectorizer creates an OfflineVectorizer.
func NewOfflineVectorizer() *OfflineVectorizer {
	vocab := make(map[string]int, len(offlineVocabulary))
	for i, word := range offlineVocabulary {
		vocab[word] = i % OfflineDimensions
	}
	return &OfflineVectorizer{
		vocabulary: vocab,
		dimensions: OfflineDimensions,
	}
}

// Model returns the offline model name.
func (o *OfflineVectorizer) Model() string { return OfflineModel }

// Dimensions returns the fixed vector width.
func (o *OfflineVectorizer) Dimensions() int { return o.dimensions }

// Embed vectorizes each text: lowercase whitespace tokens are counted
// against the fixed vocabulary, every token additionally scatters a
// hash-derived perturbation into the vector to reduce collisions, and the
// result is L2-normalized (a zero vector stays zero).
func (o *OfflineVectorizer) Embed(_ context.Context, texts []string) (toolsearch.Embeddings, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = o.vectorize(text)
	}
	return toolsearch.NewEmbeddings(vectors, OfflineModel), nil
}

func (o *OfflineVectorizer) vectorize(text string) []float64 {
	vec := make([]float64, o.dimensions)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,:;!?()[]{}\"'")
		if token == "" {
			continue
		}

		if idx, ok := o.vocabulary[token]; ok {
			vec[idx]++
		}

		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[int(h.Sum32())%o.dimensions] += 0.5
	}

	var mag float64
	for _, v := range vec {
		mag += v * v
	}
	if mag == 0 {
		return vec
	}

	mag = math.Sqrt(mag)
	for i := range vec {
		vec[i] /= mag
	}
	return vec
}

var _ toolsearch.Embedder = (*OfflineVectorizer)(nil)
