package toolsearch

import (
	"math"
	"sort"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical). Returns 0 for
// mismatched lengths or zero-magnitude vectors — different-length vectors
// cannot be meaningfully compared.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// RankRecords scores every record against the query vector and returns the
// matches sorted by descending similarity, capped at limit. Matches with
// similarity <= threshold are excluded; a negative threshold disables
// filtering entirely (used to enumerate all records). Backends without a
// native vector index (file, SQLite) rank through this.
func RankRecords(query []float64, records []EmbeddingRecord, limit int, threshold float64) []Match {
	if len(records) == 0 || limit <= 0 {
		return []Match{}
	}

	matches := make([]Match, 0, len(records))
	for _, r := range records {
		similarity := CosineSimilarity(query, r.vector)
		if threshold >= 0 && similarity <= threshold {
			continue
		}
		matches = append(matches, NewMatch(r, similarity))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})

	if limit < len(matches) {
		matches = matches[:limit]
	}
	return matches
}
