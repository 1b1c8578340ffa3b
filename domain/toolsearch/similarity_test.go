package toolsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float64{1, 0, 0},
			b:        []float64{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "opposite vectors",
			a:        []float64{1, 0, 0},
			b:        []float64{-1, 0, 0},
			expected: -1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float64{1, 0, 0},
			b:        []float64{0, 1, 0},
			expected: 0.0,
		},
		{
			name:     "zero vector",
			a:        []float64{0, 0, 0},
			b:        []float64{1, 0, 0},
			expected: 0.0,
		},
		{
			name:     "empty vectors",
			a:        []float64{},
			b:        []float64{},
			expected: 0.0,
		},
		{
			name:     "mismatched lengths",
			a:        []float64{1, 0},
			b:        []float64{1, 0, 0},
			expected: 0.0,
		},
		{
			name:     "similar vectors",
			a:        []float64{1, 1, 0},
			b:        []float64{1, 0.9, 0.1},
			expected: 0.9959,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 0.001)
		})
	}
}

func rankingFixture() []EmbeddingRecord {
	return []EmbeddingRecord{
		NewEmbeddingRecord(ContentTypeTool, "a:exact", "exact", []float64{1, 0, 0}, ToolMetadata{}, "test"),
		NewEmbeddingRecord(ContentTypeTool, "a:similar", "similar", []float64{0.9, 0.1, 0}, ToolMetadata{}, "test"),
		NewEmbeddingRecord(ContentTypeTool, "a:orthogonal", "orthogonal", []float64{0, 1, 0}, ToolMetadata{}, "test"),
		NewEmbeddingRecord(ContentTypeTool, "a:opposite", "opposite", []float64{-1, 0, 0}, ToolMetadata{}, "test"),
	}
}

func TestRankRecords(t *testing.T) {
	query := []float64{1, 0, 0}

	t.Run("descending order", func(t *testing.T) {
		matches := RankRecords(query, rankingFixture(), 10, -1)
		require.Len(t, matches, 4)
		assert.Equal(t, "a:exact", matches[0].Record().ContentID())
		assert.Equal(t, "a:similar", matches[1].Record().ContentID())
		assert.Equal(t, "a:orthogonal", matches[2].Record().ContentID())
		assert.Equal(t, "a:opposite", matches[3].Record().ContentID())
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Similarity(), matches[i].Similarity())
		}
	})

	t.Run("limit caps result count", func(t *testing.T) {
		matches := RankRecords(query, rankingFixture(), 2, -1)
		require.Len(t, matches, 2)
		assert.Equal(t, "a:exact", matches[0].Record().ContentID())
	})

	t.Run("threshold excludes at or below", func(t *testing.T) {
		// The orthogonal record scores exactly 0; threshold 0 must drop it.
		matches := RankRecords(query, rankingFixture(), 10, 0)
		require.Len(t, matches, 2)
		for _, m := range matches {
			assert.Greater(t, m.Similarity(), 0.0)
		}
	})

	t.Run("negative threshold disables filtering", func(t *testing.T) {
		matches := RankRecords(query, rankingFixture(), 10, -1)
		assert.Len(t, matches, 4)
	})

	t.Run("raising threshold never adds results", func(t *testing.T) {
		low := RankRecords(query, rankingFixture(), 10, 0.1)
		high := RankRecords(query, rankingFixture(), 10, 0.9)
		assert.LessOrEqual(t, len(high), len(low))

		lowIDs := make(map[string]bool, len(low))
		for _, m := range low {
			lowIDs[m.Record().ContentID()] = true
		}
		for _, m := range high {
			assert.True(t, lowIDs[m.Record().ContentID()])
		}
	})

	t.Run("empty records", func(t *testing.T) {
		matches := RankRecords(query, nil, 10, -1)
		assert.Empty(t, matches)
	})

	t.Run("zero limit", func(t *testing.T) {
		matches := RankRecords(query, rankingFixture(), 0, -1)
		assert.Empty(t, matches)
	})
}
