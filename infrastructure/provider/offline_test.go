package provider

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldex/tooldex/domain/toolsearch"
)

func TestOfflineVectorizer_Deterministic(t *testing.T) {
	v := NewOfflineVectorizer()
	ctx := context.Background()

	first, err := v.Embed(ctx, []string{"weather_getForecast Get weather forecast for a location"})
	require.NoError(t, err)
	second, err := v.Embed(ctx, []string{"weather_getForecast Get weather forecast for a location"})
	require.NoError(t, err)

	require.Len(t, first.Vectors(), 1)
	require.Len(t, second.Vectors(), 1)
	assert.Equal(t, first.Vectors()[0], second.Vectors()[0])
}

func TestOfflineVectorizer_FixedWidth(t *testing.T) {
	v := NewOfflineVectorizer()

	result, err := v.Embed(context.Background(), []string{"search files", "get weather", ""})
	require.NoError(t, err)
	require.Len(t, result.Vectors(), 3)
	for _, vec := range result.Vectors() {
		assert.Len(t, vec, OfflineDimensions)
	}
	assert.Equal(t, OfflineModel, result.Model())
}

func TestOfflineVectorizer_Normalized(t *testing.T) {
	v := NewOfflineVectorizer()

	result, err := v.Embed(context.Background(), []string{"get the weather forecast for a city"})
	require.NoError(t, err)

	var mag float64
	for _, x := range result.Vectors()[0] {
		mag += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(mag), 0.0001)
}

func TestOfflineVectorizer_EmptyTextIsZeroVector(t *testing.T) {
	v := NewOfflineVectorizer()

	result, err := v.Embed(context.Background(), []string{"   "})
	require.NoError(t, err)

	for _, x := range result.Vectors()[0] {
		assert.Zero(t, x)
	}
}

func TestOfflineVectorizer_SharedTermsScoreHigher(t *testing.T) {
	v := NewOfflineVectorizer()
	ctx := context.Background()

	result, err := v.Embed(ctx, []string{
		"weather forecast for a city",
		"weather_getForecast Get weather forecast for a location",
		"fs_readFile Read a file from disk",
	})
	require.NoError(t, err)
	vecs := result.Vectors()

	related := toolsearch.CosineSimilarity(vecs[0], vecs[1])
	unrelated := toolsearch.CosineSimilarity(vecs[0], vecs[2])
	assert.Greater(t, related, unrelated)
	assert.Greater(t, related, 0.1)
}
