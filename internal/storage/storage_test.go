package storage_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personaut/personaut/internal/storage"
	"github.com/personaut/personaut/pkg/types"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, storage.CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, -1.0, storage.CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-12)
	assert.InDelta(t, 0.0, storage.CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-12)

	// Magnitude does not matter, only direction.
	assert.InDelta(t, 1.0, storage.CosineSimilarity([]float64{1, 1}, []float64{5, 5}), 1e-12)

	// Degenerate inputs score zero instead of erroring.
	assert.Zero(t, storage.CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Zero(t, storage.CosineSimilarity(nil, nil))
	assert.Zero(t, storage.CosineSimilarity([]float64{0, 0}, []float64{1, 2}))
}

func TestSortResultsDeterministic(t *testing.T) {
	results := []storage.SearchResult{
		{Memory: &types.Memory{ID: "mem_c"}, Similarity: 0.5},
		{Memory: &types.Memory{ID: "mem_a"}, Similarity: 0.5},
		{Memory: &types.Memory{ID: "mem_b"}, Similarity: 0.9},
	}
	storage.SortResults(results)

	require.Len(t, results, 3)
	assert.Equal(t, "mem_b", results[0].Memory.ID)
	// Equal similarity resolves by id ascending.
	assert.Equal(t, "mem_a", results[1].Memory.ID)
	assert.Equal(t, "mem_c", results[2].Memory.ID)
}

func TestEmbeddingCodecRoundTrip(t *testing.T) {
	embedding := []float64{0.0, 1.0, -1.0, 1e-10, 1e10, 0.12345678901234567, math.Pi}

	buf := storage.EncodeEmbedding(embedding)
	require.Len(t, buf, len(embedding)*8)

	decoded, err := storage.DecodeEmbedding(buf, len(embedding))
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded, "float64 round trip must be exact")
}

func TestDecodeEmbeddingValidation(t *testing.T) {
	_, err := storage.DecodeEmbedding([]byte{1, 2, 3}, 1)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = storage.DecodeEmbedding(make([]byte, 16), 0)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestValidateUpsert(t *testing.T) {
	mem, err := types.NewIndividualMemory("sarah", "walked the beach", types.DefaultSalience)
	require.NoError(t, err)

	assert.NoError(t, storage.ValidateUpsert(mem, []float64{0.1}))
	assert.ErrorIs(t, storage.ValidateUpsert(nil, []float64{0.1}), storage.ErrInvalidInput)
	assert.ErrorIs(t, storage.ValidateUpsert(mem, nil), storage.ErrInvalidInput)

	blank := *mem
	blank.ID = ""
	assert.ErrorIs(t, storage.ValidateUpsert(&blank, []float64{0.1}), storage.ErrInvalidInput)
}
