package memory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personaut/personaut/internal/storage"
	"github.com/personaut/personaut/internal/storage/memory"
	"github.com/personaut/personaut/pkg/types"
)

func mustStore(t *testing.T, s *memory.Store, m *types.Memory, embedding []float64) {
	t.Helper()
	require.NoError(t, s.Store(context.Background(), m, embedding))
}

func individual(t *testing.T, owner, description string) *types.Memory {
	t.Helper()
	m, err := types.NewIndividualMemory(owner, description, types.DefaultSalience)
	require.NoError(t, err)
	return m
}

func TestStoreAndGetRoundTrip(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	m := individual(t, "sarah", "Met Alex at the coffee shop")
	m.EmotionalState = map[string]float64{"cheerful": 0.7}
	m.AddTag("social")
	mustStore(t, s, m, []float64{0.1, 0.2, 0.3})

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Description, got.Description)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, got.Embedding)
	assert.Equal(t, 0.7, got.EmotionalState["cheerful"])
	assert.True(t, got.HasTag("social"))
	assert.True(t, got.CreatedAt.Equal(m.CreatedAt))
}

func TestGetMissingIsNilNil(t *testing.T) {
	s := memory.NewStore()
	got, err := s.Get(context.Background(), "mem_nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteReportsExistence(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	m := individual(t, "sarah", "d")
	mustStore(t, s, m, []float64{1})

	ok, err := s.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second delete reports false, not an error")

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertReplacesExistingRecord(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	m := individual(t, "sarah", "first draft")
	mustStore(t, s, m, []float64{1, 0})

	m.Description = "second draft"
	mustStore(t, s, m, []float64{0, 1})

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "second draft", got.Description)
	assert.Equal(t, []float64{0, 1}, got.Embedding)

	n, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	near := individual(t, "sarah", "near")
	far := individual(t, "sarah", "far")
	mid := individual(t, "sarah", "mid")
	mustStore(t, s, near, []float64{1, 0.05})
	mustStore(t, s, far, []float64{-1, 0})
	mustStore(t, s, mid, []float64{1, 1})

	results, err := s.Search(ctx, []float64{1, 0}, 10, "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, near.ID, results[0].Memory.ID)
	assert.Equal(t, mid.ID, results[1].Memory.ID)
	assert.Equal(t, far.ID, results[2].Memory.ID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)

	// Limit truncates in rank order.
	results, err = s.Search(ctx, []float64{1, 0}, 2, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, near.ID, results[0].Memory.ID)
}

func TestSearchTiesResolveByID(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	// Identical vectors produce identical similarities; order must be
	// id ascending regardless of insertion order.
	for i := 0; i < 4; i++ {
		m := individual(t, "sarah", fmt.Sprintf("note %d", i))
		m.ID = fmt.Sprintf("mem_%03d", 3-i)
		mustStore(t, s, m, []float64{1, 1})
	}

	results, err := s.Search(ctx, []float64{2, 2}, 10, "")
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].Memory.ID, results[i].Memory.ID)
	}
}

func TestSearchOwnerFilter(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	sarahs := individual(t, "sarah", "sarah's memory")
	alexs := individual(t, "alex", "alex's memory")
	shared := types.NewSharedMemory("shared dinner", []string{"sarah", "alex"})
	mustStore(t, s, sarahs, []float64{1, 0})
	mustStore(t, s, alexs, []float64{1, 0})
	mustStore(t, s, shared, []float64{1, 0})

	results, err := s.Search(ctx, []float64{1, 0}, 10, "sarah")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sarahs.ID, results[0].Memory.ID)

	// Ownerless shared memories only appear in unfiltered searches.
	results, err = s.Search(ctx, []float64{1, 0}, 10, "")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchValidatesInput(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	_, err := s.Search(ctx, nil, 5, "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = s.Search(ctx, []float64{1}, 0, "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestUpdateEmbedding(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	m := individual(t, "sarah", "d")
	mustStore(t, s, m, []float64{1, 0})

	require.NoError(t, s.UpdateEmbedding(ctx, m.ID, []float64{0, 1}))
	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, got.Embedding)

	assert.ErrorIs(t, s.UpdateEmbedding(ctx, "mem_nope", []float64{1}), storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateEmbedding(ctx, m.ID, nil), storage.ErrInvalidInput)
}

func TestCountAndGetByOwner(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	a := individual(t, "sarah", "a")
	b := individual(t, "sarah", "b")
	c := individual(t, "alex", "c")
	// Force a deterministic creation order for GetByOwner.
	b.CreatedAt = a.CreatedAt.Add(1)
	mustStore(t, s, a, []float64{1})
	mustStore(t, s, b, []float64{1})
	mustStore(t, s, c, []float64{1})

	n, err := s.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Count(ctx, "sarah")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	owned, err := s.GetByOwner(ctx, "sarah")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, a.ID, owned[0].ID)
	assert.Equal(t, b.ID, owned[1].ID)

	_, err = s.GetByOwner(ctx, "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestStoredRecordsAreIsolated(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	m := individual(t, "sarah", "original")
	m.EmotionalState = map[string]float64{"content": 0.5}
	mustStore(t, s, m, []float64{1, 2})

	// Mutating the caller's copy after Store must not leak in.
	m.Description = "mutated"
	m.EmotionalState["content"] = 0.99
	m.Embedding[0] = 42

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Description)
	assert.Equal(t, 0.5, got.EmotionalState["content"])
	assert.Equal(t, []float64{1, 2}, got.Embedding)

	// And mutating a retrieved copy must not rewrite the store.
	got.Description = "tampered"
	again, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Description)
}
