package engine_test

import (
	"context"
	"testing"

	"github.com/personaut/personaut/internal/engine"
	"github.com/personaut/personaut/internal/graph"
	"github.com/personaut/personaut/internal/llm"
	"github.com/personaut/personaut/internal/storage"
	"github.com/personaut/personaut/internal/storage/memory"
	"github.com/personaut/personaut/pkg/types"
)

// vocabEmbedder maps known texts to fixed vectors so similarity ranking
// is fully controlled by the test.
func vocabEmbedder(vocab map[string][]float64) llm.Embedder {
	return llm.EmbedderFunc(func(_ context.Context, text string) ([]float64, error) {
		if v, ok := vocab[text]; ok {
			return v, nil
		}
		return []float64{0, 0, 1}, nil
	})
}

func storeMemory(t *testing.T, store storage.VectorStore, m *types.Memory, embedding []float64) {
	t.Helper()
	if err := store.Store(context.Background(), m, embedding); err != nil {
		t.Fatal(err)
	}
}

func TestSearchMemoriesTrustGating(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	open, err := types.NewIndividualMemory("sarah", "walked the beach", types.DefaultSalience)
	if err != nil {
		t.Fatal(err)
	}
	secret, err := types.NewPrivateMemory("sarah", "my fear of failure", 0.6)
	if err != nil {
		t.Fatal(err)
	}
	storeMemory(t, store, open, []float64{1, 0, 0})
	storeMemory(t, store, secret, []float64{0.9, 0.1, 0})

	embedder := vocabEmbedder(map[string][]float64{"beach": {1, 0, 0}})

	// Below the threshold the private memory is filtered out.
	results, err := engine.SearchMemories(ctx, store, embedder, "beach", 10, "sarah", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Memory.ID != open.ID {
		t.Fatalf("trust 0.5 must only see the open memory, got %d results", len(results))
	}

	// At the threshold it is included.
	results, err = engine.SearchMemories(ctx, store, embedder, "beach", 10, "sarah", 0.6)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("trust 0.6 must see both memories, got %d", len(results))
	}
}

// TestSearchMemoriesOverFetch verifies a gated top hit does not starve
// the result set when the limit is small.
func TestSearchMemoriesOverFetch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	secret, err := types.NewPrivateMemory("sarah", "secret", 0.9)
	if err != nil {
		t.Fatal(err)
	}
	open, err := types.NewIndividualMemory("sarah", "open", types.DefaultSalience)
	if err != nil {
		t.Fatal(err)
	}
	// The private memory outranks the open one.
	storeMemory(t, store, secret, []float64{1, 0, 0})
	storeMemory(t, store, open, []float64{0.8, 0.2, 0})

	embedder := vocabEmbedder(map[string][]float64{"q": {1, 0, 0}})

	results, err := engine.SearchMemories(ctx, store, embedder, "q", 1, "sarah", 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Memory.ID != open.ID {
		t.Fatalf("expected the accessible runner-up, got %+v", results)
	}
}

func TestRelevantMemoriesUsesNetworkTrust(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	secret, err := types.NewPrivateMemory("sarah", "secret", 0.6)
	if err != nil {
		t.Fatal(err)
	}
	storeMemory(t, store, secret, []float64{1, 0, 0})

	embedder := vocabEmbedder(map[string][]float64{"q": {1, 0, 0}})

	network := graph.NewNetwork(types.DefaultStrangerTrust)
	r := types.NewRelationship([]string{"sarah", "alex"}, types.DefaultStrangerTrust)
	r.SetTrust("sarah", "alex", 0.7, "long friendship")
	network.AddRelationship(r)

	// Alex is trusted above the threshold.
	results, err := engine.RelevantMemories(ctx, store, embedder, network, "q", 5, "alex", "sarah")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("trusted requester must see the memory, got %d results", len(results))
	}

	// A stranger gets stranger trust (0.3) and is gated out.
	results, err = engine.RelevantMemories(ctx, store, embedder, network, "q", 5, "zoe", "sarah")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("stranger must be gated out, got %d results", len(results))
	}
}

func TestIndexMemoryEmbedsText(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	var captured string
	embedder := llm.EmbedderFunc(func(_ context.Context, text string) ([]float64, error) {
		captured = text
		return []float64{1, 0}, nil
	})

	shared := types.NewSharedMemory("Team celebration", []string{"alice", "bob"})
	shared.SetPerspective("alice", "Proud of leading the team")

	if err := engine.IndexMemory(ctx, store, embedder, shared, ""); err != nil {
		t.Fatal(err)
	}
	if captured != shared.EmbeddingText() {
		t.Errorf("expected shared embedding text, got %q", captured)
	}

	if err := engine.IndexMemory(ctx, store, embedder, shared, "alice"); err != nil {
		t.Fatal(err)
	}
	if captured != shared.PerspectiveEmbeddingText("alice") {
		t.Errorf("expected alice's perspective text, got %q", captured)
	}

	got, err := store.Get(ctx, shared.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Embedding) != 2 {
		t.Fatal("indexed memory must be retrievable with its embedding")
	}
}
