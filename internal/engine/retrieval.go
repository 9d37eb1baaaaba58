package engine

import (
	"context"
	"fmt"

	"github.com/personaut/personaut/internal/llm"
	"github.com/personaut/personaut/internal/storage"
	"github.com/personaut/personaut/pkg/types"
)

// overFetchFactor is how many extra candidates SearchMemories pulls from
// the store before trust filtering. Filtering after a hard limit could
// under-return when many top hits are gated private memories.
const overFetchFactor = 2

// SearchMemories retrieves the memories most similar to a text query
// that the requester is allowed to see. The query is embedded with the
// injected embedder, the store is over-fetched, private memories above
// the requester's trust level are dropped, and the survivors are
// truncated to limit in rank order.
func SearchMemories(ctx context.Context, store storage.VectorStore, embedder llm.Embedder, query string, limit int, ownerID string, trustLevel float64) ([]storage.SearchResult, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit %d", storage.ErrInvalidInput, limit)
	}

	vector, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := store.Search(ctx, vector, limit*overFetchFactor, ownerID)
	if err != nil {
		return nil, err
	}

	accessible := FilterAccessible(candidates, trustLevel)
	if len(accessible) > limit {
		accessible = accessible[:limit]
	}
	return accessible, nil
}

// FilterAccessible drops results the requester's trust level cannot
// unlock, preserving rank order. Only private memories gate on trust.
func FilterAccessible(results []storage.SearchResult, trustLevel float64) []storage.SearchResult {
	out := make([]storage.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Memory.CanAccess(trustLevel) {
			out = append(out, r)
		}
	}
	return out
}

// RelevantMemories is SearchMemories for a requester inside a trust
// network: the trust level is looked up from the network edge between
// requester and owner before gating.
func RelevantMemories(ctx context.Context, store storage.VectorStore, embedder llm.Embedder, network TrustSource, query string, limit int, requesterID, ownerID string) ([]storage.SearchResult, error) {
	trustLevel := network.TrustBetween(ownerID, requesterID)
	return SearchMemories(ctx, store, embedder, query, limit, ownerID, trustLevel)
}

// TrustSource supplies the trust an owner extends to a requester. The
// graph package's Network satisfies it.
type TrustSource interface {
	TrustBetween(from, to string) float64
}

// IndexMemory embeds a memory's text and stores it. Shared memories can
// be indexed from one participant's perspective by passing their id.
func IndexMemory(ctx context.Context, store storage.VectorStore, embedder llm.Embedder, memory *types.Memory, perspectiveID string) error {
	text := memory.EmbeddingText()
	if perspectiveID != "" {
		text = memory.PerspectiveEmbeddingText(perspectiveID)
	}
	vector, err := embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed memory %q: %w", memory.ID, err)
	}
	return store.Store(ctx, memory, vector)
}
