package llm

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/personaut/personaut/pkg/types"
)

// CachedEmbedder memoizes embedding results in a fixed-size LRU keyed by
// the exact text. Embedding the same memory text repeatedly (re-indexing,
// perspective variants, retries) is the common case, and providers charge
// per call.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float64]
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps an embedder with an LRU of the given size.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	cache, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("%w: cache size %d", types.ErrConfiguration, size)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector when present, otherwise calls the
// wrapped embedder and caches the result. Returned slices are copies, so
// callers cannot corrupt the cache.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if vector, ok := e.cache.Get(text); ok {
		return append([]float64(nil), vector...), nil
	}

	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, append([]float64(nil), vector...))
	return vector, nil
}

// Len returns the number of cached entries.
func (e *CachedEmbedder) Len() int { return e.cache.Len() }
