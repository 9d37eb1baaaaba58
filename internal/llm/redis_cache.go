package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces embedding cache entries so the cache can
// share a Redis instance with other data.
const redisKeyPrefix = "personaut:embedding:"

// RedisCachedEmbedder memoizes embeddings in Redis so the cache survives
// process restarts and is shared across instances. Cache failures are
// soft: a Redis error logs and falls through to the wrapped embedder
// rather than failing the call.
type RedisCachedEmbedder struct {
	inner  Embedder
	client redis.UniversalClient
	ttl    time.Duration
}

var _ Embedder = (*RedisCachedEmbedder)(nil)

// NewRedisCachedEmbedder wraps an embedder with a Redis-backed cache.
// A non-positive ttl stores entries without expiry.
func NewRedisCachedEmbedder(inner Embedder, client redis.UniversalClient, ttl time.Duration) *RedisCachedEmbedder {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCachedEmbedder{inner: inner, client: client, ttl: ttl}
}

// Embed returns the cached vector when present, otherwise calls the
// wrapped embedder and writes the result back to Redis.
func (e *RedisCachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(text)

	raw, err := e.client.Get(ctx, key).Result()
	if err == nil {
		var vector []float64
		if err := json.Unmarshal([]byte(raw), &vector); err == nil {
			return vector, nil
		}
		// A corrupt entry is re-embedded and overwritten below.
		log.Printf("llm: corrupt embedding cache entry %s, re-embedding", key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("llm: embedding cache read failed (falling through): %v", err)
	}

	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("llm: failed to encode embedding for cache: %w", err)
	}
	if err := e.client.Set(ctx, key, encoded, e.ttl).Err(); err != nil {
		log.Printf("llm: embedding cache write failed: %v", err)
	}
	return vector, nil
}

// cacheKey hashes the text so keys stay bounded regardless of how long
// the embedding text is.
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return redisKeyPrefix + hex.EncodeToString(sum[:])
}
