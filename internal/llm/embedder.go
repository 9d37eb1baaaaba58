// Package llm holds the engine's only boundary to language-model
// infrastructure: the Embedder capability, plus the decorators that make
// a real provider production-safe (caching, rate limiting, circuit
// breaking). The engine never calls a model directly; an Embedder is
// injected wherever text must become a vector.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/personaut/personaut/pkg/types"
)

// Embedder turns text into an embedding vector. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbedderFunc adapts a plain function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, text string) ([]float64, error)

// Embed calls the wrapped function.
func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float64, error) {
	return f(ctx, text)
}

// HashEmbedder is a deterministic, dependency-free Embedder: the vector
// is derived from a SHA-256 stream over the text. It carries no semantic
// signal and exists for simulations and tests where reproducibility
// matters more than meaning.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a hash embedder producing unit vectors of the
// given dimension.
func NewHashEmbedder(dimension int) (*HashEmbedder, error) {
	if dimension < 1 {
		return nil, fmt.Errorf("%w: embedding dimension %d", types.ErrConfiguration, dimension)
	}
	return &HashEmbedder{dimension: dimension}, nil
}

// Dimension returns the vector size this embedder produces.
func (e *HashEmbedder) Dimension() int { return e.dimension }

// Embed derives a unit vector from the text. Equal texts always embed to
// equal vectors.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vector := make([]float64, e.dimension)
	sum := sha256.Sum256([]byte(text))
	var norm float64
	for i := range vector {
		// Re-hash per block of 4 components to extend the stream.
		if i%4 == 0 && i > 0 {
			sum = sha256.Sum256(sum[:])
		}
		bits := binary.LittleEndian.Uint64(sum[(i%4)*8:])
		// Map to [-1, 1).
		vector[i] = float64(int64(bits)) / math.MaxInt64
		norm += vector[i] * vector[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector, nil
}
