// Package storage defines the vector store contract for episodic
// memories and the helpers shared by its implementations: cosine
// similarity, deterministic result ranking, and the binary embedding
// codec used by the SQL-backed stores.
package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/personaut/personaut/pkg/types"
)

var (
	// ErrInvalidInput indicates a malformed argument, such as a nil
	// memory, an empty id, or an empty embedding.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates an operation that requires an existing
	// record was given an unknown memory id.
	ErrNotFound = errors.New("not found")
)

// SearchResult pairs a memory with its similarity to the query vector.
type SearchResult struct {
	Memory     *types.Memory
	Similarity float64
}

// VectorStore persists memories alongside their embeddings and retrieves
// them by vector similarity.
//
// Lookup semantics: Get returns (nil, nil) and Delete returns
// (false, nil) for an unknown id. A missing record is a normal outcome
// there, not an error; errors are reserved for storage failures.
// UpdateEmbedding differs because it has nothing to return: it reports
// ErrNotFound for an unknown id.
type VectorStore interface {
	// Store inserts or replaces a memory together with its embedding.
	// The memory's Embedding field is overwritten with a copy of the
	// given vector.
	Store(ctx context.Context, memory *types.Memory, embedding []float64) error

	// Search returns up to limit memories ranked by cosine similarity
	// to the query vector, descending, ties broken by id ascending.
	// A non-empty ownerID restricts results to that owner's memories;
	// ownerless records never match an owner filter.
	Search(ctx context.Context, query []float64, limit int, ownerID string) ([]SearchResult, error)

	// Get returns the memory with the given id, (nil, nil) if absent.
	Get(ctx context.Context, id string) (*types.Memory, error)

	// Delete removes a memory, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// UpdateEmbedding replaces the embedding of an existing memory.
	UpdateEmbedding(ctx context.Context, id string, embedding []float64) error

	// Count returns the number of stored memories, restricted to one
	// owner when ownerID is non-empty.
	Count(ctx context.Context, ownerID string) (int, error)

	// GetByOwner returns the given owner's memories ordered by
	// creation time ascending, ties broken by id.
	GetByOwner(ctx context.Context, ownerID string) ([]*types.Memory, error)

	// Close releases the store's resources.
	Close() error
}

// ValidateUpsert checks the arguments common to Store implementations.
func ValidateUpsert(memory *types.Memory, embedding []float64) error {
	if memory == nil {
		return fmt.Errorf("%w: nil memory", ErrInvalidInput)
	}
	if memory.ID == "" {
		return fmt.Errorf("%w: memory id is required", ErrInvalidInput)
	}
	if memory.Description == "" {
		return fmt.Errorf("%w: memory description is required", ErrInvalidInput)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding vector cannot be empty", ErrInvalidInput)
	}
	return nil
}

// CosineSimilarity computes cosine similarity between two equal-length
// vectors. Returns 0 if either vector has zero magnitude or the lengths
// differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SortResults orders results by similarity descending, ties broken by
// memory id ascending, so equal-scoring memories rank identically on
// every run and every backend.
func SortResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Memory.ID < results[j].Memory.ID
	})
}

// EncodeEmbedding serializes a vector as little-endian float64 values,
// 8 bytes per component.
func EncodeEmbedding(embedding []float64) []byte {
	buf := make([]byte, len(embedding)*8)
	for i, v := range embedding {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeEmbedding deserializes a little-endian float64 vector,
// validating the buffer against the expected dimension.
func DecodeEmbedding(buf []byte, dimension int) ([]float64, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidInput, dimension)
	}
	if len(buf) != dimension*8 {
		return nil, fmt.Errorf("%w: expected %d bytes for dimension %d, got %d",
			ErrInvalidInput, dimension*8, dimension, len(buf))
	}
	embedding := make([]float64, dimension)
	for i := range embedding {
		embedding[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return embedding, nil
}
