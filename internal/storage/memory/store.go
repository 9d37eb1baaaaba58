// Package memory provides an in-process VectorStore backed by a map.
// It is the default store for simulations and tests; nothing survives
// process exit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/personaut/personaut/internal/storage"
	"github.com/personaut/personaut/pkg/types"
)

// Store keeps memories and their embeddings in process memory. All
// records are deep-copied on the way in and out, so callers can never
// mutate stored state through a retained pointer.
type Store struct {
	mu      sync.RWMutex
	records map[string]*types.Memory
}

var _ storage.VectorStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{records: make(map[string]*types.Memory)}
}

// Store inserts or replaces a memory, attaching a copy of the embedding.
func (s *Store) Store(_ context.Context, memory *types.Memory, embedding []float64) error {
	if err := storage.ValidateUpsert(memory, embedding); err != nil {
		return err
	}
	memory.Embedding = append([]float64(nil), embedding...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[memory.ID] = cloneMemory(memory)
	return nil
}

// Search ranks all candidate memories by cosine similarity to the query,
// descending, ties by id ascending, and returns the top limit.
func (s *Store) Search(_ context.Context, query []float64, limit int, ownerID string) ([]storage.SearchResult, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query vector cannot be empty", storage.ErrInvalidInput)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit %d", storage.ErrInvalidInput, limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]storage.SearchResult, 0, len(s.records))
	for _, record := range s.records {
		if ownerID != "" && record.OwnerID != ownerID {
			continue
		}
		results = append(results, storage.SearchResult{
			Memory:     cloneMemory(record),
			Similarity: storage.CosineSimilarity(query, record.Embedding),
		})
	}

	storage.SortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Get returns a copy of the memory, (nil, nil) if absent.
func (s *Store) Get(_ context.Context, id string) (*types.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return cloneMemory(record), nil
}

// Delete removes a memory, reporting whether it existed.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false, nil
	}
	delete(s.records, id)
	return true, nil
}

// UpdateEmbedding replaces the embedding of an existing memory.
func (s *Store) UpdateEmbedding(_ context.Context, id string, embedding []float64) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding vector cannot be empty", storage.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: memory %q", storage.ErrNotFound, id)
	}
	record.Embedding = append([]float64(nil), embedding...)
	return nil
}

// Count returns how many memories are stored, for one owner when
// ownerID is non-empty.
func (s *Store) Count(_ context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ownerID == "" {
		return len(s.records), nil
	}
	n := 0
	for _, record := range s.records {
		if record.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// GetByOwner returns copies of the owner's memories ordered by creation
// time ascending, ties by id.
func (s *Store) GetByOwner(_ context.Context, ownerID string) ([]*types.Memory, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", storage.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Memory
	for _, record := range s.records {
		if record.OwnerID == ownerID {
			out = append(out, cloneMemory(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// cloneMemory deep-copies a memory so stored records and returned
// records never share mutable state with callers.
func cloneMemory(m *types.Memory) *types.Memory {
	cp := *m
	if m.Embedding != nil {
		cp.Embedding = append([]float64(nil), m.Embedding...)
	}
	if m.ParticipantIDs != nil {
		cp.ParticipantIDs = append([]string(nil), m.ParticipantIDs...)
	}
	if m.Tags != nil {
		cp.Tags = append([]string(nil), m.Tags...)
	}
	if m.EmotionalState != nil {
		cp.EmotionalState = make(map[string]float64, len(m.EmotionalState))
		for k, v := range m.EmotionalState {
			cp.EmotionalState[k] = v
		}
	}
	if m.Metadata != nil {
		cp.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			cp.Metadata[k] = v
		}
	}
	if m.Perspectives != nil {
		cp.Perspectives = make(map[string]string, len(m.Perspectives))
		for k, v := range m.Perspectives {
			cp.Perspectives[k] = v
		}
	}
	if m.ParticipantStates != nil {
		cp.ParticipantStates = make(map[string]map[string]float64, len(m.ParticipantStates))
		for k, snapshot := range m.ParticipantStates {
			inner := make(map[string]float64, len(snapshot))
			for emotion, v := range snapshot {
				inner[emotion] = v
			}
			cp.ParticipantStates[k] = inner
		}
	}
	if m.Context != nil {
		cp.Context = m.Context.Copy()
	}
	return &cp
}
