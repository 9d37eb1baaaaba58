package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemoryType identifies how a memory is owned and disclosed.
type MemoryType string

const (
	// MemoryIndividual is a personal memory belonging to a single persona.
	MemoryIndividual MemoryType = "individual"
	// MemoryShared is a memory held jointly by multiple participants.
	MemoryShared MemoryType = "shared"
	// MemoryPrivate is a sensitive memory with trust-gated access.
	MemoryPrivate MemoryType = "private"
)

// RequiresTrustCheck reports whether retrieval of this memory type must
// verify the requester's trust level.
func (t MemoryType) RequiresTrustCheck() bool {
	return t == MemoryPrivate
}

// DefaultSalience is the importance weight assigned to individual
// memories when none is given.
const DefaultSalience = 0.5

// DefaultTrustThreshold is the minimum trust required to access a private
// memory when none is given.
const DefaultTrustThreshold = 0.5

// Memory is an episodic record: a description, the emotional state at the
// time, situational facts, and an embedding for similarity search. One
// struct carries all three memory types; variant fields are populated per
// Type and omitted from serialization otherwise.
type Memory struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Type        MemoryType `json:"memory_type"`
	CreatedAt   time.Time  `json:"created_at"`

	// EmotionalState is the flat emotion snapshot at the time of the
	// memory, in the same wire shape EmotionalState.ToMap produces.
	EmotionalState map[string]float64  `json:"emotional_state,omitempty"`
	Context        *SituationalContext `json:"context,omitempty"`
	Embedding      []float64           `json:"embedding,omitempty"`
	Metadata       map[string]any      `json:"metadata,omitempty"`

	// Individual and private memories have an owner.
	OwnerID string `json:"owner_id,omitempty"`

	// Individual: subjective importance in [0,1].
	Salience float64 `json:"salience,omitempty"`

	// Shared: who was there and how each participant remembers it.
	ParticipantIDs    []string                      `json:"participant_ids,omitempty"`
	Perspectives      map[string]string             `json:"perspectives,omitempty"`
	ParticipantStates map[string]map[string]float64 `json:"participant_states,omitempty"`

	// Private: access gating and disclosure tracking.
	TrustThreshold  float64  `json:"trust_threshold,omitempty"`
	DisclosureCount int      `json:"disclosure_count,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// NewMemoryID generates a memory id of the form mem_<12 hex chars>.
func NewMemoryID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "mem_" + hex[:12]
}

// NewIndividualMemory creates a personal memory for one owner. Salience
// outside [0,1] is rejected; pass DefaultSalience for the baseline.
func NewIndividualMemory(ownerID, description string, salience float64) (*Memory, error) {
	if salience < 0 || salience > 1 {
		return nil, fmt.Errorf("%w: salience=%v", ErrOutOfRange, salience)
	}
	return &Memory{
		ID:          NewMemoryID(),
		Description: description,
		Type:        MemoryIndividual,
		CreatedAt:   time.Now().UTC(),
		OwnerID:     ownerID,
		Salience:    salience,
	}, nil
}

// NewSharedMemory creates a memory held jointly by the given participants.
func NewSharedMemory(description string, participantIDs []string) *Memory {
	m := &Memory{
		ID:          NewMemoryID(),
		Description: description,
		Type:        MemoryShared,
		CreatedAt:   time.Now().UTC(),
	}
	for _, id := range participantIDs {
		m.AddParticipant(id)
	}
	return m
}

// NewPrivateMemory creates a trust-gated memory. The threshold must be in
// [0,1]; pass DefaultTrustThreshold for the baseline.
func NewPrivateMemory(ownerID, description string, trustThreshold float64) (*Memory, error) {
	if trustThreshold < 0 || trustThreshold > 1 {
		return nil, fmt.Errorf("%w: trust_threshold=%v", ErrOutOfRange, trustThreshold)
	}
	return &Memory{
		ID:             NewMemoryID(),
		Description:    description,
		Type:           MemoryPrivate,
		CreatedAt:      time.Now().UTC(),
		OwnerID:        ownerID,
		TrustThreshold: trustThreshold,
	}, nil
}

// SetEmotionalState snapshots a state onto the memory.
func (m *Memory) SetEmotionalState(s *EmotionalState) {
	if s == nil {
		m.EmotionalState = nil
		return
	}
	m.EmotionalState = s.ToMap()
}

// BelongsTo reports whether the memory's owner is the given persona.
func (m *Memory) BelongsTo(individualID string) bool {
	return m.OwnerID != "" && m.OwnerID == individualID
}

// CanAccess reports whether a requester at the given trust level may see
// this memory. Only private memories gate on trust.
func (m *Memory) CanAccess(trustLevel float64) bool {
	if m.Type != MemoryPrivate {
		return true
	}
	return trustLevel >= m.TrustThreshold
}

// RecordDisclosure increments the private memory's disclosure counter.
func (m *Memory) RecordDisclosure() {
	m.DisclosureCount++
}

// SensitivityLevel describes how sensitive a private memory is, derived
// from its trust threshold.
func (m *Memory) SensitivityLevel() string {
	switch {
	case m.TrustThreshold >= 0.9:
		return "extremely sensitive"
	case m.TrustThreshold >= 0.7:
		return "highly sensitive"
	case m.TrustThreshold >= 0.5:
		return "moderately sensitive"
	case m.TrustThreshold >= 0.3:
		return "mildly sensitive"
	default:
		return "minimally sensitive"
	}
}

// AddTag adds a categorization tag, ignoring duplicates.
func (m *Memory) AddTag(tag string) {
	for _, t := range m.Tags {
		if t == tag {
			return
		}
	}
	m.Tags = append(m.Tags, tag)
}

// HasTag reports whether the memory carries the tag.
func (m *Memory) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddParticipant adds a persona to a shared memory, ignoring duplicates.
func (m *Memory) AddParticipant(individualID string) {
	for _, id := range m.ParticipantIDs {
		if id == individualID {
			return
		}
	}
	m.ParticipantIDs = append(m.ParticipantIDs, individualID)
}

// IsParticipant reports whether the persona shares this memory.
func (m *Memory) IsParticipant(individualID string) bool {
	for _, id := range m.ParticipantIDs {
		if id == individualID {
			return true
		}
	}
	return false
}

// SetPerspective records a participant's interpretation of the memory,
// adding them as a participant if needed.
func (m *Memory) SetPerspective(individualID, perspective string) {
	if m.Perspectives == nil {
		m.Perspectives = make(map[string]string)
	}
	m.Perspectives[individualID] = perspective
	m.AddParticipant(individualID)
}

// Perspective returns a participant's interpretation, "" if unset.
func (m *Memory) Perspective(individualID string) string {
	return m.Perspectives[individualID]
}

// SetParticipantState records a participant's emotional snapshot.
func (m *Memory) SetParticipantState(individualID string, s *EmotionalState) {
	if m.ParticipantStates == nil {
		m.ParticipantStates = make(map[string]map[string]float64)
	}
	m.ParticipantStates[individualID] = s.ToMap()
}

// ParticipantState returns a participant's emotional snapshot, nil if
// unset.
func (m *Memory) ParticipantState(individualID string) map[string]float64 {
	return m.ParticipantStates[individualID]
}

// EmbeddingText builds the text an embedder should encode for this
// memory: the description, a one-line dominant-emotion summary, then the
// situational context, joined by newlines in that order.
func (m *Memory) EmbeddingText() string {
	return m.PerspectiveEmbeddingText("")
}

// PerspectiveEmbeddingText is EmbeddingText seen through one participant's
// eyes: their recorded perspective and their own emotional snapshot take
// the place of the shared ones when present.
func (m *Memory) PerspectiveEmbeddingText(perspectiveID string) string {
	parts := []string{m.Description}

	if perspectiveID != "" {
		if p, ok := m.Perspectives[perspectiveID]; ok {
			parts = append(parts, "Personal perspective: "+p)
		}
	}

	snapshot := m.EmotionalState
	if perspectiveID != "" {
		if s, ok := m.ParticipantStates[perspectiveID]; ok {
			snapshot = s
		}
	}
	if emotion, value, ok := dominantOf(snapshot); ok {
		parts = append(parts, fmt.Sprintf("Emotional state: %s (%s)", emotion, intensityLabel(value)))
	}

	if m.Context != nil {
		if text := m.Context.EmbeddingText(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// dominantOf finds the highest-value emotion in a flat snapshot, ties
// broken by name ascending.
func dominantOf(snapshot map[string]float64) (string, float64, bool) {
	if len(snapshot) == 0 {
		return "", 0, false
	}
	best, bestValue, found := "", 0.0, false
	for emotion, value := range snapshot {
		if !found || value > bestValue || (value == bestValue && emotion < best) {
			best, bestValue, found = emotion, value, true
		}
	}
	return best, bestValue, true
}

// intensityLabel maps an intensity to its descriptive label.
func intensityLabel(value float64) string {
	switch {
	case value >= 0.8:
		return "very high"
	case value >= 0.6:
		return "high"
	case value >= 0.4:
		return "moderate"
	case value >= 0.2:
		return "mild"
	default:
		return "minimal"
	}
}
