package types

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TrustChange is one entry in a relationship's append-only trust log. Old
// and new record the actual stored values, not the requested delta, so the
// log stays truthful when clamping absorbs part of a change.
type TrustChange struct {
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from_individual"`
	To        string    `json:"to_individual"`
	OldValue  float64   `json:"old_value"`
	NewValue  float64   `json:"new_value"`
	Reason    string    `json:"reason,omitempty"`
}

// Relationship models a connection between two or more personas: a set of
// members, a directed trust table trust[from][to] in [0,1], an append-only
// trust-change log, and the shared memories the members hold together.
//
// Trust mutation may happen from multiple goroutines; all access to the
// trust table and its log goes through one mutex so the two never disagree
// about ordering. EmotionalState and TraitProfile stay single-owner; the
// relationship graph is the shared structure.
type Relationship struct {
	ID        string    `json:"id"`
	History   string    `json:"history,omitempty"`
	Type      string    `json:"relationship_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	mu              sync.Mutex
	individualIDs   []string
	trust           map[string]map[string]float64
	trustHistory    []TrustChange
	sharedMemoryIDs []string
}

// NewRelationship creates a relationship between the given personas, with
// every directed pair initialized to defaultTrust. Pass
// DefaultStrangerTrust for the documented baseline.
func NewRelationship(individualIDs []string, defaultTrust float64) *Relationship {
	r := &Relationship{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		trust:     make(map[string]map[string]float64),
	}
	for _, id := range individualIDs {
		r.addLocked(id, ClampTrust(defaultTrust))
	}
	return r
}

// addLocked inserts a member and seeds trust both ways with every existing
// member. No-op for known members. Caller holds no lock during
// construction; mutating calls take r.mu first.
func (r *Relationship) addLocked(id string, defaultTrust float64) {
	if _, known := r.trust[id]; known {
		return
	}
	r.individualIDs = append(r.individualIDs, id)
	r.trust[id] = make(map[string]float64)
	for _, other := range r.individualIDs {
		if other == id {
			continue
		}
		r.trust[id][other] = defaultTrust
		r.trust[other][id] = defaultTrust
	}
}

// AddIndividual adds a persona, initializing both trust directions with
// every existing member at defaultTrust. No-op if already a member.
func (r *Relationship) AddIndividual(id string, defaultTrust float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(id, ClampTrust(defaultTrust))
}

// RemoveIndividual purges a persona from membership and from every trust
// entry, both as source and as target.
func (r *Relationship) RemoveIndividual(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, known := r.trust[id]; !known {
		return
	}
	for i, member := range r.individualIDs {
		if member == id {
			r.individualIDs = append(r.individualIDs[:i], r.individualIDs[i+1:]...)
			break
		}
	}
	delete(r.trust, id)
	for _, row := range r.trust {
		delete(row, id)
	}
}

// IndividualIDs returns the member ids in insertion order.
func (r *Relationship) IndividualIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.individualIDs))
	copy(out, r.individualIDs)
	return out
}

// HasIndividual reports whether the persona is a member.
func (r *Relationship) HasIndividual(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.trust[id]
	return ok
}

// Involves reports whether every given persona is a member.
func (r *Relationship) Involves(ids ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if _, ok := r.trust[id]; !ok {
			return false
		}
	}
	return true
}

// GetTrust returns the directed trust from one persona to another, 0 if
// either side or the edge is unknown. Absence is a normal graph state,
// never an error.
func (r *Relationship) GetTrust(from, to string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trust[from][to]
}

// GetMutualTrust returns the arithmetic mean of the two directed values.
func (r *Relationship) GetMutualTrust(a, b string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (r.trust[a][b] + r.trust[b][a]) / 2
}

// GetTrustAsymmetry returns trust[a][b] - trust[b][a]; positive means a
// trusts b more than the reverse.
func (r *Relationship) GetTrustAsymmetry(a, b string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trust[a][b] - r.trust[b][a]
}

// GetTrustLevel returns the band for the directed trust value.
func (r *Relationship) GetTrustLevel(from, to string) TrustLevel {
	return TrustLevelFor(r.GetTrust(from, to))
}

// UpdateTrust shifts directed trust by delta, clamped to [0,1], and
// appends a history entry recording the actual old and new values. The
// entry is appended even when the clamp absorbs the whole change.
func (r *Relationship) UpdateTrust(from, to string, delta float64, reason string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.trust[from][to]
	return r.setTrustLocked(from, to, ClampTrust(old+delta), reason)
}

// SetTrust overwrites directed trust with a clamped absolute value. Like
// UpdateTrust it logs the change, so the history is a complete record of
// every mutation.
func (r *Relationship) SetTrust(from, to string, value float64, reason string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setTrustLocked(from, to, ClampTrust(value), reason)
}

func (r *Relationship) setTrustLocked(from, to string, newValue float64, reason string) float64 {
	old := r.trust[from][to]
	if r.trust[from] == nil {
		r.trust[from] = make(map[string]float64)
	}
	r.trust[from][to] = newValue
	r.trustHistory = append(r.trustHistory, TrustChange{
		Timestamp: time.Now().UTC(),
		From:      from,
		To:        to,
		OldValue:  old,
		NewValue:  newValue,
		Reason:    reason,
	})
	return newValue
}

// TrustHistory returns a copy of the append-only trust log.
func (r *Relationship) TrustHistory() []TrustChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TrustChange, len(r.trustHistory))
	copy(out, r.trustHistory)
	return out
}

// AddSharedMemory records a memory id held jointly by the members.
// Duplicates are ignored.
func (r *Relationship) AddSharedMemory(memoryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.sharedMemoryIDs {
		if id == memoryID {
			return
		}
	}
	r.sharedMemoryIDs = append(r.sharedMemoryIDs, memoryID)
}

// SharedMemoryIDs returns the shared memory ids in insertion order.
func (r *Relationship) SharedMemoryIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sharedMemoryIDs))
	copy(out, r.sharedMemoryIDs)
	return out
}

// TrustTable returns a deep copy of the directed trust table.
func (r *Relationship) TrustTable() map[string]map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]map[string]float64, len(r.trust))
	for from, row := range r.trust {
		cp := make(map[string]float64, len(row))
		for to, v := range row {
			cp[to] = v
		}
		out[from] = cp
	}
	return out
}

// RelationshipDoc is the serialized wire form of a Relationship.
type RelationshipDoc struct {
	ID              string                        `json:"id"`
	IndividualIDs   []string                      `json:"individual_ids"`
	Trust           map[string]map[string]float64 `json:"trust"`
	SharedMemoryIDs []string                      `json:"shared_memory_ids"`
	History         string                        `json:"history,omitempty"`
	Type            string                        `json:"relationship_type,omitempty"`
	CreatedAt       time.Time                     `json:"created_at"`
	TrustHistory    []TrustChange                 `json:"trust_history,omitempty"`
}

// ToDoc snapshots the relationship into its serialized form.
func (r *Relationship) ToDoc() RelationshipDoc {
	return RelationshipDoc{
		ID:              r.ID,
		IndividualIDs:   r.IndividualIDs(),
		Trust:           r.TrustTable(),
		SharedMemoryIDs: r.SharedMemoryIDs(),
		History:         r.History,
		Type:            r.Type,
		CreatedAt:       r.CreatedAt,
		TrustHistory:    r.TrustHistory(),
	}
}

// RelationshipFromDoc reconstructs a Relationship from its serialized
// form. Trust edges absent from the document default to stranger trust
// for every member pair.
func RelationshipFromDoc(doc RelationshipDoc) *Relationship {
	r := &Relationship{
		ID:        doc.ID,
		History:   doc.History,
		Type:      doc.Type,
		CreatedAt: doc.CreatedAt,
		trust:     make(map[string]map[string]float64),
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for _, id := range doc.IndividualIDs {
		r.addLocked(id, DefaultStrangerTrust)
	}
	for from, row := range doc.Trust {
		if r.trust[from] == nil {
			r.trust[from] = make(map[string]float64)
		}
		for to, v := range row {
			r.trust[from][to] = ClampTrust(v)
		}
	}
	r.sharedMemoryIDs = append(r.sharedMemoryIDs, doc.SharedMemoryIDs...)
	r.trustHistory = append(r.trustHistory, doc.TrustHistory...)
	return r
}
