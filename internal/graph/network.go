// Package graph implements the directed trust graph between personas:
// relationship lookup, breadth-first path search, multiplicative path
// trust, and common-connection queries.
package graph

import (
	"sync"

	"github.com/personaut/personaut/pkg/types"
)

// DefaultMaxDepth bounds path search when callers pass no explicit limit.
const DefaultMaxDepth = 6

// Network is a collection of relationships keyed by id. Adjacency, path
// search, and common connections are derived on demand from the current
// edge set, never cached, so they always reflect the latest mutation.
//
// Relationship membership mutates under the network lock; trust values
// inside a Relationship carry their own lock.
type Network struct {
	strangerTrust float64

	mu            sync.RWMutex
	relationships map[string]*types.Relationship
	order         []string // relationship ids in insertion order, for deterministic traversal
}

// NewNetwork creates an empty network with the given stranger-trust
// constant. Pass types.DefaultStrangerTrust for the documented baseline.
func NewNetwork(strangerTrust float64) *Network {
	return &Network{
		strangerTrust: types.ClampTrust(strangerTrust),
		relationships: make(map[string]*types.Relationship),
	}
}

// StrangerTrust returns the configured default trust for unconnected
// personas.
func (n *Network) StrangerTrust() float64 { return n.strangerTrust }

// AddRelationship registers a relationship. Re-adding an id replaces the
// entry but keeps its original traversal position.
func (n *Network) AddRelationship(r *types.Relationship) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.relationships[r.ID]; !exists {
		n.order = append(n.order, r.ID)
	}
	n.relationships[r.ID] = r
}

// RemoveRelationship deletes a relationship by id, reporting whether it
// existed.
func (n *Network) RemoveRelationship(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.relationships[id]; !exists {
		return false
	}
	delete(n.relationships, id)
	for i, rid := range n.order {
		if rid == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	return true
}

// Relationship returns the relationship with the given id, nil if absent.
func (n *Network) Relationship(id string) *types.Relationship {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.relationships[id]
}

// Relationships returns the relationships involving an individual, in
// insertion order.
func (n *Network) Relationships(individualID string) []*types.Relationship {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.relationshipsLocked(individualID)
}

func (n *Network) relationshipsLocked(individualID string) []*types.Relationship {
	var out []*types.Relationship
	for _, id := range n.order {
		if r := n.relationships[id]; r.HasIndividual(individualID) {
			out = append(out, r)
		}
	}
	return out
}

// RelationshipBetween scans for a relationship containing both personas,
// nil if none exists. Absence is a normal graph state, not an error.
func (n *Network) RelationshipBetween(a, b string) *types.Relationship {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, id := range n.order {
		if r := n.relationships[id]; r.Involves(a, b) {
			return r
		}
	}
	return nil
}

// RelationshipsByType returns relationships of one type, in insertion
// order.
func (n *Network) RelationshipsByType(relationshipType string) []*types.Relationship {
	n.mu.RLock()
	defer n.mu.RUnlock()
	var out []*types.Relationship
	for _, id := range n.order {
		if r := n.relationships[id]; r.Type == relationshipType {
			out = append(out, r)
		}
	}
	return out
}

// ConnectedIndividuals returns the personas directly connected to one, in
// deterministic order: relationship insertion order, then member order
// within a relationship. Duplicates across relationships collapse to the
// first occurrence.
func (n *Network) ConnectedIndividuals(individualID string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.connectedLocked(individualID)
}

func (n *Network) connectedLocked(individualID string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range n.order {
		r := n.relationships[id]
		if !r.HasIndividual(individualID) {
			continue
		}
		for _, member := range r.IndividualIDs() {
			if member == individualID {
				continue
			}
			if _, dup := seen[member]; dup {
				continue
			}
			seen[member] = struct{}{}
			out = append(out, member)
		}
	}
	return out
}

// TrustBetween returns the direct relationship's trust when one exists,
// otherwise the stranger-trust constant. Two valid but unconnected
// personas are strangers, never zero-trust.
func (n *Network) TrustBetween(from, to string) float64 {
	if r := n.RelationshipBetween(from, to); r != nil {
		return r.GetTrust(from, to)
	}
	return n.strangerTrust
}

// UpdateTrust shifts trust along an existing direct relationship,
// reporting ok=false when the personas have no relationship to update.
func (n *Network) UpdateTrust(from, to string, delta float64, reason string) (float64, bool) {
	r := n.RelationshipBetween(from, to)
	if r == nil {
		return 0, false
	}
	return r.UpdateTrust(from, to, delta, reason), true
}

// FindPath searches breadth-first for the shortest id path between two
// personas, nil if unreachable within maxDepth hops. Equal-length paths
// resolve to the first discovered: neighbors expand in relationship
// insertion order, so results are stable across runs. A non-positive
// maxDepth falls back to DefaultMaxDepth.
func (n *Network) FindPath(from, to string, maxDepth int) []string {
	if from == to {
		return []string{from}
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	type queueItem struct {
		id   string
		path []string
	}
	queue := []queueItem{{from, []string{from}}}
	visited := make(map[string]bool)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if len(current.path) > maxDepth {
			continue
		}
		if visited[current.id] {
			continue
		}
		visited[current.id] = true

		for _, neighbor := range n.connectedLocked(current.id) {
			next := append(append([]string{}, current.path...), neighbor)
			if neighbor == to {
				return next
			}
			if !visited[neighbor] {
				queue = append(queue, queueItem{neighbor, next})
			}
		}
	}
	return nil
}

// PathTrust multiplies the network trust of each consecutive pair along a
// path. A single-node or empty path has trust 1.0.
func (n *Network) PathTrust(path []string) float64 {
	if len(path) < 2 {
		return 1.0
	}
	trust := 1.0
	for i := 0; i < len(path)-1; i++ {
		trust *= n.TrustBetween(path[i], path[i+1])
	}
	return trust
}

// CommonConnections returns the personas directly connected to both a and
// b, ordered by a's adjacency.
func (n *Network) CommonConnections(a, b string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	bSet := make(map[string]struct{})
	for _, id := range n.connectedLocked(b) {
		bSet[id] = struct{}{}
	}

	var out []string
	for _, id := range n.connectedLocked(a) {
		if _, ok := bSet[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// RelationshipCount returns how many relationships involve the persona.
func (n *Network) RelationshipCount(individualID string) int {
	return len(n.Relationships(individualID))
}

// AllIndividuals returns every persona appearing in any relationship, in
// first-appearance order.
func (n *Network) AllIndividuals() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, id := range n.order {
		for _, member := range n.relationships[id].IndividualIDs() {
			if _, dup := seen[member]; dup {
				continue
			}
			seen[member] = struct{}{}
			out = append(out, member)
		}
	}
	return out
}

// Len returns the number of relationships in the network.
func (n *Network) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.relationships)
}
