package nodeset

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopcua/opcua/ua"
)

// Store is the NodeId-keyed node map backing the address space (spec §4.2).
// Insertion order is preserved and is the order All returns nodes in;
// lookup by NodeId is O(1) via the Go map.
type Store struct {
	mu    sync.RWMutex
	byKey map[string]*Node
	order []*Node

	// AreNodesReleasable allows AddNode/DeleteNode to mutate the graph.
	AreNodesReleasable bool
	// AreReadOnlyNodes restricts WriteValue to the Value itself: status
	// and source-timestamp writes are rejected (spec §4.2/§4.3).
	AreReadOnlyNodes bool
	// RecursionLimit bounds every graph walk in this package (subtype walk,
	// TranslateBrowsePath, DeleteNode recursion — spec §9 "Design Notes").
	// Zero means DefaultRecursionLimit.
	RecursionLimit int
	// DeleteRecursesOrganizes additionally follows Organizes-or-subtype
	// references when DeleteNode walks children to delete (spec §4.3
	// DeleteNode step 2's build-time toggle).
	DeleteRecursesOrganizes bool

	nextID map[uint16]uint32 // per-namespace fresh-id counter
}

// NewStore returns an empty, mutable Store.
func NewStore() *Store {
	return &Store{
		byKey:              make(map[string]*Node),
		AreNodesReleasable: true,
		RecursionLimit:     DefaultRecursionLimit,
		nextID:             make(map[uint16]uint32),
	}
}

// recursionLimit returns RecursionLimit, or DefaultRecursionLimit if unset.
func (s *Store) recursionLimit() int {
	if s.RecursionLimit <= 0 {
		return DefaultRecursionLimit
	}
	return s.RecursionLimit
}

// Get looks up a node by NodeId. Returns nil if absent.
func (s *Store) Get(id *ua.NodeID) *Node {
	if id == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byKey[id.String()]
}

// GetByKey looks up a node by its NodeId's string form.
func (s *Store) GetByKey(key string) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byKey[key]
}

// Append inserts node into the store. Returns an error if a node with the
// same NodeId already exists (spec invariant i).
func (s *Store) Append(n *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := n.Key()
	if _, exists := s.byKey[key]; exists {
		return fmt.Errorf("nodeset: node %s already exists", key)
	}
	s.byKey[key] = n
	s.order = append(s.order, n)
	return nil
}

// Remove deletes a node from the store. It is a no-op if absent.
func (s *Store) Remove(id *ua.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := id.String()
	if _, ok := s.byKey[key]; !ok {
		return
	}
	delete(s.byKey, key)
	for i, n := range s.order {
		if n.Key() == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// All returns every node in insertion order. The returned slice must not
// be mutated by callers.
func (s *Store) All() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, len(s.order))
	copy(out, s.order)
	return out
}

// FreshNodeID yields a NodeId not already present in the store, in
// namespace ns (spec §4.2): a per-namespace monotonic counter, advanced
// past any collision found by direct lookup.
func (s *Store) FreshNodeID(ns uint16) *ua.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		s.nextID[ns]++
		candidate := ua.NewNumericNodeID(ns, s.nextID[ns])
		if _, exists := s.byKey[candidate.String()]; !exists {
			return candidate
		}
	}
}

// SetStatusCode overwrites a Variable node's stored status code. Returns
// false (write-not-supported, spec §4.2) if the store is read-only.
func (s *Store) SetStatusCode(n *Node, status ua.StatusCode) bool {
	if s.AreReadOnlyNodes {
		return false
	}
	if n.Variable == nil || n.Variable.Value == nil {
		return false
	}
	n.Variable.Value.Status = status
	return true
}

// SetSourceTimestamp overwrites a Variable node's stored source timestamp.
// Returns false if the store is read-only.
func (s *Store) SetSourceTimestamp(n *Node, ts time.Time, picos uint16) bool {
	if s.AreReadOnlyNodes {
		return false
	}
	if n.Variable == nil || n.Variable.Value == nil {
		return false
	}
	n.Variable.Value.SourceTimestamp = ts
	n.Variable.Value.SourceTimestampPicoseconds = picos
	return true
}
