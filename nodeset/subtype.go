package nodeset

import (
	"github.com/gopcua/opcua/ua"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRecursionLimit is the bound every graph walk in this package
// (subtype walk, TranslateBrowsePath, DeleteNode recursion — spec §9
// "Design Notes") falls back to when a Store's RecursionLimit is unset.
const DefaultRecursionLimit = 128

// SubtypeCache memoises dynamic is-subtype walks. A nil *SubtypeCache, the
// zero value, and the cache returned by NewSubtypeCache(0) all disable
// caching.
type SubtypeCache struct {
	cache *lru.Cache[[2]string, bool]
}

// NewSubtypeCache returns a cache bounded to size entries (spec SPEC_FULL.md
// domain-stack wiring: github.com/hashicorp/golang-lru/v2).
func NewSubtypeCache(size int) *SubtypeCache {
	if size <= 0 {
		return &SubtypeCache{}
	}
	c, _ := lru.New[[2]string, bool](size)
	return &SubtypeCache{cache: c}
}

// IsTypeOrSubtype reports whether a is b or is transitively a subtype of b
// (spec §4.2): the static namespace-0 table is consulted first (O(1) when
// both ids are in range), falling back to a bounded walk of the node
// graph's inverse HasSubtype-or-subtype references, memoised in cache if
// non-nil.
func (s *Store) IsTypeOrSubtype(a, b *ua.NodeID, cache *SubtypeCache) bool {
	if a == nil || b == nil {
		return false
	}
	if a.String() == b.String() {
		return true
	}
	if aNum, aOK := numericID(a); aOK {
		if bNum, bOK := numericID(b); bOK {
			if ok, hit := staticIsSubtype(aNum, bNum); hit {
				return ok
			}
		}
	}
	if cache != nil && cache.cache != nil {
		key := [2]string{a.String(), b.String()}
		if v, ok := cache.cache.Get(key); ok {
			return v
		}
		result := s.walkIsSubtype(a, b, s.recursionLimit())
		cache.cache.Add(key, result)
		return result
	}
	return s.walkIsSubtype(a, b, s.recursionLimit())
}

// staticIsSubtype walks the static table only; hit reports whether the
// table had enough information to answer without consulting the graph.
func staticIsSubtype(a, b uint32) (ok bool, hit bool) {
	cur := a
	for i := 0; i < DefaultRecursionLimit; i++ {
		if cur == b {
			return true, true
		}
		entry, known := staticSubtypeTable[cur]
		if !known {
			return false, false
		}
		if !entry.HasSubtype {
			return false, true
		}
		cur = entry.SubtypeNodeID
	}
	return false, true
}

func (s *Store) walkIsSubtype(a, b *ua.NodeID, limit int) bool {
	if limit <= 0 {
		return false
	}
	if aNum, aOK := numericID(a); aOK {
		if bNum, bOK := numericID(b); bOK {
			if ok, hit := staticIsSubtype(aNum, bNum); hit {
				return ok
			}
		}
	}
	node := s.Get(a)
	if node == nil {
		return false
	}
	for _, ref := range node.References {
		if !ref.IsInverse || !ref.IsLocal() {
			continue
		}
		if !s.IsTypeOrSubtype(ref.TypeID, ua.NewNumericNodeID(0, RefHasSubtype), nil) {
			continue
		}
		if ref.TargetKey() == b.String() {
			return true
		}
		if s.walkIsSubtype(ref.Target.NodeID, b, limit-1) {
			return true
		}
	}
	return false
}

// GetDirectParentType returns the first TargetId of the first inverse
// HasSubtype-or-subtype reference on child (spec §4.2).
func (s *Store) GetDirectParentType(child *ua.NodeID) *ua.NodeID {
	node := s.Get(child)
	if node == nil {
		return nil
	}
	for _, ref := range node.References {
		if ref.IsInverse && ref.IsLocal() && s.IsTypeOrSubtype(ref.TypeID, ua.NewNumericNodeID(0, RefHasSubtype), nil) {
			return ref.Target.NodeID
		}
	}
	return nil
}

// IsValidReferenceTypeID reports whether id names a node of NodeClass
// ReferenceType, using the static table when possible (spec §4.2).
func (s *Store) IsValidReferenceTypeID(id *ua.NodeID) bool {
	if num, ok := numericID(id); ok {
		if entry, known := staticSubtypeTable[num]; known {
			return entry.NodeClass == ClassReferenceType
		}
	}
	node := s.Get(id)
	return node != nil && node.Class == ClassReferenceType
}

// GetTypeDefinition returns the first forward HasTypeDefinition reference
// target of node (spec §4.2).
func (s *Store) GetTypeDefinition(node *Node) *ua.NodeID {
	for _, ref := range node.References {
		if !ref.IsInverse && ref.IsLocal() && s.refIsHasTypeDefinition(ref.TypeID) {
			return ref.Target.NodeID
		}
	}
	return nil
}

func (s *Store) refIsHasTypeDefinition(typeID *ua.NodeID) bool {
	num, ok := numericID(typeID)
	return ok && num == RefHasTypeDefinition
}

// GetEncodingDataType follows inverse HasEncoding from an Object (encoding)
// node to its owning DataType node; if encodingNodeID already names a
// DataType node, it is returned unchanged (spec §4.2).
func (s *Store) GetEncodingDataType(encodingNodeID *ua.NodeID) *ua.NodeID {
	node := s.Get(encodingNodeID)
	if node == nil {
		return nil
	}
	if node.Class == ClassDataType {
		return encodingNodeID
	}
	for _, ref := range node.References {
		if ref.IsInverse && ref.IsLocal() {
			if num, ok := numericID(ref.TypeID); ok && num == RefHasEncoding {
				return ref.Target.NodeID
			}
		}
	}
	return nil
}

// GetDataTypeDefaultBinaryEncoding follows HasEncoding forward from
// dataTypeID, returning the target Object whose BrowseName is
// "Default Binary" in namespace 0 (spec §4.2).
func (s *Store) GetDataTypeDefaultBinaryEncoding(dataTypeID *ua.NodeID) *ua.NodeID {
	node := s.Get(dataTypeID)
	if node == nil {
		return nil
	}
	for _, ref := range node.References {
		if ref.IsInverse || !ref.IsLocal() {
			continue
		}
		num, ok := numericID(ref.TypeID)
		if !ok || num != RefHasEncoding {
			continue
		}
		target := s.Get(ref.Target.NodeID)
		if target != nil && target.Class == ClassObject &&
			target.BrowseName.NamespaceIndex == 0 && target.BrowseName.Name == "Default Binary" {
			return ref.Target.NodeID
		}
	}
	return nil
}
