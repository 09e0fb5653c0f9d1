package access

import (
	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/statuscode"
)

// BrowseDirection selects which reference direction Browse walks (spec
// §4.3).
type BrowseDirection int

const (
	BrowseForward BrowseDirection = iota
	BrowseInverse
	BrowseBoth
)

// ReferenceDescription is one Browse result entry (spec §4.3: result mask
// and node-class mask are currently ignored; only the reference type,
// IsForward and the target NodeId are populated).
type ReferenceDescription struct {
	ReferenceTypeID *ua.NodeID
	IsForward       bool
	TargetID        *ua.NodeID
}

// Browse enumerates node's references matching direction and, if refTypeID
// is non-nil, the given reference type (optionally including its
// subtypes).
func (a *Access) Browse(nodeID *ua.NodeID, direction BrowseDirection, refTypeID *ua.NodeID, includeSubtypes bool) ([]ReferenceDescription, ua.StatusCode) {
	n := a.Store.Get(nodeID)
	if n == nil {
		return nil, statuscode.BadNodeIDUnknown
	}
	if refTypeID != nil && !a.Store.IsValidReferenceTypeID(refTypeID) {
		return nil, statuscode.BadReferenceTypeIDInvalid
	}
	if direction != BrowseForward && direction != BrowseInverse && direction != BrowseBoth {
		return nil, statuscode.BadBrowseDirectionInvalid
	}

	var out []ReferenceDescription
	for _, ref := range n.References {
		if ref.IsInverse && direction == BrowseForward {
			continue
		}
		if !ref.IsInverse && direction == BrowseInverse {
			continue
		}
		if refTypeID != nil {
			if includeSubtypes {
				if !a.Store.IsTypeOrSubtype(ref.TypeID, refTypeID, nil) {
					continue
				}
			} else if ref.TypeID.String() != refTypeID.String() {
				continue
			}
		}
		if !ref.IsLocal() {
			continue
		}
		out = append(out, ReferenceDescription{ReferenceTypeID: ref.TypeID, IsForward: !ref.IsInverse, TargetID: ref.Target.NodeID})
	}
	return out, statuscode.Good
}

// RelativePathElement is one step of a RelativePath (spec §4.3).
type RelativePathElement struct {
	ReferenceTypeID *ua.NodeID
	IsInverse       bool
	IncludeSubtypes bool
	TargetName      ua.QualifiedName
}

// TranslateBrowsePath follows path from start, one step at a time, taking
// the first matching reference at each step (spec §4.3).
func (a *Access) TranslateBrowsePath(start *ua.NodeID, path []RelativePathElement) (*ua.NodeID, ua.StatusCode) {
	if a.Store.Get(start) == nil {
		return nil, statuscode.BadNodeIDUnknown
	}
	limit := a.Store.RecursionLimit
	if limit <= 0 {
		limit = nodeset.DefaultRecursionLimit
	}
	cur := start
	for i, step := range path {
		if i >= limit {
			return nil, statuscode.BadNoMatch
		}
		next := a.translateStep(cur, step)
		if next == nil {
			return nil, statuscode.BadNoMatch
		}
		cur = next
	}
	return cur, statuscode.Good
}

func (a *Access) translateStep(cur *ua.NodeID, step RelativePathElement) *ua.NodeID {
	n := a.Store.Get(cur)
	if n == nil {
		return nil
	}
	for _, ref := range n.References {
		if ref.IsInverse != step.IsInverse {
			continue
		}
		if !ref.IsLocal() {
			continue
		}
		if step.ReferenceTypeID != nil {
			if step.IncludeSubtypes {
				if !a.Store.IsTypeOrSubtype(ref.TypeID, step.ReferenceTypeID, nil) {
					continue
				}
			} else if ref.TypeID.String() != step.ReferenceTypeID.String() {
				continue
			}
		}
		target := a.Store.Get(ref.Target.NodeID)
		if target == nil {
			continue
		}
		if target.BrowseName.NamespaceIndex == step.TargetName.NamespaceIndex && target.BrowseName.Name == step.TargetName.Name {
			return ref.Target.NodeID
		}
	}
	return nil
}
