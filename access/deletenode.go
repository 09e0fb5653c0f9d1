package access

import (
	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/statuscode"
)

// DeleteNode removes a node and, when deleteChildNodes is set, recursively
// removes any child reachable via a forward HasChild-or-subtype reference
// (plus Organizes-or-subtype, when the Store's DeleteRecursesOrganizes is
// set — spec §4.3 DeleteNode step 2's optional branch) that has no other
// hierarchical parent (spec §4.3/§9). deleteTargetReferences additionally
// strips dangling back-references from nodes that survive.
func (a *Access) DeleteNode(id *ua.NodeID, deleteTargetReferences, deleteChildNodes bool) ua.StatusCode {
	root := a.Store.Get(id)
	if root == nil {
		return statuscode.BadNodeIDUnknown
	}
	limit := a.Store.RecursionLimit
	if limit <= 0 {
		limit = nodeset.DefaultRecursionLimit
	}
	failed := a.deleteNodeRec(root, deleteTargetReferences, deleteChildNodes, limit)
	if failed {
		return statuscode.UncertainReferenceNotDeleted
	}
	return statuscode.Good
}

func (a *Access) deleteNodeRec(node *nodeset.Node, deleteTargetReferences, deleteChildNodes bool, limit int) bool {
	if limit <= 0 {
		return true
	}
	failed := false
	for _, ref := range append([]nodeset.Reference(nil), node.References...) {
		if ref.IsInverse || !ref.IsLocal() {
			continue
		}
		target := a.Store.Get(ref.Target.NodeID)
		if target == nil {
			continue
		}
		isChildRef := a.isRecursableChildRef(ref.TypeID)
		deleteChild := deleteChildNodes && isChildRef && a.isSingleParent(node, target)
		switch {
		case deleteChild:
			if a.deleteNodeRec(target, deleteTargetReferences, deleteChildNodes, limit-1) {
				failed = true
			}
		case deleteTargetReferences:
			removeReferencesTo(target, node.NodeID)
		}
	}
	a.Store.Remove(node.NodeID)
	a.logNodeChange(NodeChangeOp{Added: false, NodeID: node.NodeID})
	return failed
}

// isRecursableChildRef reports whether refTypeID is a reference type
// DeleteNode's recursive child walk follows: HasChild-or-subtype always,
// and Organizes-or-subtype too when the Store opts into it via
// DeleteRecursesOrganizes.
func (a *Access) isRecursableChildRef(refTypeID *ua.NodeID) bool {
	if a.Store.IsTypeOrSubtype(refTypeID, ua.NewNumericNodeID(0, nodeset.RefHasChild), nil) {
		return true
	}
	return a.Store.DeleteRecursesOrganizes && a.Store.IsTypeOrSubtype(refTypeID, ua.NewNumericNodeID(0, nodeset.RefOrganizes), nil)
}

// isSingleParent reports whether child's only inverse reference of a
// recursable child-reference type (per isRecursableChildRef) names parent
// (spec §4.3 "has exactly one hierarchical parent").
func (a *Access) isSingleParent(parent *nodeset.Node, child *nodeset.Node) bool {
	foundParent := false
	foundOther := false
	for _, ref := range child.References {
		if !ref.IsInverse || !ref.IsLocal() {
			continue
		}
		if !a.isRecursableChildRef(ref.TypeID) {
			continue
		}
		if ref.TargetKey() == parent.Key() {
			foundParent = true
		} else {
			foundOther = true
		}
	}
	return foundParent && !foundOther
}

// removeReferencesTo deletes every reference on node that targets removed,
// in either direction.
func removeReferencesTo(node *nodeset.Node, removed *ua.NodeID) {
	out := node.References[:0]
	for _, ref := range node.References {
		if ref.IsLocal() && ref.TargetKey() == removed.String() {
			continue
		}
		out = append(out, ref)
	}
	node.References = out
}
