package nodeset

import "github.com/gopcua/opcua/ua"

// Reference is a directed, ReferenceType-tagged edge between two nodes
// (spec §3/GLOSSARY).
type Reference struct {
	TypeID   *ua.NodeID
	IsInverse bool
	Target   ua.ExpandedNodeID
}

// IsLocal reports whether the reference targets a node in this server
// (ServerIndex 0, empty NamespaceUri — spec §3 invariant ii).
func (r Reference) IsLocal() bool {
	return r.Target.ServerIndex == 0 && r.Target.NamespaceURI == ""
}

// TargetKey returns the string form of the local target NodeId; only valid
// when IsLocal() is true.
func (r Reference) TargetKey() string {
	if r.Target.NodeID == nil {
		return ""
	}
	return r.Target.NodeID.String()
}
