// Package nodeset implements the server-side address space (spec §3/§4.2,
// C2): a NodeId-keyed store of typed nodes connected by directed,
// ReferenceType-tagged references, plus the subtype/parent/encoding
// traversal helpers the rest of the engine needs.
package nodeset

import (
	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// NodeClass is the Part 3 NodeClass enumeration, bit-valued as on the wire.
type NodeClass uint32

const (
	ClassObject        NodeClass = 1
	ClassVariable      NodeClass = 2
	ClassMethod        NodeClass = 4
	ClassObjectType    NodeClass = 8
	ClassVariableType  NodeClass = 16
	ClassReferenceType NodeClass = 32
	ClassDataType      NodeClass = 64
	ClassView          NodeClass = 128
)

// AccessLevel bit mask values (spec §3).
const (
	AccessCurrentRead    uint32 = 1
	AccessCurrentWrite   uint32 = 2
	AccessHistoryRead    uint32 = 4
	AccessHistoryWrite   uint32 = 8
	AccessStatusWrite    uint32 = 0x20
	AccessTimestampWrite uint32 = 0x40
)

// EventNotifier bit mask values (spec §3).
const EventNotifierSubscribeToEvents byte = 1

// ValueRank well-known values (spec §3); n >= 1 means exactly n dimensions
// and is represented by that literal positive int32.
const (
	RankScalarOrOneDimension int32 = -3
	RankAny                  int32 = -2
	RankScalar               int32 = -1
	RankOneOrMoreDimensions  int32 = 0
)

// VariableAttrs holds the Variable-specific attributes (spec §3).
type VariableAttrs struct {
	Value           *valuemodel.DataValue
	DataType        *ua.NodeID
	ValueRank       int32
	ArrayDimensions []uint32
	AccessLevel     uint32
	UserAccessLevel uint32
}

// VariableTypeAttrs holds the VariableType-specific attributes.
type VariableTypeAttrs struct {
	Value           *valuemodel.Variant
	DataType        *ua.NodeID
	ValueRank       int32
	ArrayDimensions []uint32
	IsAbstract      bool
}

// MethodAttrs holds the Method-specific attributes.
type MethodAttrs struct {
	Executable     bool
	UserExecutable bool
}

// ObjectAttrs holds the Object-specific attributes.
type ObjectAttrs struct {
	EventNotifier byte
}

// ObjectTypeAttrs holds the ObjectType-specific attributes.
type ObjectTypeAttrs struct {
	IsAbstract bool
}

// ViewAttrs holds the View-specific attributes.
type ViewAttrs struct {
	EventNotifier   byte
	ContainsNoLoops bool
}

// ReferenceTypeAttrs holds the ReferenceType-specific attributes.
type ReferenceTypeAttrs struct {
	Symmetric   bool
	IsAbstract  bool
	InverseName valuemodel.LocalizedText
}

// DataTypeAttrs holds the DataType-specific attributes.
type DataTypeAttrs struct {
	IsAbstract         bool
	DataTypeDefinition []byte
}

// Node is a tagged union by NodeClass (spec §3/§9: modelled as a tag plus
// one populated class-specific attribute block, never as a class
// hierarchy).
type Node struct {
	NodeID       *ua.NodeID
	Class        NodeClass
	BrowseName   ua.QualifiedName
	DisplayName  valuemodel.LocalizedText
	Description  valuemodel.LocalizedText
	WriteMask    uint32
	UserWriteMask uint32
	References   []Reference

	Variable      *VariableAttrs
	VariableType  *VariableTypeAttrs
	Method        *MethodAttrs
	Object        *ObjectAttrs
	ObjectType    *ObjectTypeAttrs
	View          *ViewAttrs
	ReferenceType *ReferenceTypeAttrs
	DataType      *DataTypeAttrs
}

// Key returns the map key this node is stored under: its NodeId's string
// form (spec invariant i: every NodeId is unique — using the string form
// as the key sidesteps NodeID's internal representation, which
// github.com/gopcua/opcua/ua doesn't guarantee is comparable with ==).
func (n *Node) Key() string { return n.NodeID.String() }
