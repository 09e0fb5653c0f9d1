package access

import (
	"github.com/gopcua/opcua/ua"
	"go.uber.org/zap"

	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/statuscode"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// Specified is the SpecifiedAttributes bitmask flagging which
// NodeAttributes fields the caller actually populated (spec §4.3 "node
// attributes population rules").
type Specified uint32

const (
	SpecDisplayName             Specified = 1 << iota
	SpecDescription
	SpecWriteMask
	SpecUserWriteMask
	SpecIsAbstract
	SpecSymmetric
	SpecInverseName
	SpecContainsNoLoops
	SpecEventNotifier
	SpecValue
	SpecDataType
	SpecValueRank
	SpecArrayDimensions
	SpecAccessLevel
	SpecUserAccessLevel
	SpecMinimumSamplingInterval
	SpecHistorizing
	SpecExecutable
	SpecUserExecutable
)

func (s Specified) has(bit Specified) bool { return s&bit != 0 }

// NodeAttributes is the generic NodeAttributes input to AddNode (spec §4.3
// table); only the fields relevant to the requested NodeClass are read.
type NodeAttributes struct {
	Specified Specified

	DisplayName valuemodel.LocalizedText
	Description valuemodel.LocalizedText

	Value                   *valuemodel.DataValue
	DataType                *ua.NodeID
	ValueRank               int32
	ArrayDimensions         []uint32
	AccessLevel             uint32
	MinimumSamplingInterval float64

	EventNotifier byte

	Executable bool
}

// AddNode creates a new Variable, Object or Method node as a child of
// parentID (spec §4.3). typeDefinitionID is required for Variable/Object
// and must be nil for Method.
func (a *Access) AddNode(class nodeset.NodeClass, requestedID *ua.NodeID, parentID *ua.NodeID, refToParentTypeID *ua.NodeID, browseName ua.QualifiedName, typeDefinitionID *ua.NodeID, attrs *NodeAttributes) (*ua.NodeID, ua.StatusCode) {
	if a.Store.AreReadOnlyNodes || !a.Store.AreNodesReleasable {
		return nil, statuscode.BadServiceUnsupported
	}
	if requestedID != nil && a.Store.Get(requestedID) != nil {
		return nil, statuscode.BadNodeIDExists
	}

	parent := a.Store.Get(parentID)
	if parent == nil {
		return nil, statuscode.BadParentNodeIDInvalid
	}
	if status := checkReferenceToParent(a.Store, parent, refToParentTypeID, class, typeDefinitionID); !statuscode.IsGood(status) {
		return nil, status
	}
	if class == nodeset.ClassObject || class == nodeset.ClassVariable {
		typeNode := a.Store.Get(typeDefinitionID)
		wantClass := nodeset.ClassObjectType
		if class == nodeset.ClassVariable {
			wantClass = nodeset.ClassVariableType
		}
		if typeNode == nil || typeNode.Class != wantClass {
			return nil, statuscode.BadTypeDefinitionInvalid
		}
	}
	if status := checkBrowseNameUnique(a.Store, parent, browseName); !statuscode.IsGood(status) {
		return nil, status
	}

	id := requestedID
	if id == nil {
		id = a.Store.FreshNodeID(parentID.Namespace())
	}

	n := &Node0Builder{ID: id, Class: class, BrowseName: browseName}
	node, status := buildNode(n, attrs, a.warnFn())
	if !statuscode.IsGood(status) {
		return nil, status
	}

	node.References = append(node.References, nodeset.Reference{
		TypeID:    refToParentTypeID,
		IsInverse: true,
		Target:    ua.ExpandedNodeID{NodeID: parentID},
	})
	if typeDefinitionID != nil {
		node.References = append(node.References, nodeset.Reference{
			TypeID:    ua.NewNumericNodeID(0, nodeset.RefHasTypeDefinition),
			IsInverse: false,
			Target:    ua.ExpandedNodeID{NodeID: typeDefinitionID},
		})
	}

	if err := a.Store.Append(node); err != nil {
		return nil, statuscode.BadNodeIDExists
	}
	parent.References = append(parent.References, nodeset.Reference{
		TypeID:    refToParentTypeID,
		IsInverse: false,
		Target:    ua.ExpandedNodeID{NodeID: id},
	})

	a.logNodeChange(NodeChangeOp{Added: true, NodeID: id})
	return id, statuscode.Good
}

func (a *Access) warnFn() func(string) {
	return func(msg string) { a.warn(msg, zap.String("op", "AddNode")) }
}

// Node0Builder carries the NodeId/class/browse name shared by every
// NodeClass AddNode constructs.
type Node0Builder struct {
	ID         *ua.NodeID
	Class      nodeset.NodeClass
	BrowseName ua.QualifiedName
}

func buildNode(b *Node0Builder, attrs *NodeAttributes, warn func(string)) (*nodeset.Node, ua.StatusCode) {
	if attrs.Specified.has(SpecWriteMask) || attrs.Specified.has(SpecUserWriteMask) ||
		attrs.Specified.has(SpecUserAccessLevel) || attrs.Specified.has(SpecHistorizing) ||
		attrs.Specified.has(SpecUserExecutable) {
		return nil, statuscode.BadNodeAttributesInvalid
	}

	n := &nodeset.Node{NodeID: b.ID, Class: b.Class, BrowseName: b.BrowseName}
	if attrs.Specified.has(SpecDisplayName) {
		n.DisplayName = attrs.DisplayName
	} else {
		n.DisplayName = valuemodel.LocalizedText{Text: b.BrowseName.Name}
	}
	if attrs.Specified.has(SpecDescription) {
		n.Description = attrs.Description
	}

	switch b.Class {
	case nodeset.ClassVariable:
		va := &nodeset.VariableAttrs{}
		if attrs.Specified.has(SpecValue) {
			va.Value = attrs.Value
		} else {
			va.Value = valuemodel.NewGood(valuemodel.NewScalar(valuemodel.TypeBoolean, false))
			va.Value.Status = statuscode.UncertainInitialValue
		}
		if attrs.Specified.has(SpecDataType) {
			va.DataType = attrs.DataType
		} else {
			va.DataType = ua.NewNumericNodeID(0, valuemodel.DataTypeBaseDataType)
		}
		if attrs.Specified.has(SpecValueRank) {
			va.ValueRank = attrs.ValueRank
		} else {
			va.ValueRank = nodeset.RankAny
		}
		if attrs.Specified.has(SpecArrayDimensions) {
			if len(attrs.ArrayDimensions) == 0 {
				return nil, statuscode.BadNodeAttributesInvalid
			}
			va.ArrayDimensions = attrs.ArrayDimensions
		}
		if attrs.Specified.has(SpecAccessLevel) {
			va.AccessLevel = attrs.AccessLevel
		} else {
			va.AccessLevel = nodeset.AccessCurrentRead
		}
		if attrs.Specified.has(SpecMinimumSamplingInterval) && warn != nil {
			warn("MinimumSamplingInterval specified but ignored")
		}
		n.Variable = va
	case nodeset.ClassObject:
		oa := &nodeset.ObjectAttrs{}
		if attrs.Specified.has(SpecEventNotifier) {
			oa.EventNotifier = attrs.EventNotifier
		}
		n.Object = oa
	case nodeset.ClassMethod:
		ma := &nodeset.MethodAttrs{}
		if attrs.Specified.has(SpecExecutable) {
			ma.Executable = attrs.Executable
		}
		n.Method = ma
	default:
		return nil, statuscode.BadNodeAttributesInvalid
	}
	return n, statuscode.Good
}

// checkReferenceToParent implements spec §4.3 check_constraints' structural
// rules for the parent reference.
func checkReferenceToParent(store *nodeset.Store, parent *nodeset.Node, refTypeID *ua.NodeID, childClass nodeset.NodeClass, typeDefinitionID *ua.NodeID) ua.StatusCode {
	_, isNS0 := numericRefID(refTypeID)

	isOrganizes := isNS0 && store.IsTypeOrSubtype(refTypeID, ua.NewNumericNodeID(0, nodeset.RefOrganizes), nil)
	isHasComponent := isNS0 && store.IsTypeOrSubtype(refTypeID, ua.NewNumericNodeID(0, nodeset.RefHasComponent), nil)
	isHasProperty := isNS0 && store.IsTypeOrSubtype(refTypeID, ua.NewNumericNodeID(0, nodeset.RefHasProperty), nil)
	isAggregates := isNS0 && store.IsTypeOrSubtype(refTypeID, ua.NewNumericNodeID(0, nodeset.RefAggregates), nil)

	switch {
	case isOrganizes:
		switch parent.Class {
		case nodeset.ClassObject, nodeset.ClassObjectType, nodeset.ClassView:
		default:
			return statuscode.BadParentNodeIDInvalid
		}
	case isHasComponent:
		switch childClass {
		case nodeset.ClassObject, nodeset.ClassMethod:
			switch parent.Class {
			case nodeset.ClassObject, nodeset.ClassObjectType:
			default:
				return statuscode.BadParentNodeIDInvalid
			}
		case nodeset.ClassVariable:
			if typeDefinitionID != nil && !store.IsTypeOrSubtype(typeDefinitionID, ua.NewNumericNodeID(0, nodeset.VarTypeBaseDataVariableType), nil) {
				return statuscode.BadTypeDefinitionInvalid
			}
			if parent.Variable != nil && !store.IsTypeOrSubtype(parent.Variable.DataType, ua.NewNumericNodeID(0, nodeset.VarTypeBaseDataVariableType), nil) {
				return statuscode.BadParentNodeIDInvalid
			}
			switch parent.Class {
			case nodeset.ClassObject, nodeset.ClassObjectType, nodeset.ClassVariableType, nodeset.ClassVariable:
			default:
				return statuscode.BadParentNodeIDInvalid
			}
		}
	case isHasProperty:
		if childClass != nodeset.ClassVariable {
			return statuscode.BadReferenceNotAllowed
		}
		if parent.Variable != nil && store.IsTypeOrSubtype(parent.Variable.DataType, ua.NewNumericNodeID(0, nodeset.VarTypePropertyType), nil) {
			return statuscode.BadParentNodeIDInvalid
		}
		if typeDefinitionID != nil && !store.IsTypeOrSubtype(typeDefinitionID, ua.NewNumericNodeID(0, nodeset.VarTypePropertyType), nil) {
			return statuscode.BadTypeDefinitionInvalid
		}
	case isAggregates:
		// A Method's reference to its parent must be HasComponent-or-subtype
		// specifically; plain Aggregates (e.g. HasHistoricalConfiguration)
		// isn't enough.
		if childClass == nodeset.ClassMethod {
			return statuscode.BadReferenceNotAllowed
		}
	case childClass == nodeset.ClassMethod:
		return statuscode.BadReferenceNotAllowed
	default:
		return statuscode.BadReferenceNotAllowed
	}
	return statuscode.Good
}

func numericRefID(id *ua.NodeID) (uint32, bool) {
	if id == nil || id.Namespace() != 0 {
		return 0, false
	}
	return id.IntID(), true
}

func checkBrowseNameUnique(store *nodeset.Store, parent *nodeset.Node, name ua.QualifiedName) ua.StatusCode {
	for _, ref := range parent.References {
		if ref.IsInverse || !ref.IsLocal() {
			continue
		}
		if !store.IsTypeOrSubtype(ref.TypeID, ua.NewNumericNodeID(0, nodeset.RefHierarchicalReferences), nil) {
			continue
		}
		target := store.Get(ref.Target.NodeID)
		if target != nil && target.BrowseName.NamespaceIndex == name.NamespaceIndex && target.BrowseName.Name == name.Name {
			return statuscode.BadBrowseNameDuplicated
		}
	}
	return statuscode.Good
}
