package nodeset

import "github.com/gopcua/opcua/ua"

// Well-known namespace-0 ReferenceType NodeIds (Part 6 Table, stable across
// the standard nodeset).
const (
	RefReferences             uint32 = 31
	RefNonHierarchicalReferences uint32 = 32
	RefHierarchicalReferences uint32 = 33
	RefHasChild               uint32 = 34
	RefOrganizes              uint32 = 35
	RefHasEventSource         uint32 = 36
	RefHasModellingRule       uint32 = 37
	RefHasEncoding            uint32 = 38
	RefHasDescription         uint32 = 39
	RefHasTypeDefinition      uint32 = 40
	RefGeneratesEvent         uint32 = 41
	RefAggregates             uint32 = 44
	RefHasSubtype             uint32 = 45
	RefHasProperty            uint32 = 46
	RefHasComponent           uint32 = 47
	RefHasNotifier            uint32 = 48
	RefHasOrderedComponent    uint32 = 49
)

// Well-known namespace-0 ObjectType/VariableType NodeIds used by this core.
const (
	ObjTypeBaseObjectType           uint32 = 58
	ObjTypeFolderType               uint32 = 61
	VarTypeBaseVariableType         uint32 = 62
	VarTypeBaseDataVariableType     uint32 = 63
	VarTypePropertyType             uint32 = 68
	ObjTypeBaseEventType            uint32 = 2041
	ObjTypeEventQueueOverflowEventType uint32 = 3035
	ObjectServer                    uint32 = 2253
	ObjectRootFolder                uint32 = 84
	ObjectObjectsFolder             uint32 = 85
	ObjectTypesFolder               uint32 = 86
)

// StaticSubtypeEntry is one row of the pre-extracted HasSubtypeBackward
// table (spec §6): for a standard-namespace NodeId, its NodeClass and
// (if any) the NodeId it is a direct subtype of.
type StaticSubtypeEntry struct {
	NodeClass     NodeClass
	HasSubtype    bool
	SubtypeNodeID uint32
}

// staticSubtypeTable is the constant-time backward-subtype table for
// namespace 0 reference types (spec §4.2/§6). Generated offline in the
// source repo; here it is a small hand-maintained literal covering the
// reference types this core structurally recognises plus their common
// ancestor Aggregates/HasChild/References chain.
var staticSubtypeTable = map[uint32]StaticSubtypeEntry{
	RefReferences:                {NodeClass: ClassReferenceType},
	RefHierarchicalReferences:    {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefReferences},
	RefNonHierarchicalReferences: {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefReferences},
	RefHasChild:                  {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefHierarchicalReferences},
	RefOrganizes:                 {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefHierarchicalReferences},
	RefHasEventSource:            {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefHierarchicalReferences},
	RefHasNotifier:               {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefHasEventSource},
	RefAggregates:                {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefHasChild},
	RefHasComponent:              {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefAggregates},
	RefHasOrderedComponent:       {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefHasComponent},
	RefHasProperty:               {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefAggregates},
	RefHasSubtype:                {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefHierarchicalReferences},
	RefHasModellingRule:          {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefNonHierarchicalReferences},
	RefHasEncoding:               {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefNonHierarchicalReferences},
	RefHasDescription:            {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefNonHierarchicalReferences},
	RefHasTypeDefinition:         {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefNonHierarchicalReferences},
	RefGeneratesEvent:            {NodeClass: ClassReferenceType, HasSubtype: true, SubtypeNodeID: RefNonHierarchicalReferences},
}

func numericID(id *ua.NodeID) (uint32, bool) {
	if id == nil || id.Namespace() != 0 {
		return 0, false
	}
	return id.IntID(), true
}
