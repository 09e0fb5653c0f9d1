// Package eventtype is the static event-type tree (spec §4.5/§9
// supplemented feature): the small, closed set of standard OPC UA event
// types this core recognises, each with its field browse paths and
// declared (DataType, ValueRank), lazily built once per endpoint.
package eventtype

import (
	"strings"
	"sync"

	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// FieldInfo is what InitEventFilter needs to validate a select clause's
// index range against a field (spec §4.5).
type FieldInfo struct {
	DataType  uint32
	ValueRank int32
}

type typeEntry struct {
	parent uint32 // 0 for BaseEventType itself
	fields map[string]FieldInfo
}

// Registry is the per-endpoint event-type table (spec §4.5 "end-point type
// table must be initialised, lazily, once per endpoint").
type Registry struct {
	once  sync.Once
	types map[uint32]typeEntry
}

// NewRegistry returns an uninitialised Registry; EnsureInit populates it on
// first use.
func NewRegistry() *Registry { return &Registry{} }

// EnsureInit lazily builds the static table (safe to call repeatedly/
// concurrently; only the first call does work).
func (r *Registry) EnsureInit() {
	r.once.Do(r.populate)
}

func (r *Registry) populate() {
	r.types = map[uint32]typeEntry{
		nodeset.ObjTypeBaseEventType: {
			fields: map[string]FieldInfo{
				"EventId":     {DataType: valuemodel.DataTypeByteString, ValueRank: nodeset.RankScalar},
				"EventType":   {DataType: valuemodel.DataTypeNodeID, ValueRank: nodeset.RankScalar},
				"SourceNode":  {DataType: valuemodel.DataTypeNodeID, ValueRank: nodeset.RankScalar},
				"SourceName":  {DataType: valuemodel.DataTypeString, ValueRank: nodeset.RankScalar},
				"Time":        {DataType: valuemodel.DataTypeDateTime, ValueRank: nodeset.RankScalar},
				"ReceiveTime": {DataType: valuemodel.DataTypeDateTime, ValueRank: nodeset.RankScalar},
				"Message":     {DataType: valuemodel.DataTypeLocalizedText, ValueRank: nodeset.RankScalar},
				"Severity":    {DataType: valuemodel.DataTypeUInt16, ValueRank: nodeset.RankScalar},
			},
		},
		nodeset.ObjTypeEventQueueOverflowEventType: {parent: nodeset.ObjTypeBaseEventType},
	}
}

// Contains reports whether typeID (a namespace-0 event type) is known.
func (r *Registry) Contains(typeID *ua.NodeID) bool {
	r.EnsureInit()
	num, ok := ns0ID(typeID)
	if !ok {
		return false
	}
	_, known := r.types[num]
	return known
}

// Field looks up the declared (DataType, ValueRank) of a dotted browse path
// on typeID, walking up to its parent type when the field isn't declared
// directly (spec §4.5: fields are inherited from BaseEventType).
func (r *Registry) Field(typeID *ua.NodeID, path []string) (FieldInfo, bool) {
	r.EnsureInit()
	num, ok := ns0ID(typeID)
	if !ok {
		return FieldInfo{}, false
	}
	key := strings.Join(path, "/")
	for {
		entry, known := r.types[num]
		if !known {
			return FieldInfo{}, false
		}
		if fi, ok := entry.fields[key]; ok {
			return fi, true
		}
		if entry.parent == 0 {
			return FieldInfo{}, false
		}
		num = entry.parent
	}
}

func ns0ID(id *ua.NodeID) (uint32, bool) {
	if id == nil || id.Namespace() != 0 {
		return 0, false
	}
	return id.IntID(), true
}

// StoreInstanceType resolves the TypeDefinition of a would-be event source
// node via the address space (convenience for callers validating a sample
// instance per spec §4.5 "a sample event instance of the declared type").
func StoreInstanceType(store *nodeset.Store, sourceNode *ua.NodeID) *ua.NodeID {
	n := store.Get(sourceNode)
	if n == nil {
		return nil
	}
	return store.GetTypeDefinition(n)
}
