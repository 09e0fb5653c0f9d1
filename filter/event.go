package filter

import (
	"strings"

	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/eventtype"
	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/rangeexpr"
	"github.com/systerel/opcua-addrspace-core/statuscode"
)

// SelectClause is one SimpleAttributeOperand of an EventFilter's select
// clause list (spec §4.5).
type SelectClause struct {
	TypeDefinitionID *ua.NodeID // nil means BaseEventType
	BrowsePath       []string
	AttrID           access.AttributeID
	IndexRange       string
}

// EventFilterResult mirrors Part 4 Table 119: per-clause select results and
// a where-clause OperandStatusCodes array, emptied when every operand
// evaluated Good.
type EventFilterResult struct {
	SelectResults      []ua.StatusCode
	OperandStatusCodes []ua.StatusCode
}

// InitEventFilter validates an EventFilter against sourceNode (spec §4.5).
// whereClauseTypeID is nil unless validation resolves an OfType operand.
func InitEventFilter(store *nodeset.Store, registry *eventtype.Registry, sourceNode *nodeset.Node, selects []SelectClause, whereOperand *WhereOperand) (whereClauseTypeID *ua.NodeID, result EventFilterResult, status ua.StatusCode) {
	notifier := byte(0)
	switch {
	case sourceNode.Object != nil:
		notifier = sourceNode.Object.EventNotifier
	case sourceNode.View != nil:
		notifier = sourceNode.View.EventNotifier
	}
	if notifier&nodeset.EventNotifierSubscribeToEvents == 0 {
		return nil, EventFilterResult{}, statuscode.BadFilterNotAllowed
	}
	registry.EnsureInit()

	result.SelectResults = make([]ua.StatusCode, len(selects))
	overall := statuscode.Good
	for i, sel := range selects {
		result.SelectResults[i] = validateSelectClause(registry, sel)
		if !statuscode.IsGood(result.SelectResults[i]) {
			overall = statuscode.BadMonitoredItemFilterUnsupported
		}
	}

	if whereOperand != nil {
		typeID, opStatus := validateWhereClause(store, whereOperand)
		result.OperandStatusCodes = []ua.StatusCode{opStatus}
		if statuscode.IsGood(opStatus) {
			result.OperandStatusCodes = nil
			whereClauseTypeID = typeID
		} else {
			overall = opStatus
		}
	}

	return whereClauseTypeID, result, overall
}

func validateSelectClause(registry *eventtype.Registry, sel SelectClause) ua.StatusCode {
	if sel.AttrID == access.AttrNodeID && len(sel.BrowsePath) == 0 {
		return statuscode.Good
	}
	if sel.AttrID != access.AttrValue {
		return statuscode.BadAttributeIDInvalid
	}

	typeID := sel.TypeDefinitionID
	if typeID == nil {
		typeID = ua.NewNumericNodeID(0, nodeset.ObjTypeBaseEventType)
	}
	if !isBaseEventType(typeID) && !registry.Contains(typeID) {
		return statuscode.BadTypeDefinitionInvalid
	}
	fi, known := registry.Field(typeID, sel.BrowsePath)
	if !known {
		return statuscode.BadNodeIDUnknown
	}

	if sel.IndexRange == "" {
		return statuscode.Good
	}
	r, err := rangeexpr.Parse(sel.IndexRange)
	if err != nil {
		return statuscode.BadIndexRangeInvalid
	}
	scalarStrBytes := fi.DataType == 12 || fi.DataType == 15 // String, ByteString
	if mayValueRankNDimensionsBeCompatible(r.Dimensions(), fi.ValueRank, scalarStrBytes) {
		return statuscode.Good
	}
	if fi.ValueRank == nodeset.RankScalar {
		return statuscode.BadTypeMismatch
	}
	return statuscode.BadIndexRangeInvalid
}

func isBaseEventType(id *ua.NodeID) bool {
	return id.Namespace() == 0 && id.IntID() == nodeset.ObjTypeBaseEventType
}

// mayValueRankNDimensionsBeCompatible implements spec §4.5's compatibility
// predicate between an index range's dimension count n and a field's
// declared ValueRank.
func mayValueRankNDimensionsBeCompatible(n int, rank int32, scalarStrBytes bool) bool {
	check := func(n int, rank int32) bool {
		switch {
		case rank > 0 && int32(n) == rank:
			return true
		case n > 0 && (rank == nodeset.RankOneOrMoreDimensions || rank == nodeset.RankAny):
			return true
		case rank == nodeset.RankScalarOrOneDimension && n == 1:
			return true
		case rank == nodeset.RankScalar && n == 0:
			return true
		default:
			return false
		}
	}
	if check(n, rank) {
		return true
	}
	return scalarStrBytes && n > 0 && check(n-1, rank)
}

// WhereOperator mirrors the single supported ContentFilter operator.
type WhereOperator int

const (
	OperatorOfType WhereOperator = iota
	OperatorOther
)

// WhereOperand is the single where-clause element's single operand (spec
// §4.5: "exactly one where-clause element supported ... operator must be
// OfType ... operand count must be 1").
type WhereOperand struct {
	Operator    WhereOperator
	OperandKind OperandKind
	NodeIDValue *ua.NodeID
}

// OperandKind distinguishes a literal NodeId operand from an
// AttributeOperand addressing AttributeId=NodeId with an empty path/range.
type OperandKind int

const (
	OperandLiteralNodeID OperandKind = iota
	OperandAttributeNodeID
)

func validateWhereClause(store *nodeset.Store, op *WhereOperand) (*ua.NodeID, ua.StatusCode) {
	if op.Operator != OperatorOfType {
		return nil, statuscode.BadMonitoredItemFilterUnsupported
	}
	if op.NodeIDValue == nil {
		return nil, statuscode.BadNodeIDInvalid
	}
	n := store.Get(op.NodeIDValue)
	if n == nil || n.Class != nodeset.ClassObjectType {
		return nil, statuscode.BadNodeIDInvalid
	}
	return op.NodeIDValue, statuscode.Good
}

func fieldKey(path []string) string { return strings.Join(path, "/") }
