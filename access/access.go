package access

import (
	"time"

	"github.com/gopcua/opcua/ua"
	"go.uber.org/zap"

	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/rangeexpr"
	"github.com/systerel/opcua-addrspace-core/statuscode"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// WriteOp records a single attribute write for later notification (spec
// §4.3 "GetOperations / Delete").
type WriteOp struct {
	NodeID *ua.NodeID
	AttrID AttributeID
	Old    *valuemodel.DataValue
	New    *valuemodel.DataValue
}

// NodeChangeOp records a structural mutation (AddNode/DeleteNode).
type NodeChangeOp struct {
	Added  bool
	NodeID *ua.NodeID
}

// Operation is either a WriteOp or a NodeChangeOp.
type Operation struct {
	Write       *WriteOp
	NodeChange  *NodeChangeOp
}

// Access is a handle created per service execution or per method
// invocation (spec §4.3): a mutable borrow of the address space plus, when
// recording, a FIFO log of the operations it performed.
type Access struct {
	Store *nodeset.Store

	// SupportedLocales gates LocalizedText writes (nil/empty accepts all).
	SupportedLocales []string

	// Logger receives non-fatal warnings (e.g. an ignored
	// MinimumSamplingInterval on AddNode). May be left nil.
	Logger *zap.Logger

	record bool
	ops    []Operation
}

// New returns an Access over store. When record is true, mutating
// operations are appended to an internal log retrievable via
// DetachOperations.
func New(store *nodeset.Store, record bool) *Access {
	return &Access{Store: store, record: record}
}

func (a *Access) warn(msg string, fields ...zap.Field) {
	if a.Logger != nil {
		a.Logger.Warn(msg, fields...)
	}
}

func (a *Access) logWrite(op WriteOp) {
	if a.record {
		a.ops = append(a.ops, Operation{Write: &op})
	}
}

func (a *Access) logNodeChange(op NodeChangeOp) {
	if a.record {
		a.ops = append(a.ops, Operation{NodeChange: &op})
	}
}

// DetachOperations removes and returns the recorded operations, leaving the
// log empty (spec §4.3 "GetOperations", single-use).
func (a *Access) DetachOperations() []Operation {
	out := a.ops
	a.ops = nil
	return out
}

// supportedAttrs lists, per NodeClass, which attributes ReadAttribute knows
// how to serve (spec §4.3).
func supportedAttrs(class nodeset.NodeClass, attr AttributeID) bool {
	switch attr {
	case AttrNodeID, AttrNodeClass, AttrBrowseName, AttrDisplayName, AttrDescription,
		AttrWriteMask, AttrUserWriteMask:
		return true
	}
	switch class {
	case nodeset.ClassObjectType, nodeset.ClassVariableType, nodeset.ClassReferenceType, nodeset.ClassDataType:
		if attr == AttrIsAbstract {
			return true
		}
	}
	switch class {
	case nodeset.ClassVariable, nodeset.ClassVariableType:
		switch attr {
		case AttrValue, AttrDataType, AttrValueRank, AttrArrayDimensions:
			return true
		}
		if class == nodeset.ClassVariable && attr == AttrAccessLevel {
			return true
		}
	}
	if class == nodeset.ClassMethod && attr == AttrExecutable {
		return true
	}
	return false
}

// ReadAttribute returns a deep copy of the requested attribute's value
// (spec §4.3).
func (a *Access) ReadAttribute(id *ua.NodeID, attr AttributeID) (*valuemodel.Variant, ua.StatusCode) {
	if id == nil {
		return nil, statuscode.BadInvalidArgument
	}
	n := a.Store.Get(id)
	if n == nil {
		return nil, statuscode.BadNodeIDUnknown
	}
	switch attr {
	case AttrContainsNoLoops, AttrInverseName, AttrSymmetric, AttrEventNotifier,
		AttrMinimumSamplingInterval, AttrHistorizing, AttrUserAccessLevel, AttrUserExecutable:
		return nil, statuscode.BadNotImplemented
	}
	if !supportedAttrs(n.Class, attr) {
		return nil, statuscode.BadAttributeIDInvalid
	}
	switch attr {
	case AttrNodeID:
		return valuemodel.NewScalar(valuemodel.TypeNodeID, n.NodeID), statuscode.Good
	case AttrNodeClass:
		return valuemodel.NewScalar(valuemodel.TypeInt32, int32(n.Class)), statuscode.Good
	case AttrBrowseName:
		return valuemodel.NewScalar(valuemodel.TypeQualifiedName, n.BrowseName), statuscode.Good
	case AttrDisplayName:
		return valuemodel.NewScalar(valuemodel.TypeLocalizedText, n.DisplayName), statuscode.Good
	case AttrDescription:
		return valuemodel.NewScalar(valuemodel.TypeLocalizedText, n.Description), statuscode.Good
	case AttrWriteMask:
		return valuemodel.NewScalar(valuemodel.TypeUInt32, n.WriteMask), statuscode.Good
	case AttrUserWriteMask:
		return valuemodel.NewScalar(valuemodel.TypeUInt32, n.UserWriteMask), statuscode.Good
	case AttrIsAbstract:
		return valuemodel.NewScalar(valuemodel.TypeBoolean, isAbstract(n)), statuscode.Good
	case AttrExecutable:
		if n.Method == nil {
			return nil, statuscode.BadAttributeIDInvalid
		}
		return valuemodel.NewScalar(valuemodel.TypeBoolean, n.Method.Executable), statuscode.Good
	case AttrValue:
		v, status := variableOrTypeValue(n)
		if !statuscode.IsGood(status) {
			return nil, status
		}
		return v.Copy(), statuscode.Good
	case AttrDataType:
		dt := variableDataType(n)
		if dt == nil {
			return nil, statuscode.BadAttributeIDInvalid
		}
		return valuemodel.NewScalar(valuemodel.TypeNodeID, dt), statuscode.Good
	case AttrValueRank:
		rank, ok := variableValueRank(n)
		if !ok {
			return nil, statuscode.BadAttributeIDInvalid
		}
		return valuemodel.NewScalar(valuemodel.TypeInt32, rank), statuscode.Good
	case AttrArrayDimensions:
		rank, ok := variableValueRank(n)
		if !ok {
			return nil, statuscode.BadAttributeIDInvalid
		}
		if rank <= 0 {
			return nil, statuscode.Good
		}
		return valuemodel.NewArray(valuemodel.TypeUInt32, make([]any, rank)), statuscode.Good
	case AttrAccessLevel:
		if n.Variable == nil {
			return nil, statuscode.BadAttributeIDInvalid
		}
		level := n.Variable.AccessLevel
		if a.Store.AreReadOnlyNodes {
			level &^= nodeset.AccessStatusWrite | nodeset.AccessTimestampWrite
		}
		return valuemodel.NewScalar(valuemodel.TypeByte, level), statuscode.Good
	}
	return nil, statuscode.BadAttributeIDInvalid
}

func isAbstract(n *nodeset.Node) bool {
	switch {
	case n.ObjectType != nil:
		return n.ObjectType.IsAbstract
	case n.VariableType != nil:
		return n.VariableType.IsAbstract
	case n.ReferenceType != nil:
		return n.ReferenceType.IsAbstract
	case n.DataType != nil:
		return n.DataType.IsAbstract
	default:
		return false
	}
}

func variableDataType(n *nodeset.Node) *ua.NodeID {
	switch {
	case n.Variable != nil:
		return n.Variable.DataType
	case n.VariableType != nil:
		return n.VariableType.DataType
	default:
		return nil
	}
}

func variableValueRank(n *nodeset.Node) (int32, bool) {
	switch {
	case n.Variable != nil:
		return n.Variable.ValueRank, true
	case n.VariableType != nil:
		return n.VariableType.ValueRank, true
	default:
		return 0, false
	}
}

func variableOrTypeValue(n *nodeset.Node) (*valuemodel.Variant, ua.StatusCode) {
	switch {
	case n.Variable != nil:
		if n.Variable.Value == nil {
			return nil, statuscode.BadAttributeIDInvalid
		}
		return n.Variable.Value.Value, statuscode.Good
	case n.VariableType != nil:
		return n.VariableType.Value, statuscode.Good
	default:
		return nil, statuscode.BadAttributeIDInvalid
	}
}

// ReadValue returns a DataValue copy of a Variable's stored value, honouring
// an optional NumericRange (spec §4.3).
func (a *Access) ReadValue(id *ua.NodeID, rangeStr string, ttr TimestampsToReturn) (*valuemodel.DataValue, ua.StatusCode) {
	n := a.Store.Get(id)
	if n == nil {
		return nil, statuscode.BadNodeIDUnknown
	}
	if n.Variable == nil || n.Variable.Value == nil {
		return nil, statuscode.BadAttributeIDInvalid
	}
	dv := n.Variable.Value.Copy()
	if rangeStr != "" {
		r, err := rangeexpr.Parse(rangeStr)
		if err != nil {
			return nil, statuscode.BadIndexRangeInvalid
		}
		switch valuemodel.HasRange(dv.Value, r, false) {
		case valuemodel.RangeInvalid:
			return nil, statuscode.BadIndexRangeInvalid
		case valuemodel.RangeNoData:
			return nil, statuscode.BadIndexRangeNoData
		}
		sub, err := valuemodel.GetRange(dv.Value, r)
		if err != nil {
			return nil, statuscode.BadIndexRangeNoData
		}
		dv.Value = sub
	}
	ttr.Apply(dv)
	return dv, statuscode.Good
}

// WriteValue mutates a Variable's value, optional status, optional source
// timestamp and, if it fails partway, rolls the previous values back (spec
// §4.3).
func (a *Access) WriteValue(id *ua.NodeID, optStatus *ua.StatusCode, optSourceTS *time.Time, optPicos *uint16, rangeStr string, newValue *valuemodel.Variant) ua.StatusCode {
	n := a.Store.Get(id)
	if n == nil {
		return statuscode.BadNodeIDUnknown
	}
	if n.Variable == nil || n.Variable.Value == nil {
		return statuscode.BadAttributeIDInvalid
	}
	dv := n.Variable.Value
	oldCopy := dv.Copy()

	if optStatus != nil {
		if !a.Store.SetStatusCode(n, *optStatus) {
			return statuscode.BadWriteNotSupported
		}
	}
	if optSourceTS != nil {
		ts := *optSourceTS
		picos := uint16(0)
		if optPicos != nil {
			picos = *optPicos
		}
		if ts.IsZero() && picos == 0 {
			ts = time.Now().UTC()
		}
		if !a.Store.SetSourceTimestamp(n, ts, picos) {
			*dv = *oldCopy
			return statuscode.BadWriteNotSupported
		}
	}

	if status := a.writeValueBody(n, dv, rangeStr, newValue); !statuscode.IsGood(status) {
		*dv = *oldCopy
		return status
	}

	a.logWrite(WriteOp{NodeID: id, AttrID: AttrValue, Old: oldCopy, New: dv.Copy()})
	return statuscode.Good
}

func (a *Access) writeValueBody(n *nodeset.Node, dv *valuemodel.DataValue, rangeStr string, newValue *valuemodel.Variant) ua.StatusCode {
	if rangeStr == "" {
		if dv.Value != nil && dv.Value.Type() == valuemodel.TypeLocalizedText && newValue.Type() == valuemodel.TypeLocalizedText &&
			dv.Value.Shape() == newValue.Shape() {
			merged, ok := valuemodel.MergeLocalizedText(dv.Value, newValue, a.SupportedLocales)
			if !ok {
				return statuscode.BadLocaleNotSupported
			}
			dv.Value = merged
			return statuscode.Good
		}
		dv.Value = newValue
		return statuscode.Good
	}
	r, err := rangeexpr.Parse(rangeStr)
	if err != nil {
		return statuscode.BadIndexRangeInvalid
	}
	if valuemodel.HasRange(dv.Value, r, true) == valuemodel.RangeInvalid {
		return statuscode.BadIndexRangeInvalid
	}
	if err := valuemodel.SetRange(dv.Value, newValue, r); err != nil {
		return statuscode.BadIndexRangeNoData
	}
	return statuscode.Good
}
