package filter

import (
	"testing"

	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/eventtype"
	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/statuscode"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

func id(ns uint16, i uint32) *ua.NodeID { return ua.NewNumericNodeID(ns, i) }

func TestCheckDataChangeFilterAbsolute(t *testing.T) {
	s := nodeset.NewStore()
	n := &nodeset.Node{
		NodeID: id(1, 1),
		Class:  nodeset.ClassVariable,
		Variable: &nodeset.VariableAttrs{
			DataType: id(0, valuemodel.DataTypeDouble),
		},
	}
	require.NoError(t, s.Append(n))

	deadband, status := CheckDataChangeFilter(s, n, DeadbandAbsolute, 1.0)
	require.True(t, statuscode.IsGood(status))
	assert.Equal(t, 1.0, deadband)
}

func TestCheckDataChangeFilterAbsoluteRejectsNonNumeric(t *testing.T) {
	s := nodeset.NewStore()
	n := &nodeset.Node{
		NodeID:   id(1, 1),
		Class:    nodeset.ClassVariable,
		Variable: &nodeset.VariableAttrs{DataType: id(0, valuemodel.DataTypeString)},
	}
	require.NoError(t, s.Append(n))

	_, status := CheckDataChangeFilter(s, n, DeadbandAbsolute, 1.0)
	assert.Equal(t, statuscode.BadFilterNotAllowed, status)
}

func TestCheckDataChangeFilterPercent(t *testing.T) {
	s := nodeset.NewStore()
	euRange := &nodeset.Node{
		NodeID:     id(1, 2),
		Class:      nodeset.ClassVariable,
		BrowseName: ua.QualifiedName{NamespaceIndex: 0, Name: "EURange"},
		Variable: &nodeset.VariableAttrs{
			Value: valuemodel.NewGood(valuemodel.NewScalar(valuemodel.TypeExtensionObject, EURange{Low: 0, High: 200})),
		},
	}
	n := &nodeset.Node{
		NodeID:   id(1, 1),
		Class:    nodeset.ClassVariable,
		Variable: &nodeset.VariableAttrs{DataType: id(0, valuemodel.DataTypeDouble)},
	}
	n.References = append(n.References, nodeset.Reference{
		TypeID: id(0, nodeset.RefHasProperty), IsInverse: false, Target: ua.ExpandedNodeID{NodeID: euRange.NodeID},
	})
	require.NoError(t, s.Append(n))
	require.NoError(t, s.Append(euRange))

	deadband, status := CheckDataChangeFilter(s, n, DeadbandPercent, 5)
	require.True(t, statuscode.IsGood(status))
	assert.InDelta(t, 10.0, deadband, 0.0001)
}

func TestMayValueRankNDimensionsBeCompatible(t *testing.T) {
	assert.True(t, mayValueRankNDimensionsBeCompatible(0, nodeset.RankScalar, false))
	assert.False(t, mayValueRankNDimensionsBeCompatible(1, nodeset.RankScalar, false))
	assert.True(t, mayValueRankNDimensionsBeCompatible(2, 2, false))
	assert.True(t, mayValueRankNDimensionsBeCompatible(1, nodeset.RankScalarOrOneDimension, false))
	assert.True(t, mayValueRankNDimensionsBeCompatible(1, nodeset.RankScalar, true), "trailing bound on scalar string")
}

func TestInitEventFilterRejectsNonNotifyingSource(t *testing.T) {
	s := nodeset.NewStore()
	reg := eventtype.NewRegistry()
	n := &nodeset.Node{NodeID: id(1, 1), Class: nodeset.ClassObject, Object: &nodeset.ObjectAttrs{}}
	require.NoError(t, s.Append(n))

	_, _, status := InitEventFilter(s, reg, n, nil, nil)
	assert.Equal(t, statuscode.BadFilterNotAllowed, status)
}

func TestInitEventFilterSelectClauses(t *testing.T) {
	s := nodeset.NewStore()
	reg := eventtype.NewRegistry()
	n := &nodeset.Node{
		NodeID: id(1, 1),
		Class:  nodeset.ClassObject,
		Object: &nodeset.ObjectAttrs{EventNotifier: nodeset.EventNotifierSubscribeToEvents},
	}
	require.NoError(t, s.Append(n))

	selects := []SelectClause{
		{AttrID: access.AttrValue, BrowsePath: []string{"Message"}},
		{AttrID: access.AttrValue, BrowsePath: []string{"Bogus"}},
	}
	_, result, status := InitEventFilter(s, reg, n, selects, nil)
	assert.Equal(t, statuscode.BadMonitoredItemFilterUnsupported, status)
	require.Len(t, result.SelectResults, 2)
	assert.True(t, statuscode.IsGood(result.SelectResults[0]))
	assert.Equal(t, statuscode.BadNodeIDUnknown, result.SelectResults[1])
}

func TestInitEventFilterWhereClauseOfType(t *testing.T) {
	s := nodeset.NewStore()
	reg := eventtype.NewRegistry()
	n := &nodeset.Node{
		NodeID: id(1, 1),
		Class:  nodeset.ClassObject,
		Object: &nodeset.ObjectAttrs{EventNotifier: nodeset.EventNotifierSubscribeToEvents},
	}
	eventType := &nodeset.Node{NodeID: id(0, nodeset.ObjTypeBaseEventType), Class: nodeset.ClassObjectType, ObjectType: &nodeset.ObjectTypeAttrs{}}
	require.NoError(t, s.Append(n))
	require.NoError(t, s.Append(eventType))

	where := &WhereOperand{Operator: OperatorOfType, NodeIDValue: eventType.NodeID}
	typeID, result, status := InitEventFilter(s, reg, n, nil, where)
	require.True(t, statuscode.IsGood(status))
	require.NotNil(t, typeID)
	assert.Equal(t, eventType.NodeID.String(), typeID.String())
	assert.Empty(t, result.OperandStatusCodes)
}

func TestExtractFieldUnauthorized(t *testing.T) {
	s := nodeset.NewStore()
	ev := &EventInstance{TypeDefinitionID: id(0, nodeset.ObjTypeBaseEventType)}
	dv := ExtractField(s, ev, SelectClause{AttrID: access.AttrValue, BrowsePath: []string{"Message"}}, false, nil, access.TimestampsBoth)
	require.NotNil(t, dv)
	assert.Equal(t, statuscode.BadUserAccessDenied, dv.Status)
}

func TestExtractFieldNodeIDShortcut(t *testing.T) {
	s := nodeset.NewStore()
	src := id(1, 42)
	ev := &EventInstance{TypeDefinitionID: id(0, nodeset.ObjTypeBaseEventType), SourceNode: src}
	dv := ExtractField(s, ev, SelectClause{AttrID: access.AttrNodeID}, true, nil, access.TimestampsBoth)
	require.NotNil(t, dv)
	assert.Equal(t, src, dv.Value.ScalarValue())
}

func TestExtractFieldWrongTypeYieldsNil(t *testing.T) {
	s := nodeset.NewStore()
	otherType := id(1, 500)
	require.NoError(t, s.Append(&nodeset.Node{NodeID: otherType, Class: nodeset.ClassObjectType, ObjectType: &nodeset.ObjectTypeAttrs{}}))
	ev := &EventInstance{TypeDefinitionID: id(0, nodeset.ObjTypeBaseEventType)}
	dv := ExtractField(s, ev, SelectClause{AttrID: access.AttrValue, BrowsePath: []string{"Message"}, TypeDefinitionID: otherType}, true, nil, access.TimestampsBoth)
	assert.Nil(t, dv)
}
