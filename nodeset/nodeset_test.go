package nodeset

import (
	"testing"

	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(typeID *ua.NodeID, inverse bool, target *ua.NodeID) Reference {
	return Reference{
		TypeID:    typeID,
		IsInverse: inverse,
		Target:    ua.ExpandedNodeID{NodeID: target},
	}
}

func numRef(ns uint16, id uint32) *ua.NodeID { return ua.NewNumericNodeID(ns, id) }

func TestStoreAppendGetRemove(t *testing.T) {
	s := NewStore()
	n := &Node{NodeID: numRef(1, 100), Class: ClassObject}
	require.NoError(t, s.Append(n))
	assert.Error(t, s.Append(n), "duplicate NodeId must be rejected")

	got := s.Get(numRef(1, 100))
	require.NotNil(t, got)
	assert.Equal(t, n, got)

	s.Remove(numRef(1, 100))
	assert.Nil(t, s.Get(numRef(1, 100)))
}

func TestStoreFreshNodeIDAvoidsCollision(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Append(&Node{NodeID: numRef(1, 1), Class: ClassObject}))
	require.NoError(t, s.Append(&Node{NodeID: numRef(1, 2), Class: ClassObject}))

	fresh := s.FreshNodeID(1)
	assert.NotEqual(t, "ns=1;i=1", fresh.String())
	assert.NotEqual(t, "ns=1;i=2", fresh.String())
	assert.Nil(t, s.Get(fresh))
}

func TestStoreReadOnlyBlocksWrites(t *testing.T) {
	s := NewStore()
	s.AreReadOnlyNodes = true
	n := &Node{
		NodeID:   numRef(1, 1),
		Class:    ClassVariable,
		Variable: &VariableAttrs{Value: nil},
	}
	assert.False(t, s.SetStatusCode(n, ua.StatusOK))
}

func buildSubtypeGraph(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	// Root --Organizes--> Child, plus a ReferenceType subtype chain outside
	// the static table (ns=2) that must fall back to the dynamic walk.
	root := &Node{NodeID: numRef(0, 84), Class: ClassObject}
	child := &Node{NodeID: numRef(0, 85), Class: ClassObject}
	root.References = append(root.References, ref(numRef(0, RefOrganizes), false, child.NodeID))
	child.References = append(child.References, ref(numRef(0, RefOrganizes), true, root.NodeID))

	customRef := &Node{NodeID: numRef(2, 1000), Class: ClassReferenceType}
	customRef.References = append(customRef.References, ref(numRef(0, RefHasSubtype), true, numRef(0, RefHasChild)))

	require.NoError(t, s.Append(root))
	require.NoError(t, s.Append(child))
	require.NoError(t, s.Append(customRef))
	return s
}

func TestIsTypeOrSubtypeStaticTable(t *testing.T) {
	s := NewStore()
	assert.True(t, s.IsTypeOrSubtype(numRef(0, RefHasComponent), numRef(0, RefReferences), nil))
	assert.True(t, s.IsTypeOrSubtype(numRef(0, RefHasComponent), numRef(0, RefAggregates), nil))
	assert.False(t, s.IsTypeOrSubtype(numRef(0, RefHasProperty), numRef(0, RefHasComponent), nil))
	assert.True(t, s.IsTypeOrSubtype(numRef(0, RefReferences), numRef(0, RefReferences), nil))
}

func TestIsTypeOrSubtypeDynamicWalkAndCache(t *testing.T) {
	s := buildSubtypeGraph(t)
	cache := NewSubtypeCache(16)

	assert.True(t, s.IsTypeOrSubtype(numRef(2, 1000), numRef(0, RefHasChild), cache))
	assert.True(t, s.IsTypeOrSubtype(numRef(2, 1000), numRef(0, RefReferences), cache))
	assert.False(t, s.IsTypeOrSubtype(numRef(2, 1000), numRef(0, RefHasProperty), cache))
}

func TestIsTypeOrSubtypeRespectsConfiguredRecursionLimit(t *testing.T) {
	s := NewStore()
	// A --HasSubtype(inverse)--> B --HasSubtype(inverse)--> HasChild: two
	// hops away from the ns=0 static table.
	a := &Node{NodeID: numRef(2, 2000), Class: ClassReferenceType}
	b := &Node{NodeID: numRef(2, 2001), Class: ClassReferenceType}
	a.References = append(a.References, ref(numRef(0, RefHasSubtype), true, b.NodeID))
	b.References = append(b.References, ref(numRef(0, RefHasSubtype), true, numRef(0, RefHasChild)))
	require.NoError(t, s.Append(a))
	require.NoError(t, s.Append(b))

	assert.True(t, s.IsTypeOrSubtype(a.NodeID, numRef(0, RefHasChild), nil), "default RecursionLimit must reach a two-hop subtype")

	s.RecursionLimit = 1
	assert.False(t, s.IsTypeOrSubtype(a.NodeID, numRef(0, RefHasChild), nil), "a RecursionLimit of 1 must not reach a two-hop subtype")
}

func TestGetDirectParentType(t *testing.T) {
	s := buildSubtypeGraph(t)
	parent := s.GetDirectParentType(numRef(2, 1000))
	require.NotNil(t, parent)
	assert.Equal(t, numRef(0, RefHasChild).String(), parent.String())
}

func TestIsValidReferenceTypeID(t *testing.T) {
	s := NewStore()
	assert.True(t, s.IsValidReferenceTypeID(numRef(0, RefOrganizes)))
	assert.False(t, s.IsValidReferenceTypeID(numRef(0, ObjectRootFolder)))
}

func TestGetTypeDefinition(t *testing.T) {
	s := NewStore()
	varNode := &Node{NodeID: numRef(1, 1), Class: ClassVariable}
	varType := &Node{NodeID: numRef(0, VarTypeBaseDataVariableType), Class: ClassVariableType}
	varNode.References = append(varNode.References, ref(numRef(0, RefHasTypeDefinition), false, varType.NodeID))
	require.NoError(t, s.Append(varNode))
	require.NoError(t, s.Append(varType))

	got := s.GetTypeDefinition(varNode)
	require.NotNil(t, got)
	assert.Equal(t, varType.NodeID.String(), got.String())
}

func TestGetEncodingDataTypeAndDefaultBinary(t *testing.T) {
	s := NewStore()
	dt := &Node{NodeID: numRef(1, 10), Class: ClassDataType}
	enc := &Node{
		NodeID:     numRef(1, 11),
		Class:      ClassObject,
		BrowseName: ua.QualifiedName{NamespaceIndex: 0, Name: "Default Binary"},
	}
	dt.References = append(dt.References, ref(numRef(0, RefHasEncoding), false, enc.NodeID))
	enc.References = append(enc.References, ref(numRef(0, RefHasEncoding), true, dt.NodeID))

	require.NoError(t, s.Append(dt))
	require.NoError(t, s.Append(enc))

	gotDT := s.GetEncodingDataType(enc.NodeID)
	require.NotNil(t, gotDT)
	assert.Equal(t, dt.NodeID.String(), gotDT.String())

	assert.Equal(t, dt.NodeID.String(), s.GetEncodingDataType(dt.NodeID).String())

	gotEnc := s.GetDataTypeDefaultBinaryEncoding(dt.NodeID)
	require.NotNil(t, gotEnc)
	assert.Equal(t, enc.NodeID.String(), gotEnc.String())
}
