package eventtype

import (
	"testing"

	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systerel/opcua-addrspace-core/nodeset"
)

func TestRegistryContainsKnownTypes(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Contains(ua.NewNumericNodeID(0, nodeset.ObjTypeBaseEventType)))
	assert.True(t, r.Contains(ua.NewNumericNodeID(0, nodeset.ObjTypeEventQueueOverflowEventType)))
	assert.False(t, r.Contains(ua.NewNumericNodeID(0, 999999)))
	assert.False(t, r.Contains(ua.NewNumericNodeID(1, nodeset.ObjTypeBaseEventType)))
}

func TestRegistryFieldDirectAndInherited(t *testing.T) {
	r := NewRegistry()
	fi, ok := r.Field(ua.NewNumericNodeID(0, nodeset.ObjTypeBaseEventType), []string{"Severity"})
	require.True(t, ok)
	assert.Equal(t, nodeset.RankScalar, fi.ValueRank)

	fi, ok = r.Field(ua.NewNumericNodeID(0, nodeset.ObjTypeEventQueueOverflowEventType), []string{"Message"})
	require.True(t, ok, "subtype must inherit BaseEventType fields")
	assert.Equal(t, fi, mustField(t, r, nodeset.ObjTypeBaseEventType, "Message"))

	_, ok = r.Field(ua.NewNumericNodeID(0, nodeset.ObjTypeBaseEventType), []string{"NoSuchField"})
	assert.False(t, ok)
}

func mustField(t *testing.T, r *Registry, typeNum uint32, path string) FieldInfo {
	t.Helper()
	fi, ok := r.Field(ua.NewNumericNodeID(0, typeNum), []string{path})
	require.True(t, ok)
	return fi
}

func TestStoreInstanceType(t *testing.T) {
	store := nodeset.NewStore()
	eventTypeID := ua.NewNumericNodeID(0, nodeset.ObjTypeEventQueueOverflowEventType)
	src := &nodeset.Node{
		NodeID: ua.NewNumericNodeID(1, 1),
		Class:  nodeset.ClassObject,
		Object: &nodeset.ObjectAttrs{},
	}
	require.NoError(t, store.Append(src))
	src.References = append(src.References, nodeset.Reference{
		TypeID:   ua.NewNumericNodeID(0, nodeset.RefHasTypeDefinition),
		Target:   ua.ExpandedNodeID{NodeID: eventTypeID},
	})

	got := StoreInstanceType(store, src.NodeID)
	require.NotNil(t, got)
	assert.Equal(t, eventTypeID.String(), got.String())

	assert.Nil(t, StoreInstanceType(store, ua.NewNumericNodeID(9, 9)))
}
