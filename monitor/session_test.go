package monitor

import (
	"testing"

	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/dispatch"
	"github.com/systerel/opcua-addrspace-core/mistore"
	"github.com/systerel/opcua-addrspace-core/nodeset"
	"github.com/systerel/opcua-addrspace-core/statuscode"
)

func TestSessionAddCollectDeliver(t *testing.T) {
	store := nodeset.NewStore()
	miStore := mistore.NewStore()
	disp := dispatch.New(store, miStore, ua.NewNumericNodeID(0, 2253), 0)

	sess := NewSession(1, miStore, disp)
	nodeID := ua.NewNumericNodeID(1, 50)

	ids, statuses := sess.AddMonitoredItems(mistore.CreateParams{
		NodeID:       nodeID,
		AttrID:       access.AttrValue,
		Mode:         mistore.ModeReporting,
		ClientHandle: 7,
	})
	require.Len(t, ids, 1)
	require.True(t, statuscode.IsGood(statuses[0]))

	q := miStore.Queue(ids[0])
	require.NotNil(t, q)
	q.Push(mistore.Notification{})

	sess.Collect()

	select {
	case msg := <-sess.Notifications():
		assert.Equal(t, uint32(7), msg.ClientHandle)
		assert.Equal(t, nodeID.String(), msg.NodeID.String())
	default:
		t.Fatal("expected a delivered PublishMessage")
	}
	assert.Equal(t, uint64(1), sess.Delivered())
}

func TestSessionCollectDropsOnFullChannel(t *testing.T) {
	store := nodeset.NewStore()
	miStore := mistore.NewStore()
	disp := dispatch.New(store, miStore, ua.NewNumericNodeID(0, 2253), 0)
	sess := NewSession(1, miStore, disp)
	sess.notifyCh = make(chan *PublishMessage, 1)

	ids, _ := sess.AddMonitoredItems(mistore.CreateParams{
		NodeID:    ua.NewNumericNodeID(1, 50),
		AttrID:    access.AttrValue,
		Mode:      mistore.ModeReporting,
		QueueSize: 2,
	})
	q := miStore.Queue(ids[0])
	q.Push(mistore.Notification{})
	q.Push(mistore.Notification{})

	var dropErr error
	sess.SetErrorHandler(func(_ *Session, err error) { dropErr = err })
	sess.Collect()

	assert.Equal(t, uint64(1), sess.Delivered())
	assert.Equal(t, uint64(1), sess.Dropped())
	assert.Equal(t, ErrSlowConsumer, dropErr)
}

func TestSessionRemoveMonitoredItemsUntracks(t *testing.T) {
	store := nodeset.NewStore()
	miStore := mistore.NewStore()
	disp := dispatch.New(store, miStore, ua.NewNumericNodeID(0, 2253), 0)
	sess := NewSession(1, miStore, disp)

	ids, _ := sess.AddMonitoredItems(mistore.CreateParams{NodeID: ua.NewNumericNodeID(1, 50), AttrID: access.AttrValue})
	sess.RemoveMonitoredItems(ids[0])

	assert.Nil(t, miStore.Get(ids[0]))
	sess.mu.RLock()
	_, tracked := sess.items[ids[0]]
	sess.mu.RUnlock()
	assert.False(t, tracked)
}
