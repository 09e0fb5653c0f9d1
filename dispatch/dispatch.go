// Package dispatch implements the notification dispatcher (spec §4.6, C6):
// once an access.Access's operations are detached, Dispatch walks them in
// FIFO order, fans Write ops out to every subscribing MonitoredItem,
// applies the MI's trigger rule, and pushes the result into its queue,
// synthesising a queue-overflow event for event MIs whose queue just
// overflowed.
package dispatch

import (
	"context"
	"time"

	"github.com/gopcua/opcua/ua"
	"go.uber.org/zap"

	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/filter"
	"github.com/systerel/opcua-addrspace-core/mistore"
	"github.com/systerel/opcua-addrspace-core/nodeset"
)

// Metrics receives dispatch-level counters. internal/metrics implements
// this with Prometheus collectors; nil is a valid no-op.
type Metrics interface {
	IncDispatched(attrID access.AttributeID)
	IncDropped()
}

// Dispatcher fans operation-log entries out to the monitored-item store
// (spec §4.6).
type Dispatcher struct {
	Store        *nodeset.Store
	MIStore      *mistore.Store
	ServerNodeID *ua.NodeID
	Metrics      Metrics
	Logger       *zap.Logger

	// Now returns the current time; overridden in tests. Set by New.
	Now func() time.Time

	// Batch is the channel a server-embedding adapter pumps detached
	// operation batches through (teacher pump() idiom, retargeted from
	// "wire PublishNotificationData → app callback" to
	// "access.Operation batch → per-MI mistore.Queue push").
	Batch  chan []access.Operation
	closed chan struct{}
}

// New returns a Dispatcher over store/miStore. bufferLen sizes Batch (0
// disables the async pump; call Dispatch directly instead).
func New(store *nodeset.Store, miStore *mistore.Store, serverNodeID *ua.NodeID, bufferLen int) *Dispatcher {
	d := &Dispatcher{
		Store:        store,
		MIStore:      miStore,
		ServerNodeID: serverNodeID,
		Now:          func() time.Time { return time.Now().UTC() },
		closed:       make(chan struct{}),
	}
	if bufferLen > 0 {
		d.Batch = make(chan []access.Operation, bufferLen)
	}
	return d
}

// Submit enqueues a detached operations batch onto Batch, matching the
// teacher's drop-if-full slow-consumer behaviour instead of blocking the
// services thread that produced ops.
func (d *Dispatcher) Submit(ops []access.Operation) bool {
	if len(ops) == 0 {
		return true
	}
	if d.Batch == nil {
		d.Dispatch(ops)
		return true
	}
	select {
	case d.Batch <- ops:
		return true
	default:
		if d.Metrics != nil {
			d.Metrics.IncDropped()
		}
		if d.Logger != nil {
			d.Logger.Warn("dispatch: batch channel full, dropping operations", zap.Int("count", len(ops)))
		}
		return false
	}
}

// Run drains Batch until ctx is cancelled or Close is called (teacher
// pump() shape).
func (d *Dispatcher) Run(ctx context.Context) {
	if d.Batch == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.closed:
			return
		case ops := <-d.Batch:
			d.Dispatch(ops)
		}
	}
}

// Close stops Run.
func (d *Dispatcher) Close() { close(d.closed) }

// Dispatch walks ops in FIFO order, fanning Write ops out to every
// subscribed MonitoredItem and NodeChange ops to structural-change
// observers (spec §4.6).
func (d *Dispatcher) Dispatch(ops []access.Operation) {
	for _, op := range ops {
		switch {
		case op.Write != nil:
			d.dispatchWrite(op.Write)
		case op.NodeChange != nil:
			d.dispatchNodeChange(op.NodeChange)
		}
	}
}

func (d *Dispatcher) dispatchWrite(w *access.WriteOp) {
	d.MIStore.ForEachOnNode(w.NodeID, w.AttrID, func(mi *mistore.MonitoredItem) {
		if mi.Mode != mistore.ModeReporting {
			return
		}
		triggered, err := d.MIStore.Evaluate(mi, w.New)
		if err != nil || !triggered {
			return
		}
		dv := w.New.Copy()
		mi.TTR.Apply(dv)
		_, overflowed := d.MIStore.Enqueue(mi, mistore.Notification{Value: dv})
		if d.Metrics != nil {
			d.Metrics.IncDispatched(w.AttrID)
		}
		if overflowed && mi.AttrID == access.AttrEventNotifier {
			d.enqueueOverflowEvent(mi)
		}
	})
}

// dispatchNodeChange notifies structural-change observers. The address
// space has no standing "observe the tree" MI kind yet (spec §4.6 names
// AddNode/DeleteNode as audit events only); this records the change for
// observability until a dedicated NodeChange MI kind is added.
func (d *Dispatcher) dispatchNodeChange(nc *access.NodeChangeOp) {
	if d.Logger != nil {
		d.Logger.Debug("dispatch: node change", zap.Bool("added", nc.Added), zap.String("nodeId", nc.NodeID.String()))
	}
}

// enqueueOverflowEvent synthesises the EventQueueOverflowEventType
// notification and re-runs it through the queue (spec §4.5 "queue-overflow
// event", spec §4.6 dispatch).
func (d *Dispatcher) enqueueOverflowEvent(mi *mistore.MonitoredItem) {
	ev := filter.QueueOverflowEvent(d.ServerNodeID, d.Now())
	d.MIStore.Enqueue(mi, mistore.Notification{EventData: ev, Overflow: true})
}
