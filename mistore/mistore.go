// Package mistore implements the monitored-item store (spec §4.4, C4): a
// process-wide map of MonitoredItems keyed by a server-assigned id drawn
// from an incrementing counter with FIFO id reuse, plus each item's
// notification queue.
package mistore

import (
	"sync"

	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/rangeexpr"
	"github.com/systerel/opcua-addrspace-core/statuscode"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// MonitoringMode mirrors Part 4's MonitoringMode enumeration.
type MonitoringMode int

const (
	ModeDisabled MonitoringMode = iota
	ModeSampling
	ModeReporting
)

// DataChangeTrigger mirrors Part 4's DataChangeTrigger enumeration, used by
// the filter engine (§4.5) to annotate a MonitoredItem's comparison rule.
type DataChangeTrigger int

const (
	TriggerStatus DataChangeTrigger = iota
	TriggerStatusValue
	TriggerStatusValueTimestamp
)

// FilterContext is whatever the filter engine (C5) produced when the item
// was created or last modified: nil (no deadband), or a float64 absolute
// deadband threshold, or an event-filter context (opaque to this package).
type FilterContext any

// Metrics receives queue-depth and overflow observations. internal/metrics
// implements this with Prometheus collectors; nil is a valid no-op.
type Metrics interface {
	ObserveQueueDepth(miID uint32, depth int)
	IncOverflow(miID uint32)
}

// MonitoredItem is one server-side subscription target (spec §4.4).
type MonitoredItem struct {
	ID             uint32
	SubscriptionID uint32
	NodeID         *ua.NodeID
	AttrID         access.AttributeID
	Range          rangeexpr.Range
	TTR            access.TimestampsToReturn
	Mode           MonitoringMode
	ClientHandle   uint32
	Trigger        DataChangeTrigger
	Filter         FilterContext
	DiscardOldest  bool
	QueueSize      uint32

	queue *Queue
	// lastReported is the DataValue the next data-change evaluation compares
	// against (spec §4.4/§8 scenario 8): nil until the item's first
	// evaluation, which always reports unconditionally regardless of
	// deadband (Part 4: the first sample after creation is always queued).
	// Deadband is a threshold against the last *reported* value, not the
	// raw previous write, so two small writes in a row that each stay under
	// threshold never silently drift the baseline.
	lastReported *valuemodel.DataValue
}

// Store is the process-wide MonitoredItem registry (spec §4.4).
type Store struct {
	mu       sync.Mutex
	items    map[uint32]*MonitoredItem
	nextID   uint32
	freeList []uint32

	Metrics Metrics
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{items: make(map[uint32]*MonitoredItem)}
}

func (s *Store) allocID() uint32 {
	if n := len(s.freeList); n > 0 {
		id := s.freeList[0]
		s.freeList = s.freeList[1:]
		return id
	}
	s.nextID++
	return s.nextID
}

// CreateParams bundles create_monitored_item's inputs (spec §4.4).
type CreateParams struct {
	SubscriptionID uint32
	NodeID         *ua.NodeID
	AttrID         access.AttributeID
	RangeString    string
	TTR            access.TimestampsToReturn
	Mode           MonitoringMode
	ClientHandle   uint32
	Trigger        DataChangeTrigger
	Filter         FilterContext
	DiscardOldest  bool
	QueueSize      uint32
}

// Create allocates a MonitoredItem and returns its id. A syntactically
// invalid RangeString is rejected (spec §4.4).
func (s *Store) Create(p CreateParams) (uint32, ua.StatusCode) {
	var r rangeexpr.Range
	if p.RangeString != "" {
		var err error
		r, err = rangeexpr.Parse(p.RangeString)
		if err != nil {
			return 0, statuscode.BadIndexRangeInvalid
		}
	}
	queueSize := p.QueueSize
	if queueSize == 0 {
		queueSize = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.allocID()
	mi := &MonitoredItem{
		ID:             id,
		SubscriptionID: p.SubscriptionID,
		NodeID:         p.NodeID,
		AttrID:         p.AttrID,
		Range:          r,
		TTR:            p.TTR,
		Mode:           p.Mode,
		ClientHandle:   p.ClientHandle,
		Trigger:        p.Trigger,
		Filter:         p.Filter,
		DiscardOldest:  p.DiscardOldest,
		QueueSize:      queueSize,
		queue:          NewQueue(queueSize, p.DiscardOldest),
	}
	s.items[id] = mi
	return id, statuscode.Good
}

// ModifyParams bundles modify_monitored_item's mutable fields (spec §4.4).
type ModifyParams struct {
	TTR           access.TimestampsToReturn
	ClientHandle  uint32
	Filter        FilterContext
	Trigger       DataChangeTrigger
	DiscardOldest bool
	QueueSize     uint32
}

// Modify replaces id's mutable fields, substituting its filter context and,
// if the queue size changed, its queue (old contents are discarded — the
// source repo frees the old filter context the same way).
func (s *Store) Modify(id uint32, p ModifyParams) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mi, ok := s.items[id]
	if !ok {
		return false
	}
	mi.TTR = p.TTR
	mi.ClientHandle = p.ClientHandle
	mi.Filter = p.Filter
	mi.Trigger = p.Trigger
	mi.DiscardOldest = p.DiscardOldest
	queueSize := p.QueueSize
	if queueSize == 0 {
		queueSize = 1
	}
	if queueSize != mi.QueueSize {
		mi.QueueSize = queueSize
		mi.queue = NewQueue(queueSize, p.DiscardOldest)
	} else {
		mi.queue.discardOldest = p.DiscardOldest
	}
	return true
}

// Delete removes id from the store and returns it to the free list (spec
// §4.4: the id value is preserved for its lifetime on the free list, i.e.
// available for reuse, not retired).
func (s *Store) Delete(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	s.freeList = append(s.freeList, id)
}

// SetMonitoringMode updates id's mode (spec §4.4).
func (s *Store) SetMonitoringMode(id uint32, mode MonitoringMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	mi, ok := s.items[id]
	if !ok {
		return false
	}
	mi.Mode = mode
	return true
}

// Get returns the MonitoredItem for id, or nil.
func (s *Store) Get(id uint32) *MonitoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

// Queue returns id's notification queue, or nil if id is unknown.
func (s *Store) Queue(id uint32) *Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	mi, ok := s.items[id]
	if !ok {
		return nil
	}
	return mi.queue
}

// Enqueue pushes n onto mi's queue, reporting depth/overflow through
// Store.Metrics (nil is a no-op). Returns whether n was queued (false only
// once the queue's INT32_MAX reporting counter saturates) and whether this
// push overflowed the queue (spec §4.4/§4.6: an overflow on an event MI
// triggers the synthetic EventQueueOverflowEventType notification).
func (s *Store) Enqueue(mi *MonitoredItem, n Notification) (queued, overflowed bool) {
	s.mu.Lock()
	overflowed = uint32(mi.queue.Len()) >= mi.QueueSize
	queued = mi.queue.Push(n)
	depth := mi.queue.Len()
	s.mu.Unlock()

	if s.Metrics != nil {
		s.Metrics.ObserveQueueDepth(mi.ID, depth)
		if overflowed {
			s.Metrics.IncOverflow(mi.ID)
		}
	}
	return queued, overflowed
}

// Evaluate reports whether newDV triggers a notification for mi, comparing
// against mi's cached last-reported value rather than newDV's immediate
// predecessor (spec §4.4/§8 scenario 8). A nil last-reported value (mi has
// never reported) always triggers. On trigger, the cache is updated to
// newDV so the next evaluation compares against what was actually reported.
func (s *Store) Evaluate(mi *MonitoredItem, newDV *valuemodel.DataValue) (bool, error) {
	s.mu.Lock()
	last := mi.lastReported
	s.mu.Unlock()

	if last == nil {
		s.mu.Lock()
		mi.lastReported = newDV
		s.mu.Unlock()
		return true, nil
	}

	triggered, err := IsNotificationTriggered(mi, last, newDV)
	if err != nil || !triggered {
		return false, err
	}
	s.mu.Lock()
	mi.lastReported = newDV
	s.mu.Unlock()
	return true, nil
}

// ForEachOnNode calls fn for every MonitoredItem watching nodeID/attrID, in
// unspecified order (spec §4.6 dispatch fan-out).
func (s *Store) ForEachOnNode(nodeID *ua.NodeID, attrID access.AttributeID, fn func(*MonitoredItem)) {
	s.mu.Lock()
	items := make([]*MonitoredItem, 0, len(s.items))
	for _, mi := range s.items {
		if mi.AttrID == attrID && mi.NodeID.String() == nodeID.String() {
			items = append(items, mi)
		}
	}
	s.mu.Unlock()
	for _, mi := range items {
		fn(mi)
	}
}
