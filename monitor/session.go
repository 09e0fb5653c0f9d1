// Package monitor adapts the monitored-item store and dispatcher into a
// per-Subscription publishing loop (spec §4.4/§4.6). It is the server-side
// analogue of a client-facing subscription manager: instead of draining
// PublishNotificationData off a wire subscription, a Session periodically
// collects ready notifications out of mistore.Store and pumps them to
// whatever transport loop is consuming the Session's channel.
package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gopcua/opcua/ua"

	"github.com/systerel/opcua-addrspace-core/access"
	"github.com/systerel/opcua-addrspace-core/dispatch"
	"github.com/systerel/opcua-addrspace-core/mistore"
)

// DefaultMaxChanLen is the size of a Session's outbound buffer.
var DefaultMaxChanLen = 8192

// ErrSlowConsumer is reported when the outbound channel is full and a
// publish batch is dropped instead of blocking the publish cycle.
var ErrSlowConsumer = errors.New("monitor: slow consumer, publish batch dropped")

// ErrHandler receives out-of-band Session errors.
type ErrHandler func(*Session, error)

// PublishMessage is one MonitoredItem's notification, ready to be encoded
// into a PublishResponse by the caller's transport layer.
type PublishMessage struct {
	ClientHandle uint32
	NodeID       *ua.NodeID
	AttrID       access.AttributeID
	Notification mistore.Notification
}

// Session is one Subscription's server-side publishing loop: it owns no
// wire state, only the fan-in from mistore.Store to an outbound channel
// (teacher's NodeMonitor/Subscription channel-pump idiom, retargeted from
// client-side PublishNotificationData draining to server-side queue
// draining).
type Session struct {
	SubscriptionID uint32

	store      *mistore.Store
	dispatcher *dispatch.Dispatcher
	errHandler ErrHandler

	notifyCh chan *PublishMessage
	closed   chan struct{}
	closeOne sync.Once

	mu    sync.RWMutex
	items map[uint32]struct{} // MI ids belonging to this subscription

	delivered uint64
	dropped   uint64
}

// NewSession returns a Session publishing subID's monitored items, reading
// notifications out of store. disp is kept on the Session; Collect reads
// only from store.
func NewSession(subID uint32, store *mistore.Store, disp *dispatch.Dispatcher) *Session {
	return &Session{
		SubscriptionID: subID,
		store:          store,
		dispatcher:     disp,
		notifyCh:       make(chan *PublishMessage, DefaultMaxChanLen),
		closed:         make(chan struct{}),
		items:          make(map[uint32]struct{}),
	}
}

// SetErrorHandler installs an optional out-of-band error callback.
func (s *Session) SetErrorHandler(cb ErrHandler) { s.errHandler = cb }

// Notifications returns the channel PublishMessages are delivered on.
func (s *Session) Notifications() <-chan *PublishMessage { return s.notifyCh }

func (s *Session) sendError(err error) {
	if err != nil && s.errHandler != nil {
		s.errHandler(s, err)
	}
}

// Track registers miID as belonging to this Session, so a later Collect
// drains its queue.
func (s *Session) Track(miID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[miID] = struct{}{}
}

// Untrack removes miID from this Session's tracked set (CloseMonitoredItem
// or subscription deletion).
func (s *Session) Untrack(miID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, miID)
}

// Collect drains every tracked MonitoredItem's queue and forwards its
// entries to notifyCh, dropping and counting on a full channel instead of
// blocking the publish cycle (teacher's pump() slow-consumer behaviour,
// spec §4.6: the publish cycle must never stall on one slow subscriber).
func (s *Session) Collect() {
	s.mu.RLock()
	ids := make([]uint32, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		mi := s.store.Get(id)
		if mi == nil {
			s.Untrack(id)
			continue
		}
		q := s.store.Queue(id)
		if q == nil {
			continue
		}
		for _, n := range q.Drain() {
			msg := &PublishMessage{ClientHandle: mi.ClientHandle, NodeID: mi.NodeID, AttrID: mi.AttrID, Notification: n}
			select {
			case s.notifyCh <- msg:
				atomic.AddUint64(&s.delivered, 1)
			default:
				atomic.AddUint64(&s.dropped, 1)
				s.sendError(ErrSlowConsumer)
			}
		}
	}
}

// Run periodically calls Collect until ctx is cancelled or Close is called.
// tick is typically driven by the Subscription's PublishingInterval.
func (s *Session) Run(ctx context.Context, tick <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-tick:
			s.Collect()
		}
	}
}

// Close stops Run. Idempotent.
func (s *Session) Close() {
	s.closeOne.Do(func() { close(s.closed) })
}

// Delivered returns the number of PublishMessages delivered.
func (s *Session) Delivered() uint64 { return atomic.LoadUint64(&s.delivered) }

// Dropped returns the number of PublishMessages dropped due to a slow
// consumer.
func (s *Session) Dropped() uint64 { return atomic.LoadUint64(&s.dropped) }

// AddMonitoredItems creates MonitoredItems for subID and tracks them on this
// Session, mirroring the teacher's AddNodeIDs batch-create shape.
func (s *Session) AddMonitoredItems(params ...mistore.CreateParams) ([]uint32, []ua.StatusCode) {
	ids := make([]uint32, len(params))
	statuses := make([]ua.StatusCode, len(params))
	for i, p := range params {
		p.SubscriptionID = s.SubscriptionID
		id, status := s.store.Create(p)
		ids[i] = id
		statuses[i] = status
		if id != 0 {
			s.Track(id)
		}
	}
	return ids, statuses
}

// RemoveMonitoredItems deletes and untracks the given MI ids, mirroring the
// teacher's RemoveNodeIDs shape.
func (s *Session) RemoveMonitoredItems(ids ...uint32) {
	for _, id := range ids {
		s.store.Delete(id)
		s.Untrack(id)
	}
}
