package mistore

import (
	"math"

	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

// Notification is one queued WriteValue-shaped entry (spec §4.4/§4.6): a
// deep-copied value slice, the source's status, and an overflow flag the
// dispatcher re-emits at Publish time.
type Notification struct {
	Value     *valuemodel.DataValue
	Overflow  bool
	EventData any // set instead of Value for event MIs
}

// Queue is a MonitoredItem's ordered notification sequence (spec §4.4). A
// QueueSize of 1 behaves as a latch (always one entry, always overwritten).
type Queue struct {
	size          uint32
	discardOldest bool
	entries       []Notification
	reported      uint64
}

// NewQueue returns an empty queue bounded to size (minimum 1).
func NewQueue(size uint32, discardOldest bool) *Queue {
	if size == 0 {
		size = 1
	}
	return &Queue{size: size, discardOldest: discardOldest}
}

// Push enqueues n per spec §4.4's enqueue policy: below capacity it is
// appended; at capacity, discardOldest drops the head before appending,
// otherwise the tail is overwritten; either way the resulting tail entry's
// Overflow bit is set. Returns false if the reporting counter would exceed
// math.MaxInt32 (INT32_MAX).
func (q *Queue) Push(n Notification) bool {
	if q.reported >= math.MaxInt32 {
		return false
	}
	switch {
	case uint32(len(q.entries)) < q.size:
		q.entries = append(q.entries, n)
	case q.discardOldest:
		q.entries = append(q.entries[1:], n)
		q.entries[len(q.entries)-1].Overflow = true
	default:
		q.entries[len(q.entries)-1] = n
		q.entries[len(q.entries)-1].Overflow = true
	}
	q.reported++
	return true
}

// Len returns the number of queued entries.
func (q *Queue) Len() int { return len(q.entries) }

// Drain removes and returns every queued entry, in publish order (oldest
// first).
func (q *Queue) Drain() []Notification {
	out := q.entries
	q.entries = nil
	return out
}

// Peek returns the queued entries without removing them.
func (q *Queue) Peek() []Notification {
	out := make([]Notification, len(q.entries))
	copy(out, q.entries)
	return out
}
