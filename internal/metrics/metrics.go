// Package metrics implements the Prometheus collectors wired into
// mistore.Store.Metrics and dispatch.Dispatcher.Metrics, exposed over HTTP
// via promhttp the way the pack's configd exposes its Prometheus client
// ("prometheus client launched").
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/systerel/opcua-addrspace-core/access"
)

// Collectors implements mistore.Metrics and dispatch.Metrics over a
// dedicated prometheus.Registry (not the global DefaultRegisterer, so tests
// can spin up independent instances without collector-already-registered
// panics).
type Collectors struct {
	Registry *prometheus.Registry

	queueDepth *prometheus.GaugeVec
	overflow   *prometheus.CounterVec
	dispatched *prometheus.CounterVec
	dropped    prometheus.Counter
}

// New registers and returns a fresh Collectors set.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	c := &Collectors{
		Registry: reg,
		queueDepth: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "opcua",
			Subsystem: "mistore",
			Name:      "queue_depth",
			Help:      "Current number of queued notifications for a MonitoredItem.",
		}, []string{"monitored_item_id"}),
		overflow: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "opcua",
			Subsystem: "mistore",
			Name:      "queue_overflow_total",
			Help:      "Number of notification queue overflows per MonitoredItem.",
		}, []string{"monitored_item_id"}),
		dispatched: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "opcua",
			Subsystem: "dispatch",
			Name:      "notifications_total",
			Help:      "Number of notifications dispatched, by AttributeId.",
		}, []string{"attribute_id"}),
		dropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "opcua",
			Subsystem: "dispatch",
			Name:      "batches_dropped_total",
			Help:      "Number of operation batches dropped because the dispatch channel was full.",
		}),
	}
	return c
}

// ObserveQueueDepth implements mistore.Metrics.
func (c *Collectors) ObserveQueueDepth(miID uint32, depth int) {
	c.queueDepth.WithLabelValues(labelID(miID)).Set(float64(depth))
}

// IncOverflow implements mistore.Metrics.
func (c *Collectors) IncOverflow(miID uint32) {
	c.overflow.WithLabelValues(labelID(miID)).Inc()
}

// IncDispatched implements dispatch.Metrics.
func (c *Collectors) IncDispatched(attrID access.AttributeID) {
	c.dispatched.WithLabelValues(labelID(uint32(attrID))).Inc()
}

// IncDropped implements dispatch.Metrics.
func (c *Collectors) IncDropped() { c.dropped.Inc() }

// Handler returns the promhttp handler serving this Collectors' registry.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}

func labelID(id uint32) string { return strconv.FormatUint(uint64(id), 10) }
