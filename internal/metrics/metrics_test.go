package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/systerel/opcua-addrspace-core/access"
)

func TestCollectorsObserveAndIncrement(t *testing.T) {
	c := New()

	c.ObserveQueueDepth(5, 3)
	c.IncOverflow(5)
	c.IncDispatched(access.AttrValue)
	c.IncDropped()

	assert.Equal(t, float64(3), testutil.ToFloat64(c.queueDepth.WithLabelValues("5")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.overflow.WithLabelValues("5")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.dispatched.WithLabelValues("13")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.dropped))
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	c := New()
	c.IncDropped()
	assert.NotNil(t, c.Handler())
}
