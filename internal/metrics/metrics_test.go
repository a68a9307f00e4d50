package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveDispatch("insertOne", "completed")
	m.ObserveDispatch("insertOne", "completed")
	m.ObserveStoreRequest("insertOne", 200, 15*time.Millisecond)
	m.ObserveRelayPoll("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatches.WithLabelValues("insertOne", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeRequests.WithLabelValues("insertOne", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayPolls.WithLabelValues("failed")))
}

func TestMetrics_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveDispatch("find", "failed")
		m.ObserveStoreRequest("find", 500, time.Second)
		m.ObserveRelayPoll("message")
	})
}
