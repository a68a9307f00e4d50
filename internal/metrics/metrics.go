package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gateway"

// Metrics holds the gateway's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	dispatches    *prometheus.CounterVec
	storeRequests *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	relayPolls    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Command envelopes handled, by action and outcome.",
		}, []string{"action", "outcome"}),
		storeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_requests_total",
			Help:      "Remote store requests, by action and HTTP status (0 for transport errors).",
		}, []string{"action", "code"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_request_duration_seconds",
			Help:      "Remote store request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		relayPolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_polls_total",
			Help:      "Long-poll relay cycles, by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.dispatches, m.storeRequests, m.storeDuration, m.relayPolls} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveDispatch counts one handled envelope.
func (m *Metrics) ObserveDispatch(action, outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(action, outcome).Inc()
}

// ObserveStoreRequest counts one remote store call and its latency.
func (m *Metrics) ObserveStoreRequest(action string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.storeRequests.WithLabelValues(action, strconv.Itoa(code)).Inc()
	m.storeDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveRelayPoll counts one relay cycle.
func (m *Metrics) ObserveRelayPoll(outcome string) {
	if m == nil {
		return
	}
	m.relayPolls.WithLabelValues(outcome).Inc()
}
