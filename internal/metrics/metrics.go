package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aloka_http_requests_total",
		Help: "Total HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aloka_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	listCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aloka_studio_list_cache_lookups_total",
		Help: "Studio list cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	studioMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aloka_studio_mutations_total",
		Help: "Studio records created, updated or deleted",
	}, []string{"operation"})

	signups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aloka_signups_total",
		Help: "Signup attempts by outcome",
	}, []string{"outcome"})

	feedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aloka_studio_feed_subscribers",
		Help: "Open websocket subscriptions to the studio change feed",
	})

	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "aloka_circuit_breaker_state",
		Help: "Circuit breaker state by component (active state is 1, others 0)",
	}, []string{"component", "state"})
)

var circuitStates = []string{"closed", "half-open", "open"}

func RecordCacheLookup(result string) {
	listCacheLookups.WithLabelValues(result).Inc()
}

func RecordStudioMutation(operation string) {
	studioMutations.WithLabelValues(operation).Inc()
}

func RecordSignup(outcome string) {
	signups.WithLabelValues(outcome).Inc()
}

func FeedSubscriberConnected()    { feedSubscribers.Inc() }
func FeedSubscriberDisconnected() { feedSubscribers.Dec() }

// SetCircuitBreakerState records the active circuit breaker state for a component.
func SetCircuitBreakerState(component, state string) {
	for _, s := range circuitStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		circuitBreakerState.WithLabelValues(component, s).Set(value)
	}
}
