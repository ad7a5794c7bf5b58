package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Token cache outcomes.
const (
	TokenCacheHit     = "hit"
	TokenCacheRefresh = "refresh"
	TokenCacheError   = "error"
)

// CheckoutMetrics records checkout transitions and provider call latency.
type CheckoutMetrics struct {
	providerDuration *prometheus.HistogramVec
	transitions      *prometheus.CounterVec
	tokenRequests    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	providerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paypal_request_duration_seconds",
		Help:    "Duration of outbound PayPal calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_transitions_total",
		Help: "Checkout flows by operation and terminal state.",
	}, []string{"operation", "state"})
	tokenRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paypal_token_requests_total",
		Help: "Access token lookups by cache outcome.",
	}, []string{"result"})
	reg.MustRegister(providerDuration, transitions, tokenRequests)
	return &CheckoutMetrics{
		providerDuration: providerDuration,
		transitions:      transitions,
		tokenRequests:    tokenRequests,
	}
}

// ObserveProviderCall records the latency of one PayPal request.
func (m *CheckoutMetrics) ObserveProviderCall(operation string, duration time.Duration) {
	if m == nil || m.providerDuration == nil {
		return
	}
	m.providerDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncTransition counts a checkout operation ending in state.
func (m *CheckoutMetrics) IncTransition(operation, state string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(operation), normalizeLabel(state)).Inc()
}

// IncToken counts an access token lookup.
func (m *CheckoutMetrics) IncToken(result string) {
	if m == nil || m.tokenRequests == nil {
		return
	}
	m.tokenRequests.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
