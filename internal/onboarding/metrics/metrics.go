package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the onboarding module. Counts session
// lifecycle events and webhook traffic, and times provider round-trips.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	SessionsResumed    prometheus.Counter
	SessionsRetried    prometheus.Counter
	WebhooksReceived   *prometheus.CounterVec
	WebhooksUnknown    prometheus.Counter
	SyncRequests       prometheus.Counter
	ExtractionFailures prometheus.Counter
	SettingsFailures   prometheus.Counter
	AuditFailures      prometheus.Counter
	ProviderDuration   *prometheus.HistogramVec
}

// New creates a Metrics instance with all onboarding metrics registered.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingate_onboarding_sessions_started_total",
			Help: "Total number of verification sessions created at the provider",
		}),
		SessionsResumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingate_onboarding_sessions_resumed_total",
			Help: "Total number of start calls answered with an existing session",
		}),
		SessionsRetried: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingate_onboarding_sessions_retried_total",
			Help: "Total number of provider-side session restarts",
		}),
		WebhooksReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fingate_onboarding_webhooks_received_total",
			Help: "Total number of provider webhooks, by provider status",
		}, []string{"status"}),
		WebhooksUnknown: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingate_onboarding_webhooks_unknown_total",
			Help: "Total number of webhooks for request IDs with no session",
		}),
		SyncRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingate_onboarding_sync_requests_total",
			Help: "Total number of manual status sync requests",
		}),
		ExtractionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingate_onboarding_extraction_failures_total",
			Help: "Total number of detail fetches or extractions that failed after approval",
		}),
		SettingsFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingate_onboarding_settings_failures_total",
			Help: "Total number of best-effort provider settings calls that failed",
		}),
		AuditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fingate_onboarding_audit_failures_total",
			Help: "Total number of audit events that could not be recorded",
		}),
		ProviderDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fingate_onboarding_provider_duration_seconds",
			Help:    "Duration of verification provider calls, by operation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}
}

// ObserveProvider records the duration of one provider call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveProvider(operation string, start time.Time) {
	m.ProviderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
