package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the prometheus instruments the services report into.
type Metrics struct {
	HTTPRequestDuration  *prometheus.HistogramVec
	RequestTransitions   *prometheus.CounterVec
	NotificationsCreated prometheus.Counter
	SMSSent              prometheus.Counter
	SMSFailed            prometheus.Counter
	RequestsExpired      prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brgy_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brgy_document_request_transitions_total",
			Help: "Document request status transitions by target status",
		}, []string{"status"}),
		NotificationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brgy_notifications_created_total",
			Help: "Total notification rows persisted",
		}),
		SMSSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brgy_sms_sent_total",
			Help: "Total SMS messages accepted by the gateway",
		}),
		SMSFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brgy_sms_failed_total",
			Help: "Total SMS sends that failed and were swallowed",
		}),
		RequestsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "brgy_document_requests_expired_total",
			Help: "Total document requests cancelled by the expiry sweep",
		}),
	}
}

func (m *Metrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.RequestTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncNotificationsCreated() {
	if m == nil {
		return
	}
	m.NotificationsCreated.Inc()
}

func (m *Metrics) IncSMSSent() {
	if m == nil {
		return
	}
	m.SMSSent.Inc()
}

func (m *Metrics) IncSMSFailed() {
	if m == nil {
		return
	}
	m.SMSFailed.Inc()
}

func (m *Metrics) IncRequestsExpired(n int) {
	if m == nil {
		return
	}
	m.RequestsExpired.Add(float64(n))
}
