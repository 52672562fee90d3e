package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spec-kit/change-compliance/internal/domain"
)

// Chat outcomes recorded by RecordChat.
const (
	ChatOutcomeOK       = "ok"
	ChatOutcomeCacheHit = "cache_hit"
	ChatOutcomeError    = "error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	chatCompletions *prometheus.CounterVec
	catalogTickets  *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"route", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "HTTP error responses by error code.",
			},
			[]string{"route", "method", "code"},
		),
		chatCompletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_completions_total",
				Help: "Chat completions by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		catalogTickets: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_tickets",
				Help: "Tickets in the catalog by compliance status.",
			},
			[]string{"compliance"},
		),
	}

	reg.MustRegister(m.requests, m.latency, m.errors, m.chatCompletions, m.catalogTickets)
	return m
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordChat counts a chat completion attempt.
func (m *Metrics) RecordChat(provider, outcome string) {
	if m == nil {
		return
	}
	m.chatCompletions.WithLabelValues(provider, outcome).Inc()
}

// SetCatalog publishes the catalog size per compliance status.
func (m *Metrics) SetCatalog(tickets []domain.Ticket) {
	if m == nil {
		return
	}
	counts := map[domain.ComplianceStatus]int{
		domain.ComplianceCompliant:    0,
		domain.ComplianceWarning:      0,
		domain.ComplianceNonCompliant: 0,
	}
	for _, t := range tickets {
		counts[t.ComplianceStatus]++
	}
	for status, n := range counts {
		m.catalogTickets.WithLabelValues(string(status)).Set(float64(n))
	}
}
