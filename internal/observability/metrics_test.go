package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/change-compliance/internal/domain"
)

func TestMetrics_RecordsRequestsErrorsAndChats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("/api/tickets", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/api/tickets", "GET", 200, 7*time.Millisecond)
	m.RecordError("/api/tickets/:id", "GET", "NOT_FOUND")
	m.RecordChat("bedrock", ChatOutcomeOK)
	m.RecordChat("bedrock", ChatOutcomeCacheHit)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/tickets", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/api/tickets/:id", "GET", "NOT_FOUND")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chatCompletions.WithLabelValues("bedrock", ChatOutcomeCacheHit)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.latency))
}

func TestMetrics_SetCatalogCountsEveryStatus(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetCatalog([]domain.Ticket{
		{ComplianceStatus: domain.ComplianceCompliant},
		{ComplianceStatus: domain.ComplianceCompliant},
		{ComplianceStatus: domain.ComplianceNonCompliant},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.catalogTickets.WithLabelValues("compliant")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.catalogTickets.WithLabelValues("warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogTickets.WithLabelValues("non-compliant")))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordChat("openai", ChatOutcomeError)
		m.SetCatalog(nil)
	})
}
