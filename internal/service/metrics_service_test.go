package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
)

func TestMetricsServiceEditCounters(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordEdit(EditMetricProposed, 2)
	metrics.RecordEdit(EditMetricApproved, 1)
	metrics.RecordEdit(EditMetricRejected, 1)
	metrics.RecordEdit(EditMetricTargetDeleted, 1)
	metrics.RecordEdit(EditMetricPurged, 3)
	metrics.RecordEdit(EditMetricPurged, 0)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.EditsSubmitted)
	assert.Equal(t, uint64(1), snapshot.EditsApproved)
	assert.Equal(t, uint64(2), snapshot.EditsRejected)
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.editsTotal.WithLabelValues(EditMetricPurged)))
}

func TestMetricsServiceHTTPAndExposition(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/companies", http.StatusOK, 20*time.Millisecond)
	metrics.ObserveHTTPRequest(http.MethodGet, "/api/v1/companies", http.StatusOK, 40*time.Millisecond)
	metrics.RecordExport(models.ReportFormatXLSX)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 30, snapshot.AverageRequestDurationMs, 0.001)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.RecordEdit(EditMetricApproved, 1)
	metrics.RecordExport(models.ReportFormatCSV)
	metrics.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	assert.Equal(t, models.SystemMetrics{}, metrics.Snapshot())

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
