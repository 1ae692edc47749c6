package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	require.Contains(t, body, `procman_http_requests_total{code="418",route="/test"} 1`)
	require.Contains(t, body, `procman_http_request_duration_seconds_bucket{route="/test"`)
}

func TestDomainAndJobCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.AnalysisComputed()
	metrics.AnalysisComputed()
	metrics.RecordDenial("mutation")
	require.NoError(t, metrics.Jobs().Start("totals:refresh").Finish(nil))

	body := scrape(t, metrics)
	require.Contains(t, body, "procman_payment_analyses_total 2")
	require.Contains(t, body, `procman_forbidden_total{reason="mutation"} 1`)
	require.True(t, strings.Contains(body, `procman_jobs_total{job="totals:refresh",outcome="success"} 1`))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.AnalysisComputed()
	m.RecordDenial("admin")
	require.Nil(t, m.Jobs())
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
