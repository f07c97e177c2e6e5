package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGinMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m := NewHTTPMetrics(registry, Config{ServiceName: "billdesk", Environment: "test"})

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/invoices/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/invoices/1", nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/invoices/:id", "200"))
	if got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
	if v := testutil.ToFloat64(m.inflight); v != 0 {
		t.Fatalf("expected no in-flight requests, got %v", v)
	}
}

func TestNewHTTPMetricsReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewHTTPMetrics(registry, Config{})
	second := NewHTTPMetrics(registry, Config{})

	first.requests.WithLabelValues("GET", "/health", "200").Inc()
	if got := testutil.ToFloat64(second.requests.WithLabelValues("GET", "/health", "200")); got != 1 {
		t.Fatalf("expected shared collector, got %v", got)
	}
}

func TestGinMiddlewareNilMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(nil))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
