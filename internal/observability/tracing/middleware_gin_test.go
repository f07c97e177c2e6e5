package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/billdesk/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedRouter(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	r := gin.New()
	r.Use(GinMiddleware())
	r.Use(func(c *gin.Context) {
		ctx := obscontext.WithActor(c.Request.Context(), "USER", "42")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.GET("/api/invoices/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/plans", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	r.GET("/api/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r, recorder
}

func attrValue(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestGinMiddlewareRecordsRouteAndActor(t *testing.T) {
	r, recorder := newTracedRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/invoices/9", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET /api/invoices/:id", spans[0].Name())

	actorID, ok := attrValue(spans[0], "billdesk.actor_id")
	require.True(t, ok)
	assert.Equal(t, "42", actorID.AsString())
	actorType, ok := attrValue(spans[0], "billdesk.actor_type")
	require.True(t, ok)
	assert.Equal(t, "USER", actorType.AsString())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
}

func TestGinMiddlewareLabelsUpstreamFailures(t *testing.T) {
	r, recorder := newTracedRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/plans", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/boom", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "billing api unavailable", spans[0].Status().Description)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "request error", spans[1].Status().Description)
}
