package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/billdesk/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGinMiddlewarePropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = obscontext.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, "req-123", seen)
	require.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestDescribeSQL(t *testing.T) {
	cases := []struct {
		sql   string
		op    string
		table string
	}{
		{`SELECT * FROM "audit_logs" WHERE action = ?`, "SELECT", "audit_logs"},
		{"INSERT INTO `casbin_rule` (`ptype`) VALUES (?)", "INSERT", "casbin_rule"},
		{"UPDATE main.audit_logs SET action = ?", "UPDATE", "audit_logs"},
		{"  delete from casbin_rule where ptype = ?", "DELETE", "casbin_rule"},
		{"CREATE TABLE `audit_logs` (`id` text)", "CREATE", "audit_logs"},
		{"PRAGMA foreign_keys", "UNKNOWN", "unknown"},
		{"", "UNKNOWN", "unknown"},
	}
	for _, tc := range cases {
		op, table := describeSQL(tc.sql)
		assert.Equal(t, tc.op, op, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}

func TestRequestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/health", http.StatusOK, ""))
	assert.Equal(t, zapcore.DebugLevel, requestLevel("/auth/login", http.StatusUnauthorized, "unauthorized"))
	assert.Equal(t, zapcore.InfoLevel, requestLevel("/api/invoices", http.StatusUnauthorized, "unauthorized"))
	assert.Equal(t, zapcore.WarnLevel, requestLevel("/api/invoices/:id/pay", http.StatusConflict, "conflict"))
	assert.Equal(t, zapcore.ErrorLevel, requestLevel("/api/invoices", http.StatusBadGateway, "upstream_unavailable"))
}
