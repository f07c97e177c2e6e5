package billingapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/smallbiznis/billdesk/internal/auth/session"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestClientSendsBearerAndDecodes(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/kdevbill/invoices", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]item{{ID: 1, Name: "a"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/kdevbill/", time.Second, zap.NewNop(), nil)
	ctx := session.WithContext(context.Background(), session.New("tok-1", userdomain.User{ID: 1}, time.Time{}))

	var out []item
	err := client.Get(ctx, "/invoices", url.Values{"status": {"OPEN"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "status=OPEN", gotQuery)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Name)
}

func TestClientOmitsAuthorizationWithoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, zap.NewNop(), nil)
	require.NoError(t, client.Post(context.Background(), "/auth/login", map[string]string{"username": "a"}, nil))
}

func TestClientMapsErrorBody(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message field", status: http.StatusConflict, body: `{"error":"Conflict","message":"Ya existe"}`, message: "Ya existe"},
		{name: "reason phrase only", status: http.StatusBadRequest, body: `{"status":400,"error":"Validation Failed","path":"/plans/7"}`, message: ""},
		{name: "not json", status: http.StatusInternalServerError, body: `<html>boom</html>`, message: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, time.Second, zap.NewNop(), nil)
			err := client.Put(context.Background(), "/plans/7", map[string]any{}, nil)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Equal(t, "/plans/:id", apiErr.Path)
			assert.Equal(t, tc.status, StatusCode(err))
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	notFound := &Error{StatusCode: http.StatusNotFound}
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsUnauthorized(notFound))
	assert.True(t, IsUnauthorized(&Error{StatusCode: http.StatusUnauthorized}))
	assert.True(t, IsForbidden(&Error{StatusCode: http.StatusForbidden}))
	assert.Equal(t, 0, StatusCode(errors.New("dial tcp: refused")))

	assert.Equal(t, "fallback", MessageOr(notFound, "fallback"))
	assert.Equal(t, "Factura pagada", MessageOr(&Error{StatusCode: 400, Message: " Factura pagada "}, "fallback"))
	assert.Equal(t, "fallback", MessageOr(errors.New("x"), "fallback"))
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, 200*time.Millisecond, zap.NewNop(), nil)
	err := client.Get(context.Background(), "/subscriptions", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
}

func TestRouteOf(t *testing.T) {
	assert.Equal(t, "/invoices", routeOf("/invoices"))
	assert.Equal(t, "/invoices/:id/pay", routeOf("/invoices/12/pay"))
	assert.Equal(t, "/subscriptions/customer/:id", routeOf("/subscriptions/customer/3"))
	assert.Equal(t, "/a/:id/:id", routeOf("/a/1/2"))
}
