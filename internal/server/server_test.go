package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	auditrepository "github.com/smallbiznis/billdesk/internal/audit/repository"
	auditservice "github.com/smallbiznis/billdesk/internal/audit/service"
	"github.com/smallbiznis/billdesk/internal/auth/session"
	"github.com/smallbiznis/billdesk/internal/authorization"
	"github.com/smallbiznis/billdesk/internal/billingapi"
	billingdashboardservice "github.com/smallbiznis/billdesk/internal/billingdashboard/service"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	customerrepository "github.com/smallbiznis/billdesk/internal/customer/repository"
	customerservice "github.com/smallbiznis/billdesk/internal/customer/service"
	invoicerepository "github.com/smallbiznis/billdesk/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/billdesk/internal/invoice/service"
	"github.com/smallbiznis/billdesk/internal/observability"
	paymentrepository "github.com/smallbiznis/billdesk/internal/payment/repository"
	paymentservice "github.com/smallbiznis/billdesk/internal/payment/service"
	planrepository "github.com/smallbiznis/billdesk/internal/plan/repository"
	planservice "github.com/smallbiznis/billdesk/internal/plan/service"
	"github.com/smallbiznis/billdesk/internal/providers/pdf"
	subscriptionrepository "github.com/smallbiznis/billdesk/internal/subscription/repository"
	subscriptionservice "github.com/smallbiznis/billdesk/internal/subscription/service"
	userrepository "github.com/smallbiznis/billdesk/internal/user/repository"
	userservice "github.com/smallbiznis/billdesk/internal/user/service"
	"github.com/smallbiznis/billdesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

const (
	subscriptionsJSON = `[
		{"id":1,"customer":{"id":7,"name":"Acme Corp","email":"billing@acme.test"},
		 "plan":{"id":3,"name":"Pro","price":100,"billingCycle":"MONTHLY","active":true},
		 "status":"ACTIVE","startDate":"2024-06-01","nextBillingDate":"2024-07-01"}
	]`
	invoicesJSON = `[
		{"id":1,"subscriptionId":1,"amount":100,"status":"PAID","dueDate":"2024-06-10","issuedAt":"2024-06-01"},
		{"id":2,"subscriptionId":42,"amount":50,"status":"OPEN","dueDate":"2024-06-01","issuedAt":"2024-05-20"}
	]`
	paymentsJSON = `[
		{"id":10,"invoiceId":1,"amount":100,"method":"CARD","status":"SUCCESS","paidAt":"2024-06-05T10:00:00"},
		{"id":11,"invoiceId":2,"amount":50,"method":"CASH","status":"SUCCESS","paidAt":"2024-06-06T10:00:00"},
		{"id":12,"invoiceId":2,"amount":30,"method":"TRANSFER","status":"FAILED","paidAt":"2024-06-07T10:00:00"}
	]`
	customersJSON = `[
		{"id":7,"name":"Acme Corp","email":"billing@acme.test"},
		{"id":8,"name":"Globex","email":"ap@globex.test"}
	]`
)

// fakeBillingAPI serves the billing REST API for two known tokens.
type fakeBillingAPI struct {
	server  *httptest.Server
	revoked atomic.Bool
	paid    atomic.Int32
}

func newFakeBillingAPI(t *testing.T) *fakeBillingAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeBillingAPI{}
	r := gin.New()

	r.POST("/auth/login", func(c *gin.Context) {
		var req map[string]string
		_ = c.ShouldBindJSON(&req)
		switch {
		case req["password"] != "secret":
			c.Status(http.StatusUnauthorized)
		case req["username"] == "admin2":
			c.JSON(http.StatusOK, gin.H{"token": "tok-admin", "username": "admin2", "role": "ROLE_ADMIN"})
		default:
			c.JSON(http.StatusOK, gin.H{"token": "tok-user", "username": req["username"], "role": "USER"})
		}
	})

	authed := r.Group("/", func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if api.revoked.Load() || (header != "Bearer tok-admin" && header != "Bearer tok-user") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token expired"})
			return
		}
		c.Next()
	})
	raw := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", []byte(body))
		}
	}
	authed.GET("/customers", raw(customersJSON))
	authed.GET("/subscriptions", raw(subscriptionsJSON))
	authed.GET("/subscriptions/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Subscription not found"})
	})
	authed.GET("/invoices", raw(invoicesJSON))
	authed.GET("/invoices/:id", func(c *gin.Context) {
		if c.Param("id") == "1" {
			c.Data(http.StatusOK, "application/json", []byte(`{"id":1,"subscriptionId":1,"amount":100,"status":"PAID","dueDate":"2024-06-10","issuedAt":"2024-06-01"}`))
			return
		}
		c.Status(http.StatusNotFound)
	})
	authed.POST("/invoices/:id/pay", func(c *gin.Context) {
		if c.Param("id") == "2" {
			api.paid.Add(1)
			c.Status(http.StatusOK)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "La factura ya está pagada"})
	})
	authed.GET("/payments", raw(paymentsJSON))
	authed.GET("/plans", raw(`[{"id":3,"name":"Pro","price":100,"billingCycle":"MONTHLY","active":true}]`))

	api.server = httptest.NewServer(r)
	t.Cleanup(api.server.Close)
	return api
}

func newTestServer(t *testing.T) (*Server, *fakeBillingAPI) {
	t.Helper()

	api := newFakeBillingAPI(t)
	log := zap.NewNop()
	clk := clock.NewFakeClock(testNow)
	cfg := config.Config{SessionTTL: time.Hour}
	dash := config.NewStaticDashboardConfigHolder(config.DefaultDashboardConfig())
	client := billingapi.NewClient(api.server.URL, 5*time.Second, log, nil)

	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&auditdomain.AuditLog{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    conn,
		Log:   log,
		Clock: clk,
		GenID: node,
		Repo:  auditrepository.Provide(),
	})
	enforcer, err := authorization.NewEnforcer(conn)
	require.NoError(t, err)

	customers := customerservice.New(customerservice.Params{Log: log, Repo: customerrepository.Provide(client)})
	plans := planservice.New(planservice.Params{Log: log, Repo: planrepository.Provide(client)})
	subscriptions := subscriptionservice.New(subscriptionservice.Params{Log: log, Repo: subscriptionrepository.Provide(client)})
	invoices := invoiceservice.New(invoiceservice.Params{
		Log:           log,
		Config:        cfg,
		Repo:          invoicerepository.Provide(client),
		Subscriptions: subscriptions,
	})
	payments := paymentservice.New(paymentservice.Params{
		Log:      log,
		Config:   cfg,
		Repo:     paymentrepository.Provide(client),
		Invoices: invoices,
	})

	srv := NewServer(ServerParams{
		Gin:       NewEngine(observability.Config{}, nil),
		Cfg:       cfg,
		Log:       log,
		Clock:     clk,
		Dashboard: dash,
		Sessions:  session.NewManager(cfg, session.NewMemoryStore(clk), clk),
		AuthzSvc: authorization.NewService(authorization.Params{
			Log:      log,
			Enforcer: enforcer,
			AuditSvc: auditSvc,
		}),
		AuditSvc:        auditSvc,
		UserSvc:         userservice.New(userservice.Params{Log: log, Repo: userrepository.Provide(client), Dashboard: dash}),
		CustomerSvc:     customers,
		PlanSvc:         plans,
		SubscriptionSvc: subscriptions,
		InvoiceSvc:      invoices,
		PaymentSvc:      payments,
		DashboardSvc: billingdashboardservice.NewService(billingdashboardservice.Params{
			Log:           log,
			Clock:         clk,
			Customers:     customers,
			Subscriptions: subscriptions,
			Invoices:      invoices,
			Payments:      payments,
		}),
		PDFSvc: pdf.New(),
	})
	return srv, api
}

func (s *Server) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func (s *Server) login(t *testing.T, username string) *http.Cookie {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/login", gin.H{"username": username, "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			return cookie
		}
	}
	t.Fatalf("login did not set the session cookie")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Type    string            `json:"type"`
		Message string            `json:"message"`
		Errors  []ValidationError `json:"errors"`
	} `json:"error"`
}

func TestLoginStartsSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/login", gin.H{"username": "admin2", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Data sessionView `json:"data"`
	}](t, rec)
	assert.True(t, body.Data.IsAdmin)
	assert.Equal(t, "admin2", body.Data.User.Username)
	assert.Equal(t, int64(1), body.Data.User.ID)
	assert.Contains(t, body.Data.Capabilities, "plan.create")
	assert.Contains(t, body.Data.Capabilities, "invoice.pay")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/login", gin.H{"username": "admin2", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Credenciales incorrectas", decode[errorBody](t, rec).Error.Message)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginValidatesBody(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/login", gin.H{"username": "admin2"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "password", body.Error.Errors[0].Field)
	assert.Equal(t, "La contraseña es requerida", body.Error.Message)
}

func TestAPIRequiresSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/invoices", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListInvoicesSubstitutesMissingSubscription(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := srv.login(t, "admin2")

	rec := srv.do(t, http.MethodGet, "/api/invoices", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Data []struct {
			ID            int64  `json:"id"`
			Number        string `json:"number"`
			CustomerName  string `json:"customerName"`
			PlanName      string `json:"planName"`
			AmountDisplay string `json:"amountDisplay"`
			Overdue       bool   `json:"overdue"`
		} `json:"data"`
	}](t, rec)
	require.Len(t, body.Data, 2)

	assert.Equal(t, int64(1), body.Data[0].ID)
	assert.Equal(t, "INV-0001", body.Data[0].Number)
	assert.Equal(t, "Acme Corp", body.Data[0].CustomerName)
	assert.Equal(t, "100.00", body.Data[0].AmountDisplay)
	assert.False(t, body.Data[0].Overdue)

	assert.Equal(t, int64(2), body.Data[1].ID)
	assert.Equal(t, "Cliente (ID: 42)", body.Data[1].CustomerName)
	assert.Equal(t, "Plan de $50", body.Data[1].PlanName)
	assert.True(t, body.Data[1].Overdue)
}

func TestListInvoicesFiltersBySearchTerm(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := srv.login(t, "admin2")

	rec := srv.do(t, http.MethodGet, "/api/invoices?q=acme", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Data []invoiceView `json:"data"`
	}](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(1), body.Data[0].ID)
}

func TestPayInvoice(t *testing.T) {
	srv, api := newTestServer(t)
	cookie := srv.login(t, "user1")

	rec := srv.do(t, http.MethodPost, "/api/invoices/2/pay", gin.H{"method": "CARD"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int32(1), api.paid.Load())
	assert.Contains(t, rec.Body.String(), "Pago procesado exitosamente")
}

func TestPayInvoiceRelaysServerMessage(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := srv.login(t, "admin2")

	rec := srv.do(t, http.MethodPost, "/api/invoices/1/pay", gin.H{"method": "CASH"}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "La factura ya está pagada", decode[errorBody](t, rec).Error.Message)

	logs := srv.do(t, http.MethodGet, "/api/audit-logs?action="+auditdomain.ActionInvoicePayRejected, nil, cookie)
	require.Equal(t, http.StatusOK, logs.Code, logs.Body.String())
	body := decode[struct {
		Data []struct {
			Action   string `json:"action"`
			TargetID string `json:"target_id"`
		} `json:"data"`
	}](t, logs)
	require.Len(t, body.Data, 1)
	assert.Equal(t, auditdomain.ActionInvoicePayRejected, body.Data[0].Action)
	assert.Equal(t, "1", body.Data[0].TargetID)
}

func TestPayInvoiceRejectsUnknownMethod(t *testing.T) {
	srv, api := newTestServer(t)
	cookie := srv.login(t, "admin2")

	rec := srv.do(t, http.MethodPost, "/api/invoices/2/pay", gin.H{"method": "BITCOIN"}, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "method", body.Error.Errors[0].Field)
	assert.Equal(t, int32(0), api.paid.Load())
}

func TestUserRoleCannotManagePlans(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := srv.login(t, "user1")

	rec := srv.do(t, http.MethodPost, "/api/plans", gin.H{"name": "Team", "price": 10, "billingCycle": "MONTHLY"}, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/plans", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpstreamUnauthorizedEndsSession(t *testing.T) {
	srv, api := newTestServer(t)
	cookie := srv.login(t, "admin2")

	api.revoked.Store(true)
	rec := srv.do(t, http.MethodGet, "/api/customers", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	api.revoked.Store(false)
	rec = srv.do(t, http.MethodGet, "/api/customers", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardSnapshot(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := srv.login(t, "admin2")

	rec := srv.do(t, http.MethodGet, "/api/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Data struct {
			TotalCustomers      int    `json:"totalCustomers"`
			ActiveSubscriptions int    `json:"activeSubscriptions"`
			TotalRevenueDisplay string `json:"totalRevenueDisplay"`
			SuccessRate         string `json:"successRate"`
			CurrencySymbol      string `json:"currencySymbol"`
		} `json:"data"`
	}](t, rec)
	assert.Equal(t, 2, body.Data.TotalCustomers)
	assert.Equal(t, 1, body.Data.ActiveSubscriptions)
	assert.Equal(t, "150.00", body.Data.TotalRevenueDisplay)
	assert.Equal(t, "66.7", body.Data.SuccessRate)
	assert.Equal(t, "$", body.Data.CurrencySymbol)
}

func TestDashboardHidesCustomersFromUsers(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := srv.login(t, "user1")

	rec := srv.do(t, http.MethodGet, "/api/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"totalCustomers":0`)
}

func TestListPaymentsWithSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := srv.login(t, "admin2")

	rec := srv.do(t, http.MethodGet, "/api/payments?method=CASH", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[struct {
		Data    []paymentView `json:"data"`
		Summary struct {
			Total          int    `json:"total"`
			Successful     int    `json:"successful"`
			RevenueDisplay string `json:"revenueDisplay"`
		} `json:"summary"`
	}](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(11), body.Data[0].ID)
	assert.Equal(t, "Cliente (ID: 42)", body.Data[0].CustomerName)
	assert.Equal(t, 3, body.Summary.Total)
	assert.Equal(t, 2, body.Summary.Successful)
	assert.Equal(t, "150.00", body.Summary.RevenueDisplay)
}

func TestRenderInvoicePDF(t *testing.T) {
	srv, _ := newTestServer(t)
	cookie := srv.login(t, "admin2")

	rec := srv.do(t, http.MethodGet, "/api/invoices/1/pdf", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "kdevbill-inv-0001.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, rec).Error.Type)
}
