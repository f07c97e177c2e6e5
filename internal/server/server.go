package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/billdesk/internal/audit"
	auditdomain "github.com/smallbiznis/billdesk/internal/audit/domain"
	"github.com/smallbiznis/billdesk/internal/auth/session"
	"github.com/smallbiznis/billdesk/internal/authorization"
	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/billingdashboard"
	billingdashboarddomain "github.com/smallbiznis/billdesk/internal/billingdashboard/domain"
	"github.com/smallbiznis/billdesk/internal/clock"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/customer"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	"github.com/smallbiznis/billdesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	"github.com/smallbiznis/billdesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/billdesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/billdesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/billdesk/internal/observability/tracing"
	"github.com/smallbiznis/billdesk/internal/payment"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	"github.com/smallbiznis/billdesk/internal/plan"
	plandomain "github.com/smallbiznis/billdesk/internal/plan/domain"
	"github.com/smallbiznis/billdesk/internal/providers"
	"github.com/smallbiznis/billdesk/internal/providers/pdf"
	"github.com/smallbiznis/billdesk/internal/ratelimit"
	"github.com/smallbiznis/billdesk/internal/subscription"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
	"github.com/smallbiznis/billdesk/internal/user"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	billingapi.Module,
	session.Module,
	authorization.Module,
	audit.Module,
	ratelimit.Module,
	user.Module,
	customer.Module,
	plan.Module,
	subscription.Module,
	invoice.Module,
	payment.Module,
	billingdashboard.Module,
	providers.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if obsCfg.PrometheusEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	clock     clock.Clock
	dashboard *config.DashboardConfigHolder
	sessions  *session.Manager
	validate  *validator.Validate
	guard     *ratelimit.Guard

	authzSvc        authorization.Service
	auditSvc        auditdomain.Service
	userSvc         userdomain.Service
	customerSvc     customerdomain.Service
	planSvc         plandomain.Service
	subscriptionSvc subscriptiondomain.Service
	invoiceSvc      invoicedomain.Service
	paymentSvc      paymentdomain.Service
	dashboardSvc    billingdashboarddomain.Service
	pdfSvc          pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Log       *zap.Logger
	Clock     clock.Clock
	Dashboard *config.DashboardConfigHolder
	Sessions  *session.Manager
	Guard     *ratelimit.Guard `optional:"true"`

	AuthzSvc        authorization.Service
	AuditSvc        auditdomain.Service `optional:"true"`
	UserSvc         userdomain.Service
	CustomerSvc     customerdomain.Service
	PlanSvc         plandomain.Service
	SubscriptionSvc subscriptiondomain.Service
	InvoiceSvc      invoicedomain.Service
	PaymentSvc      paymentdomain.Service
	DashboardSvc    billingdashboarddomain.Service
	PDFSvc          pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log.Named("http.server"),
		clock:           p.Clock,
		dashboard:       p.Dashboard,
		sessions:        p.Sessions,
		validate:        newValidator(),
		guard:           p.Guard,
		authzSvc:        p.AuthzSvc,
		auditSvc:        p.AuditSvc,
		userSvc:         p.UserSvc,
		customerSvc:     p.CustomerSvc,
		planSvc:         p.PlanSvc,
		subscriptionSvc: p.SubscriptionSvc,
		invoiceSvc:      p.InvoiceSvc,
		paymentSvc:      p.PaymentSvc,
		dashboardSvc:    p.DashboardSvc,
		pdfSvc:          p.PDFSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/register", s.Register)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.SessionRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.SessionRequired())

	api.GET("/dashboard", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.GetDashboard)

	// -------- Customers --------
	api.GET("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.ListCustomers)
	api.POST("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionCreate), s.CreateCustomer)
	api.GET("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionView), s.GetCustomerByID)
	api.PUT("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionUpdate), s.UpdateCustomer)
	api.DELETE("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionDelete), s.DeleteCustomer)

	// -------- Plans --------
	api.GET("/plans", s.authorize(authorization.ObjectPlan, authorization.ActionView), s.ListPlans)
	api.POST("/plans", s.authorize(authorization.ObjectPlan, authorization.ActionCreate), s.CreatePlan)
	api.PUT("/plans/:id", s.authorize(authorization.ObjectPlan, authorization.ActionUpdate), s.UpdatePlan)
	api.DELETE("/plans/:id", s.authorize(authorization.ObjectPlan, authorization.ActionDelete), s.DeletePlan)

	// -------- Subscriptions --------
	api.GET("/subscriptions", s.authorize(authorization.ObjectSubscription, authorization.ActionView), s.ListSubscriptions)
	api.POST("/subscriptions", s.authorize(authorization.ObjectSubscription, authorization.ActionCreate), s.CreateSubscription)
	api.GET("/subscriptions/:id", s.authorize(authorization.ObjectSubscription, authorization.ActionView), s.GetSubscriptionByID)
	api.PUT("/subscriptions/:id", s.authorize(authorization.ObjectSubscription, authorization.ActionUpdate), s.UpdateSubscription)
	api.DELETE("/subscriptions/:id", s.authorize(authorization.ObjectSubscription, authorization.ActionDelete), s.DeleteSubscription)
	api.POST("/subscriptions/:id/renew", s.authorize(authorization.ObjectSubscription, authorization.ActionRenew), s.RenewSubscription)

	// -------- Invoices --------
	api.GET("/invoices", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.ListInvoices)
	api.GET("/invoices/:id", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.GetInvoiceByID)
	api.GET("/invoices/:id/pdf", s.authorize(authorization.ObjectInvoice, authorization.ActionView), s.RenderInvoicePDF)
	api.POST("/invoices/:id/pay", s.authorize(authorization.ObjectInvoice, authorization.ActionPay), s.PayInvoice)

	// -------- Payments --------
	api.GET("/payments", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.ListPayments)
	api.GET("/payments/:id", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.GetPaymentByID)
	api.GET("/payments/:id/receipt", s.authorize(authorization.ObjectPayment, authorization.ActionView), s.RenderPaymentReceipt)

	// -------- Administration --------
	api.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	api.GET("/audit-logs", s.authorize(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

// audit records action best effort; a failed insert never fails the request.
func (s *Server) audit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(c.Request.Context(), action, targetType, targetID, metadata); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}
