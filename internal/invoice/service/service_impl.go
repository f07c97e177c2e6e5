package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/config"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/billdesk/internal/observability/metrics"
	"github.com/smallbiznis/billdesk/internal/ratelimit"
	"github.com/smallbiznis/billdesk/internal/reconcile"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	payMessageServer     = "Error interno del servidor. Por favor, contacta al administrador."
	payMessageNotFound   = "Factura no encontrada."
	payMessageBadRequest = "Datos de pago inválidos."
	payMessageGeneric    = "Error al procesar el pago. Intenta nuevamente."
)

type Params struct {
	fx.In

	Log           *zap.Logger
	Config        config.Config
	Repo          domain.Repository
	Subscriptions subscriptiondomain.Service
	Guard         *ratelimit.Guard    `optional:"true"`
	Metrics       *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log           *zap.Logger
	repo          domain.Repository
	subscriptions subscriptiondomain.Service
	guard         *ratelimit.Guard
	metrics       *obsmetrics.Metrics
	reconciler    reconcile.Reconciler[domain.RawInvoice, subscriptiondomain.Subscription, domain.Invoice]
}

func New(p Params) domain.Service {
	svc := &Service{
		log:           p.Log.Named("invoice.service"),
		repo:          p.Repo,
		subscriptions: p.Subscriptions,
		guard:         p.Guard,
		metrics:       p.Metrics,
	}
	svc.reconciler = reconcile.Reconciler[domain.RawInvoice, subscriptiondomain.Subscription, domain.Invoice]{
		Entity:     "subscription",
		FetchAll:   p.Subscriptions.List,
		FetchByID:  p.Subscriptions.GetByID,
		RefID:      func(sub subscriptiondomain.Subscription) int64 { return sub.ID },
		ForeignKey: func(raw domain.RawInvoice) int64 { return raw.SubscriptionID },
		Placeholder: func(raw domain.RawInvoice) subscriptiondomain.Subscription {
			return reconcile.PlaceholderSubscription(raw.SubscriptionID, raw.Amount)
		},
		Build:    buildInvoice,
		Validate: validateInvoice,
		Limit:    p.Config.ReconcileConcurrency,
		Log:      svc.log,
		Observer: reconcile.NewMetricsObserver(p.Metrics),
	}
	return svc
}

func (s *Service) List(ctx context.Context) ([]domain.Invoice, error) {
	return s.list(ctx, "")
}

func (s *Service) ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.list(ctx, status)
}

func (s *Service) list(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	raw, err := s.repo.List(ctx, status)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return []domain.Invoice{}, nil
		}
		return nil, err
	}
	return s.ReconcileInvoices(ctx, raw), nil
}

func (s *Service) ReconcileInvoices(ctx context.Context, raw []domain.RawInvoice) []domain.Invoice {
	return s.reconciler.Reconcile(ctx, raw)
}

// GetByID resolves the subscription of a single invoice on its own; a failed
// lookup yields the "not found" placeholders rather than an error.
func (s *Service) GetByID(ctx context.Context, id int64) (domain.Invoice, error) {
	if id <= 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}
	raw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Invoice{}, domain.ErrNotFound
		}
		return domain.Invoice{}, err
	}

	sub := reconcile.UnresolvedSubscription()
	if raw.SubscriptionID > 0 {
		found, err := s.subscriptions.GetByID(ctx, raw.SubscriptionID)
		if err != nil {
			s.log.Warn("invoice subscription unresolved",
				zap.Int64("invoice_id", id),
				zap.Int64("subscription_id", raw.SubscriptionID),
				zap.Error(err),
			)
		} else {
			sub = found
		}
	}
	return buildInvoice(raw, sub), nil
}

// payMethods mirrors the payment method enum accepted by the pay endpoint.
var payMethods = map[string]struct{}{"CARD": {}, "TRANSFER": {}, "CASH": {}}

func (s *Service) Pay(ctx context.Context, id int64, method string) error {
	method = strings.ToUpper(strings.TrimSpace(method))
	if id <= 0 {
		return domain.ErrInvalidID
	}
	if _, ok := payMethods[method]; !ok {
		return domain.ErrInvalidMethod
	}

	release, ok := s.guard.LockInvoicePayment(ctx, id)
	if !ok {
		s.metrics.RecordPaymentAttempt(ctx, method, "locked")
		return domain.ErrPayInProgress
	}
	defer release()

	s.metrics.RecordPaymentAttempt(ctx, method, "attempted")
	if err := s.repo.Pay(ctx, id, method); err != nil {
		s.metrics.RecordPaymentAttempt(ctx, method, "failed")
		s.log.Warn("invoice payment rejected",
			zap.Int64("invoice_id", id),
			zap.String("method", method),
			zap.Int("status_code", billingapi.StatusCode(err)),
			zap.Error(err),
		)
		return newPayError(err)
	}

	s.metrics.RecordPaymentAttempt(ctx, method, "succeeded")
	s.log.Info("invoice paid", zap.Int64("invoice_id", id), zap.String("method", method))
	return nil
}

func newPayError(err error) *domain.PayError {
	status := billingapi.StatusCode(err)
	var fallback string
	switch status {
	case http.StatusInternalServerError:
		fallback = payMessageServer
	case http.StatusNotFound:
		fallback = payMessageNotFound
	case http.StatusBadRequest:
		fallback = payMessageBadRequest
	default:
		fallback = payMessageGeneric
	}

	payErr := &domain.PayError{StatusCode: status, Message: billingapi.MessageOr(err, fallback), Err: err}
	if status == http.StatusNotFound {
		payErr.Err = errors.Join(domain.ErrNotFound, err)
	}
	return payErr
}

func buildInvoice(raw domain.RawInvoice, sub subscriptiondomain.Subscription) domain.Invoice {
	return domain.Invoice{
		ID:           raw.ID,
		Subscription: reconcile.CompleteSubscription(sub),
		Amount:       raw.Amount,
		Status:       raw.Status,
		DueDate:      raw.DueDate,
		IssuedAt:     raw.IssuedAt,
	}
}

func validateInvoice(raw domain.RawInvoice) error {
	if !raw.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	return nil
}
