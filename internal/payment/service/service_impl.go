package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/config"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/billdesk/internal/observability/metrics"
	"github.com/smallbiznis/billdesk/internal/payment/domain"
	"github.com/smallbiznis/billdesk/internal/reconcile"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Repo     domain.Repository
	Invoices invoicedomain.Service
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	repo       domain.Repository
	invoices   invoicedomain.Service
	reconciler reconcile.Reconciler[domain.RawPayment, invoicedomain.Invoice, domain.Payment]
}

func New(p Params) domain.Service {
	svc := &Service{
		log:      p.Log.Named("payment.service"),
		repo:     p.Repo,
		invoices: p.Invoices,
	}
	svc.reconciler = reconcile.Reconciler[domain.RawPayment, invoicedomain.Invoice, domain.Payment]{
		Entity:     "invoice",
		FetchAll:   p.Invoices.List,
		FetchByID:  p.Invoices.GetByID,
		RefID:      func(inv invoicedomain.Invoice) int64 { return inv.ID },
		ForeignKey: func(raw domain.RawPayment) int64 { return raw.InvoiceID },
		Placeholder: func(raw domain.RawPayment) invoicedomain.Invoice {
			return reconcile.PlaceholderInvoice(raw.InvoiceID, raw.Amount)
		},
		Build:    buildPayment,
		Validate: validatePayment,
		Limit:    p.Config.ReconcileConcurrency,
		Log:      svc.log,
		Observer: reconcile.NewMetricsObserver(p.Metrics),
	}
	return svc
}

func (s *Service) List(ctx context.Context) ([]domain.Payment, error) {
	return s.list(ctx, domain.ListFilter{})
}

func (s *Service) ListByStatus(ctx context.Context, status domain.PaymentStatus) ([]domain.Payment, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.list(ctx, domain.ListFilter{Status: status})
}

func (s *Service) ListByMethod(ctx context.Context, method domain.PaymentMethod) ([]domain.Payment, error) {
	if !method.Valid() {
		return nil, domain.ErrInvalidMethod
	}
	return s.list(ctx, domain.ListFilter{Method: method})
}

func (s *Service) list(ctx context.Context, filter domain.ListFilter) ([]domain.Payment, error) {
	raw, err := s.repo.List(ctx, filter)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return []domain.Payment{}, nil
		}
		return nil, err
	}
	return s.ReconcilePayments(ctx, raw), nil
}

func (s *Service) ReconcilePayments(ctx context.Context, raw []domain.RawPayment) []domain.Payment {
	return s.reconciler.Reconcile(ctx, raw)
}

func (s *Service) GetByID(ctx context.Context, id int64) (domain.Payment, error) {
	if id <= 0 {
		return domain.Payment{}, domain.ErrInvalidID
	}
	raw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if billingapi.IsNotFound(err) {
			return domain.Payment{}, domain.ErrNotFound
		}
		return domain.Payment{}, err
	}

	inv := reconcile.PlaceholderInvoice(raw.InvoiceID, raw.Amount)
	if raw.InvoiceID > 0 {
		found, err := s.invoices.GetByID(ctx, raw.InvoiceID)
		switch {
		case err == nil:
			inv = found
		case errors.Is(err, invoicedomain.ErrNotFound):
			s.log.Warn("payment invoice not found", zap.Int64("payment_id", id), zap.Int64("invoice_id", raw.InvoiceID))
		default:
			s.log.Warn("payment invoice unresolved",
				zap.Int64("payment_id", id),
				zap.Int64("invoice_id", raw.InvoiceID),
				zap.Error(err),
			)
		}
	}
	return buildPayment(raw, inv), nil
}

func buildPayment(raw domain.RawPayment, inv invoicedomain.Invoice) domain.Payment {
	return domain.Payment{
		ID:        raw.ID,
		Invoice:   inv,
		Amount:    raw.Amount,
		Method:    raw.Method,
		Status:    raw.Status,
		PaidAt:    raw.PaidAt,
		Reference: raw.Reference,
	}
}

func validatePayment(raw domain.RawPayment) error {
	if !raw.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	if !raw.Method.Valid() {
		return domain.ErrInvalidMethod
	}
	return nil
}
