package service

import (
	"context"

	"github.com/smallbiznis/billdesk/internal/auth/session"
	"github.com/smallbiznis/billdesk/internal/billingdashboard/domain"
	"github.com/smallbiznis/billdesk/internal/clock"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Params struct {
	fx.In

	Log           *zap.Logger
	Clock         clock.Clock
	Customers     customerdomain.Service
	Subscriptions subscriptiondomain.Service
	Invoices      invoicedomain.Service
	Payments      paymentdomain.Service
}

type Service struct {
	log           *zap.Logger
	clock         clock.Clock
	customers     customerdomain.Service
	subscriptions subscriptiondomain.Service
	invoices      invoicedomain.Service
	payments      paymentdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("billingdashboard.service"),
		clock:         p.Clock,
		customers:     p.Customers,
		subscriptions: p.Subscriptions,
		invoices:      p.Invoices,
		payments:      p.Payments,
	}
}

func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return domain.Snapshot{}, domain.ErrUnauthenticated
	}
	isAdmin := sess.IsAdmin()

	var (
		customers     []customerdomain.Customer
		subscriptions []subscriptiondomain.Subscription
		invoices      []invoicedomain.Invoice
		payments      []paymentdomain.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	if isAdmin {
		g.Go(func() (err error) {
			customers, err = s.customers.List(gctx)
			return err
		})
	}
	g.Go(func() (err error) {
		subscriptions, err = s.subscriptions.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		invoices, err = s.invoices.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.payments.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("dashboard load failed", zap.String("username", sess.User.Username), zap.Error(err))
		return domain.Snapshot{}, err
	}

	return domain.ComputeSnapshot(customers, subscriptions, invoices, payments, isAdmin, s.clock.Now()), nil
}
