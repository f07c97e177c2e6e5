package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/auth/session"
	"github.com/smallbiznis/billdesk/internal/billingdashboard/domain"
	"github.com/smallbiznis/billdesk/internal/clock"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
	userdomain "github.com/smallbiznis/billdesk/internal/user/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCustomers struct {
	customerdomain.Service
	calls int
}

func (f *fakeCustomers) List(context.Context) ([]customerdomain.Customer, error) {
	f.calls++
	return []customerdomain.Customer{{ID: 1}, {ID: 2}, {ID: 3}}, nil
}

type fakeSubscriptions struct {
	subscriptiondomain.Service
}

func (fakeSubscriptions) List(context.Context) ([]subscriptiondomain.Subscription, error) {
	return []subscriptiondomain.Subscription{{ID: 1, Status: subscriptiondomain.SubscriptionStatusActive}}, nil
}

type fakeInvoices struct {
	invoicedomain.Service
	err error
}

func (f fakeInvoices) List(context.Context) ([]invoicedomain.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []invoicedomain.Invoice{{ID: 1, Status: invoicedomain.InvoiceStatusOpen, DueDate: "2024-07-01"}}, nil
}

type fakePayments struct {
	paymentdomain.Service
}

func (fakePayments) List(context.Context) ([]paymentdomain.Payment, error) {
	return []paymentdomain.Payment{
		{ID: 1, Amount: decimal.NewFromInt(100), Status: paymentdomain.PaymentStatusSuccess, PaidAt: "2024-06-02T08:00:00"},
		{ID: 2, Amount: decimal.NewFromInt(50), Status: paymentdomain.PaymentStatusSuccess, PaidAt: "2024-05-02T08:00:00"},
		{ID: 3, Amount: decimal.NewFromInt(10), Status: paymentdomain.PaymentStatusFailed, PaidAt: "2024-06-02T08:00:00"},
	}, nil
}

func newTestService(customers *fakeCustomers, invoices fakeInvoices) domain.Service {
	return NewService(Params{
		Log:           zap.NewNop(),
		Clock:         clock.NewFakeClock(time.Date(2024, time.June, 15, 12, 0, 0, 0, time.Local)),
		Customers:     customers,
		Subscriptions: fakeSubscriptions{},
		Invoices:      invoices,
		Payments:      fakePayments{},
	})
}

func withRole(role userdomain.Role) context.Context {
	sess := session.New("token", userdomain.User{ID: 1, Username: "admin", Role: role}, time.Now().Add(time.Hour))
	return session.WithContext(context.Background(), sess)
}

func TestSnapshotForAdmin(t *testing.T) {
	customers := &fakeCustomers{}
	snap, err := newTestService(customers, fakeInvoices{}).Snapshot(withRole(userdomain.RoleAdmin))
	require.NoError(t, err)

	assert.Equal(t, 3, snap.TotalCustomers)
	assert.Equal(t, 1, customers.calls)
	assert.Equal(t, "150", snap.TotalRevenue.String())
	assert.Equal(t, "100", snap.MonthlyRevenue.String())
	assert.Equal(t, "66.7", snap.SuccessRate.String())
	assert.Equal(t, 1, snap.OpenInvoices)
	assert.Equal(t, 0, snap.OverdueInvoices)
}

func TestSnapshotSkipsCustomersForUsers(t *testing.T) {
	customers := &fakeCustomers{}
	snap, err := newTestService(customers, fakeInvoices{}).Snapshot(withRole(userdomain.RoleUser))
	require.NoError(t, err)

	assert.Equal(t, 0, snap.TotalCustomers)
	assert.Equal(t, 0, customers.calls)
}

func TestSnapshotPropagatesFetchFailure(t *testing.T) {
	boom := errors.New("billing api down")
	_, err := newTestService(&fakeCustomers{}, fakeInvoices{err: boom}).Snapshot(withRole(userdomain.RoleAdmin))
	assert.ErrorIs(t, err, boom)
}

func TestSnapshotRequiresSession(t *testing.T) {
	_, err := newTestService(&fakeCustomers{}, fakeInvoices{}).Snapshot(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
