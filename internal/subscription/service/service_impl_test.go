package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	"github.com/smallbiznis/billdesk/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) List(ctx context.Context) ([]domain.Subscription, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]domain.Subscription)
	return items, args.Error(1)
}

func (m *repoMock) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Subscription, error) {
	args := m.Called(ctx, customerID)
	items, _ := args.Get(0).([]domain.Subscription)
	return items, args.Error(1)
}

func (m *repoMock) FindByID(ctx context.Context, id int64) (domain.Subscription, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Subscription), args.Error(1)
}

func (m *repoMock) Insert(ctx context.Context, payload domain.CreatePayload) (domain.Subscription, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(domain.Subscription), args.Error(1)
}

func (m *repoMock) Update(ctx context.Context, id int64, payload domain.UpdatePayload) (domain.Subscription, error) {
	args := m.Called(ctx, id, payload)
	return args.Get(0).(domain.Subscription), args.Error(1)
}

func (m *repoMock) Renew(ctx context.Context, id int64) (domain.Subscription, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Subscription), args.Error(1)
}

func (m *repoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newService(repo domain.Repository) domain.Service {
	return New(Params{Log: zap.NewNop(), Repo: repo})
}

func TestListEmptyOnNotFound(t *testing.T) {
	repo := new(repoMock)
	repo.On("List", mock.Anything).Return(nil, &billingapi.Error{StatusCode: 404})

	items, err := newService(repo).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListFillsMissingReferences(t *testing.T) {
	repo := new(repoMock)
	repo.On("List", mock.Anything).Return([]domain.Subscription{
		{ID: 1, Customer: &customerdomain.Customer{ID: 4, Name: "Acme"}, Status: domain.SubscriptionStatusActive},
	}, nil)

	items, err := newService(repo).List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].CustomerName())
	require.NotNil(t, items[0].Plan)
	assert.Equal(t, "Plan no encontrado", items[0].PlanName())
}

func TestUpdateKeepsCurrentStatusWhenOmitted(t *testing.T) {
	repo := new(repoMock)
	repo.On("FindByID", mock.Anything, int64(3)).
		Return(domain.Subscription{ID: 3, Status: domain.SubscriptionStatusPaused}, nil)
	repo.On("Update", mock.Anything, int64(3), domain.UpdatePayload{PlanID: 8, Status: domain.SubscriptionStatusPaused}).
		Return(domain.Subscription{ID: 3, Status: domain.SubscriptionStatusPaused}, nil)

	sub, err := newService(repo).Update(context.Background(), domain.UpdateSubscriptionRequest{ID: 3, PlanID: 8})
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusPaused, sub.Status)
	repo.AssertExpectations(t)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	_, err := newService(new(repoMock)).Update(context.Background(), domain.UpdateSubscriptionRequest{ID: 3, Status: "EXPIRED"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestRenewNotFound(t *testing.T) {
	repo := new(repoMock)
	repo.On("Renew", mock.Anything, int64(9)).Return(domain.Subscription{}, &billingapi.Error{StatusCode: 404})

	_, err := newService(repo).Renew(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenewRefetchesWhenReplyIsEmpty(t *testing.T) {
	repo := new(repoMock)
	repo.On("Renew", mock.Anything, int64(2)).Return(domain.Subscription{}, nil)
	repo.On("FindByID", mock.Anything, int64(2)).
		Return(domain.Subscription{ID: 2, NextBillingDate: "2024-08-01"}, nil)

	sub, err := newService(repo).Renew(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-08-01", sub.NextBillingDate)
}

func TestCreateRequiresPlan(t *testing.T) {
	_, err := newService(new(repoMock)).Create(context.Background(), domain.CreateSubscriptionRequest{CustomerID: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)
}
