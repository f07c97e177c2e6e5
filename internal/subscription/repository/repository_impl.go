package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/subscription/domain"
)

type repo struct {
	client *billingapi.Client
}

func Provide(client *billingapi.Client) domain.Repository {
	return &repo{client: client}
}

func (r *repo) List(ctx context.Context) ([]domain.Subscription, error) {
	var items []domain.Subscription
	if err := r.client.Get(ctx, "/subscriptions", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Subscription, error) {
	var items []domain.Subscription
	if err := r.client.Get(ctx, fmt.Sprintf("/subscriptions/customer/%d", customerID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, id int64) (domain.Subscription, error) {
	var item domain.Subscription
	err := r.client.Get(ctx, fmt.Sprintf("/subscriptions/%d", id), nil, &item)
	return item, err
}

func (r *repo) Insert(ctx context.Context, payload domain.CreatePayload) (domain.Subscription, error) {
	var item domain.Subscription
	err := r.client.Post(ctx, "/subscriptions", payload, &item)
	return item, err
}

func (r *repo) Update(ctx context.Context, id int64, payload domain.UpdatePayload) (domain.Subscription, error) {
	var item domain.Subscription
	err := r.client.Put(ctx, fmt.Sprintf("/subscriptions/%d", id), payload, &item)
	return item, err
}

func (r *repo) Renew(ctx context.Context, id int64) (domain.Subscription, error) {
	var item domain.Subscription
	err := r.client.Post(ctx, fmt.Sprintf("/subscriptions/%d/renew", id), nil, &item)
	return item, err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("/subscriptions/%d", id), nil)
}
