package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/customer/domain"
)

type repo struct {
	client *billingapi.Client
}

func Provide(client *billingapi.Client) domain.Repository {
	return &repo{client: client}
}

func (r *repo) List(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if err := r.client.Get(ctx, "/customers", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) FindByID(ctx context.Context, id int64) (domain.Customer, error) {
	var customer domain.Customer
	err := r.client.Get(ctx, fmt.Sprintf("/customers/%d", id), nil, &customer)
	return customer, err
}

func (r *repo) Insert(ctx context.Context, payload domain.Payload) (domain.Customer, error) {
	var customer domain.Customer
	err := r.client.Post(ctx, "/customers", payload, &customer)
	return customer, err
}

func (r *repo) Update(ctx context.Context, id int64, payload domain.Payload) (domain.Customer, error) {
	var customer domain.Customer
	err := r.client.Put(ctx, fmt.Sprintf("/customers/%d", id), payload, &customer)
	return customer, err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("/customers/%d", id), nil)
}
