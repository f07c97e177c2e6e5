package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/plan/domain"
)

type repo struct {
	client *billingapi.Client
}

func Provide(client *billingapi.Client) domain.Repository {
	return &repo{client: client}
}

func (r *repo) List(ctx context.Context) ([]domain.Plan, error) {
	var plans []domain.Plan
	if err := r.client.Get(ctx, "/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) FindByID(ctx context.Context, id int64) (domain.Plan, error) {
	var plan domain.Plan
	err := r.client.Get(ctx, fmt.Sprintf("/plans/%d", id), nil, &plan)
	return plan, err
}

func (r *repo) Insert(ctx context.Context, payload domain.Payload) (domain.Plan, error) {
	var plan domain.Plan
	err := r.client.Post(ctx, "/plans", payload, &plan)
	return plan, err
}

func (r *repo) Update(ctx context.Context, id int64, payload domain.Payload) (domain.Plan, error) {
	var plan domain.Plan
	err := r.client.Put(ctx, fmt.Sprintf("/plans/%d", id), payload, &plan)
	return plan, err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, fmt.Sprintf("/plans/%d", id), nil)
}
