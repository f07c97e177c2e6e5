package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/payment/domain"
)

type repo struct {
	client *billingapi.Client
}

func Provide(client *billingapi.Client) domain.Repository {
	return &repo{client: client}
}

func (r *repo) List(ctx context.Context, filter domain.ListFilter) ([]domain.RawPayment, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Method != "" {
		query.Set("method", string(filter.Method))
	}
	var items []domain.RawPayment
	if err := r.client.Get(ctx, "/payments", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, id int64) (domain.RawPayment, error) {
	var item domain.RawPayment
	err := r.client.Get(ctx, fmt.Sprintf("/payments/%d", id), nil, &item)
	return item, err
}
