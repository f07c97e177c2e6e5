package repository

import (
	"context"
	"fmt"
	"net/url"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/invoice/domain"
)

type repo struct {
	client *billingapi.Client
}

func Provide(client *billingapi.Client) domain.Repository {
	return &repo{client: client}
}

func (r *repo) List(ctx context.Context, status domain.InvoiceStatus) ([]domain.RawInvoice, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": []string{string(status)}}
	}
	var items []domain.RawInvoice
	if err := r.client.Get(ctx, "/invoices", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, id int64) (domain.RawInvoice, error) {
	var item domain.RawInvoice
	err := r.client.Get(ctx, fmt.Sprintf("/invoices/%d", id), nil, &item)
	return item, err
}

type payRequest struct {
	Method string `json:"method"`
}

func (r *repo) Pay(ctx context.Context, id int64, method string) error {
	return r.client.Post(ctx, fmt.Sprintf("/invoices/%d/pay", id), payRequest{Method: method}, nil)
}
