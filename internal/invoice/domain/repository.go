package domain

import "context"

type Repository interface {
	List(ctx context.Context, status InvoiceStatus) ([]RawInvoice, error)
	FindByID(ctx context.Context, id int64) (RawInvoice, error)
	Pay(ctx context.Context, id int64, method string) error
}
