package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(context.Context) ([]Invoice, error)
	ListByStatus(context.Context, InvoiceStatus) ([]Invoice, error)
	GetByID(context.Context, int64) (Invoice, error)
	// Pay settles an open invoice. Failures carry a user-facing message, see PayError.
	Pay(ctx context.Context, id int64, method string) error
	ReconcileInvoices(context.Context, []RawInvoice) []Invoice
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidMethod = errors.New("invalid_method")
	ErrNotFound      = errors.New("not_found")
	ErrPayInProgress = errors.New("payment_in_progress")
)

// PayError is a rejected payment with the text shown to the operator.
type PayError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PayError) Error() string {
	return e.Message
}

func (e *PayError) Unwrap() error {
	return e.Err
}
