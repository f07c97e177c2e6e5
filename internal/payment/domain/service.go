package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(context.Context) ([]Payment, error)
	ListByStatus(context.Context, PaymentStatus) ([]Payment, error)
	ListByMethod(context.Context, PaymentMethod) ([]Payment, error)
	GetByID(context.Context, int64) (Payment, error)
	ReconcilePayments(context.Context, []RawPayment) []Payment
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidMethod = errors.New("invalid_method")
	ErrNotFound      = errors.New("not_found")
)
