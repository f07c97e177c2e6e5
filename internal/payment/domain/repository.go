package domain

import "context"

type ListFilter struct {
	Status PaymentStatus
	Method PaymentMethod
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]RawPayment, error)
	FindByID(ctx context.Context, id int64) (RawPayment, error)
}
