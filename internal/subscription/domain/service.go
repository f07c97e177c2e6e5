package domain

import (
	"context"
	"errors"
)

type CreateSubscriptionRequest struct {
	CustomerID int64
	PlanID     int64
}

// UpdateSubscriptionRequest changes the plan, the status, or both. Zero
// values keep the current setting.
type UpdateSubscriptionRequest struct {
	ID     int64
	PlanID int64
	Status SubscriptionStatus
}

type Service interface {
	List(context.Context) ([]Subscription, error)
	ListByCustomer(context.Context, int64) ([]Subscription, error)
	GetByID(context.Context, int64) (Subscription, error)
	Create(context.Context, CreateSubscriptionRequest) (Subscription, error)
	Update(context.Context, UpdateSubscriptionRequest) (Subscription, error)
	Renew(context.Context, int64) (Subscription, error)
	Delete(context.Context, int64) error
}

var (
	ErrInvalidPlan     = errors.New("invalid_plan")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
