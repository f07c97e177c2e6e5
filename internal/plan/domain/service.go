package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type UpsertPlanRequest struct {
	Name         string
	Price        decimal.Decimal
	BillingCycle BillingCycle
	Active       bool
}

type Service interface {
	List(context.Context) ([]Plan, error)
	// ListActive returns the plans offered for new subscriptions.
	ListActive(context.Context) ([]Plan, error)
	GetByID(context.Context, int64) (Plan, error)
	Create(context.Context, UpsertPlanRequest) (Plan, error)
	Update(context.Context, int64, UpsertPlanRequest) (Plan, error)
	// Delete disables the plan; the billing API keeps it for existing subscriptions.
	Delete(context.Context, int64) error
}

var (
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidBillingCycle = errors.New("invalid_billing_cycle")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
)
