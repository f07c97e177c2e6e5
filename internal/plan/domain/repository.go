package domain

import (
	"context"
	"encoding/json"
)

// Payload is the billing API body for create and update. Price is sent as
// a bare JSON number.
type Payload struct {
	Name         string       `json:"name"`
	Price        json.Number  `json:"price"`
	BillingCycle BillingCycle `json:"billingCycle"`
	Active       bool         `json:"active"`
}

type Repository interface {
	List(ctx context.Context) ([]Plan, error)
	FindByID(ctx context.Context, id int64) (Plan, error)
	Insert(ctx context.Context, payload Payload) (Plan, error)
	Update(ctx context.Context, id int64, payload Payload) (Plan, error)
	Delete(ctx context.Context, id int64) error
}
