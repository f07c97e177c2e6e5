package domain

import "context"

type CreatePayload struct {
	CustomerID int64 `json:"customerId,omitempty"`
	PlanID     int64 `json:"planId"`
}

type UpdatePayload struct {
	PlanID int64              `json:"planId,omitempty"`
	Status SubscriptionStatus `json:"status"`
}

type Repository interface {
	List(ctx context.Context) ([]Subscription, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Subscription, error)
	FindByID(ctx context.Context, id int64) (Subscription, error)
	Insert(ctx context.Context, payload CreatePayload) (Subscription, error)
	Update(ctx context.Context, id int64, payload UpdatePayload) (Subscription, error)
	Renew(ctx context.Context, id int64) (Subscription, error)
	Delete(ctx context.Context, id int64) error
}
