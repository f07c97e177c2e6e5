package domain

import "context"

// Payload is the billing API body for create and update.
type Payload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	UserID  int64  `json:"userId"`
}

type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	FindByID(ctx context.Context, id int64) (Customer, error)
	Insert(ctx context.Context, payload Payload) (Customer, error)
	Update(ctx context.Context, id int64, payload Payload) (Customer, error)
	Delete(ctx context.Context, id int64) error
}
