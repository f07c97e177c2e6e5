package domain

import "context"

// AuthResponse is the billing API reply to login and register.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Repository interface {
	Login(ctx context.Context, username, password string) (AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (AuthResponse, error)
	Me(ctx context.Context) (Identity, error)
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id int64) (User, error)
}
