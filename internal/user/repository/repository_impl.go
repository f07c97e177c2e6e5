package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/billdesk/internal/billingapi"
	"github.com/smallbiznis/billdesk/internal/user/domain"
)

type repo struct {
	client *billingapi.Client
}

func Provide(client *billingapi.Client) domain.Repository {
	return &repo{client: client}
}

func (r *repo) Login(ctx context.Context, username, password string) (domain.AuthResponse, error) {
	var resp domain.AuthResponse
	err := r.client.Post(ctx, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	return resp, err
}

func (r *repo) Register(ctx context.Context, username, email, password string) (domain.AuthResponse, error) {
	var resp domain.AuthResponse
	err := r.client.Post(ctx, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	return resp, err
}

func (r *repo) Me(ctx context.Context) (domain.Identity, error) {
	var identity domain.Identity
	err := r.client.Get(ctx, "/auth/me", nil, &identity)
	return identity, err
}

func (r *repo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.client.Get(ctx, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) FindByID(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := r.client.Get(ctx, fmt.Sprintf("/users/%d", id), nil, &user)
	return user, err
}
