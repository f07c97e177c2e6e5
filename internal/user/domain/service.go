package domain

import (
	"context"
	"errors"
)

type LoginRequest struct {
	Username string
	Password string
}

type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

type Service interface {
	Login(context.Context, LoginRequest) (Authenticated, error)
	Register(context.Context, RegisterRequest) (Authenticated, error)
	Me(context.Context) (Identity, error)
	List(context.Context) ([]User, error)
	GetByID(context.Context, int64) (User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
)
