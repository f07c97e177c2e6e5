package domain

import (
	"context"
	"errors"
)

type CreateCustomerRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
	// OwnerID is honoured for administrators only.
	OwnerID int64
}

type UpdateCustomerRequest struct {
	ID      int64
	Name    string
	Email   string
	Phone   string
	Address string
	OwnerID int64
}

type Service interface {
	List(context.Context) ([]Customer, error)
	GetByID(context.Context, int64) (Customer, error)
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	Delete(context.Context, int64) error
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidOwner = errors.New("invalid_owner")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
