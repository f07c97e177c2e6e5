package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Snapshot loads every collection visible to the session in the context
	// and aggregates it.
	Snapshot(ctx context.Context) (Snapshot, error)
}

var ErrUnauthenticated = errors.New("unauthenticated")
