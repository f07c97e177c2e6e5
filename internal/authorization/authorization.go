package authorization

import (
	"context"
	"errors"
)

const (
	ObjectCustomer     = "customer"
	ObjectPlan         = "plan"
	ObjectSubscription = "subscription"
	ObjectInvoice      = "invoice"
	ObjectPayment      = "payment"
	ObjectDashboard    = "dashboard"
	ObjectUser         = "user"
	ObjectAuditLog     = "audit_log"
)

const (
	ActionView        = "view"
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionDelete      = "delete"
	ActionPay         = "pay"
	ActionRenew       = "renew"
	ActionAssignOwner = "assign_owner"
)

const (
	RoleAdmin = "role:admin"
	RoleUser  = "role:user"
)

type Service interface {
	// Authorize returns ErrForbidden unless the session in ctx may perform
	// action on object.
	Authorize(ctx context.Context, object, action string) error
	// Capabilities lists the "object.action" pairs allowed to the session in ctx.
	Capabilities(ctx context.Context) ([]string, error)
}

var (
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidObject   = errors.New("invalid_object")
	ErrInvalidAction   = errors.New("invalid_action")
)
