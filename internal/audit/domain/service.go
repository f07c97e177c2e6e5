package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/billdesk/pkg/db/pagination"
)

const (
	ActionLogin               = "auth.login"
	ActionLogout              = "auth.logout"
	ActionCustomerCreate      = "customer.create"
	ActionCustomerUpdate      = "customer.update"
	ActionCustomerDelete      = "customer.delete"
	ActionPlanCreate          = "plan.create"
	ActionPlanUpdate          = "plan.update"
	ActionPlanDelete          = "plan.delete"
	ActionSubscriptionCreate  = "subscription.create"
	ActionSubscriptionUpdate  = "subscription.update"
	ActionSubscriptionRenew   = "subscription.renew"
	ActionSubscriptionDelete  = "subscription.delete"
	ActionInvoicePay          = "invoice.pay"
	ActionInvoicePayRejected  = "invoice.pay_rejected"
	ActionAuthorizationDenied = "authorization.denied"
)

type ListAuditLogRequest struct {
	pagination.Pagination
	Action     string     `form:"action"`
	TargetType string     `form:"target_type"`
	TargetID   string     `form:"target_id"`
	ActorID    string     `form:"actor_id"`
	StartAt    *time.Time `form:"start_at" time_format:"2006-01-02T15:04:05Z07:00"`
	EndAt      *time.Time `form:"end_at" time_format:"2006-01-02T15:04:05Z07:00"`
}

type ListAuditLogResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	// AuditLog records action on the target. The actor, client address and
	// request id are taken from ctx.
	AuditLog(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var (
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidAction    = errors.New("invalid_action")
)
