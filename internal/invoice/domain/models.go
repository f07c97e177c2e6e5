package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/clock"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
)

type InvoiceStatus string

const (
	InvoiceStatusOpen InvoiceStatus = "OPEN"
	InvoiceStatusPaid InvoiceStatus = "PAID"
	InvoiceStatusVoid InvoiceStatus = "VOID"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	default:
		return false
	}
}

// RawInvoice is the billing API shape: the subscription is referenced by id only.
type RawInvoice struct {
	ID             int64           `json:"id"`
	SubscriptionID int64           `json:"subscriptionId"`
	Amount         decimal.Decimal `json:"amount"`
	Status         InvoiceStatus   `json:"status"`
	DueDate        string          `json:"dueDate"`
	IssuedAt       string          `json:"issuedAt"`
}

// Invoice is a RawInvoice with its subscription embedded.
type Invoice struct {
	ID           int64                           `json:"id"`
	Subscription subscriptiondomain.Subscription `json:"subscription"`
	Amount       decimal.Decimal                 `json:"amount"`
	Status       InvoiceStatus                   `json:"status"`
	DueDate      string                          `json:"dueDate"`
	IssuedAt     string                          `json:"issuedAt"`
}

// Number is the display number, e.g. INV-0042.
func (i Invoice) Number() string {
	return fmt.Sprintf("INV-%04d", i.ID)
}

// IsOverdue reports an open invoice whose due date is before now.
func (i Invoice) IsOverdue(now time.Time) bool {
	if i.Status != InvoiceStatusOpen {
		return false
	}
	due, ok := clock.ParseLocal(i.DueDate)
	if !ok {
		return false
	}
	return due.Before(now)
}

func (i Invoice) IsPlaceholder() bool {
	return i.ID == 0
}
