package domain

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
)

type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCash     PaymentMethod = "CASH"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCash:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

type RawPayment struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoiceId"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Status    PaymentStatus   `json:"status"`
	PaidAt    string          `json:"paidAt"`
	Reference string          `json:"reference"`
}

type Payment struct {
	ID        int64                 `json:"id"`
	Invoice   invoicedomain.Invoice `json:"invoice"`
	Amount    decimal.Decimal       `json:"amount"`
	Method    PaymentMethod         `json:"method"`
	Status    PaymentStatus         `json:"status"`
	PaidAt    string                `json:"paidAt"`
	Reference string                `json:"reference"`
}
