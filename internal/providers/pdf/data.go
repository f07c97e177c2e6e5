package pdf

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/config"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
)

type InvoiceData struct {
	OrgName    string
	OrgAddress string
	OrgEmail   string

	InvoiceNumber string
	Status        string
	IssueDate     string
	DueDate       string

	BillToName  string
	BillToEmail string

	Items []InvoiceItem

	Total     string
	AmountDue string
}

type InvoiceItem struct {
	Description string
	Qty         int
	UnitPrice   string
	Amount      string
}

type ReceiptData struct {
	InvoiceData
	DatePaid      string
	Method        string
	Reference     string
	PaymentStatus string
	AmountPaid    string
}

// FromInvoice builds the document of a reconciled invoice. Placeholder
// subscriptions print their diagnostic labels as they are.
func FromInvoice(inv invoicedomain.Invoice, dash config.DashboardConfig) InvoiceData {
	currency := dash.CurrencySymbol
	sub := inv.Subscription

	description := sub.PlanName()
	if sub.Plan != nil && sub.Plan.BillingCycle != "" {
		description = fmt.Sprintf("%s (%s)", description, strings.ToLower(string(sub.Plan.BillingCycle)))
	}

	amount := money(currency, inv.Amount)
	amountDue := amount
	if inv.Status != invoicedomain.InvoiceStatusOpen {
		amountDue = money(currency, decimal.Zero)
	}

	return InvoiceData{
		OrgName:       dash.Organization.Name,
		OrgAddress:    dash.Organization.Address,
		OrgEmail:      dash.Organization.Email,
		InvoiceNumber: inv.Number(),
		Status:        string(inv.Status),
		IssueDate:     datePart(inv.IssuedAt),
		DueDate:       datePart(inv.DueDate),
		BillToName:    sub.CustomerName(),
		BillToEmail:   sub.CustomerEmail(),
		Items: []InvoiceItem{{
			Description: description,
			Qty:         1,
			UnitPrice:   amount,
			Amount:      amount,
		}},
		Total:     amount,
		AmountDue: amountDue,
	}
}

func FromPayment(pay paymentdomain.Payment, dash config.DashboardConfig) ReceiptData {
	return ReceiptData{
		InvoiceData:   FromInvoice(pay.Invoice, dash),
		DatePaid:      datePart(pay.PaidAt),
		Method:        string(pay.Method),
		Reference:     pay.Reference,
		PaymentStatus: string(pay.Status),
		AmountPaid:    money(dash.CurrencySymbol, pay.Amount),
	}
}

func money(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// datePart trims the time of day from a billing API timestamp.
func datePart(value string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexAny(value, "T "); i > 0 {
		return value[:i]
	}
	return value
}
