package server

import (
	"time"

	"github.com/shopspring/decimal"
	billingdashboarddomain "github.com/smallbiznis/billdesk/internal/billingdashboard/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	plandomain "github.com/smallbiznis/billdesk/internal/plan/domain"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
)

type planView struct {
	plandomain.Plan
	PriceDisplay string `json:"priceDisplay"`
}

func newPlanView(p plandomain.Plan) planView {
	return planView{Plan: p, PriceDisplay: billingdashboarddomain.FormatMoney(p.Price)}
}

func newPlanViews(items []plandomain.Plan) []planView {
	out := make([]planView, 0, len(items))
	for _, item := range items {
		out = append(out, newPlanView(item))
	}
	return out
}

type subscriptionView struct {
	subscriptiondomain.Subscription
	CustomerName  string `json:"customerName"`
	PlanName      string `json:"planName"`
	AmountDisplay string `json:"amountDisplay"`
}

func newSubscriptionView(sub subscriptiondomain.Subscription) subscriptionView {
	price := decimal.Zero
	if sub.Plan != nil {
		price = sub.Plan.Price
	}
	return subscriptionView{
		Subscription:  sub,
		CustomerName:  sub.CustomerName(),
		PlanName:      sub.PlanName(),
		AmountDisplay: billingdashboarddomain.FormatMoney(price),
	}
}

func newSubscriptionViews(items []subscriptiondomain.Subscription) []subscriptionView {
	out := make([]subscriptionView, 0, len(items))
	for _, item := range items {
		out = append(out, newSubscriptionView(item))
	}
	return out
}

type invoiceView struct {
	invoicedomain.Invoice
	Number        string `json:"number"`
	CustomerName  string `json:"customerName"`
	PlanName      string `json:"planName"`
	AmountDisplay string `json:"amountDisplay"`
	Overdue       bool   `json:"overdue"`
}

func newInvoiceView(inv invoicedomain.Invoice, now time.Time) invoiceView {
	return invoiceView{
		Invoice:       inv,
		Number:        inv.Number(),
		CustomerName:  inv.Subscription.CustomerName(),
		PlanName:      inv.Subscription.PlanName(),
		AmountDisplay: billingdashboarddomain.FormatMoney(inv.Amount),
		Overdue:       inv.IsOverdue(now),
	}
}

func newInvoiceViews(items []invoicedomain.Invoice, now time.Time) []invoiceView {
	out := make([]invoiceView, 0, len(items))
	for _, item := range items {
		out = append(out, newInvoiceView(item, now))
	}
	return out
}

type paymentView struct {
	paymentdomain.Payment
	InvoiceNumber string `json:"invoiceNumber"`
	CustomerName  string `json:"customerName"`
	AmountDisplay string `json:"amountDisplay"`
}

func newPaymentView(pay paymentdomain.Payment) paymentView {
	return paymentView{
		Payment:       pay,
		InvoiceNumber: pay.Invoice.Number(),
		CustomerName:  pay.Invoice.Subscription.CustomerName(),
		AmountDisplay: billingdashboarddomain.FormatMoney(pay.Amount),
	}
}

func newPaymentViews(items []paymentdomain.Payment) []paymentView {
	out := make([]paymentView, 0, len(items))
	for _, item := range items {
		out = append(out, newPaymentView(item))
	}
	return out
}

type paymentSummaryView struct {
	billingdashboarddomain.PaymentSummary
	RevenueDisplay string `json:"revenueDisplay"`
}
