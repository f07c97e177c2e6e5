package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/billdesk/internal/clock"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
)

var hundred = decimal.NewFromInt(100)

// Aggregate computes the snapshot over already reconciled collections.
// Monthly revenue counts successful payments whose paidAt falls in the local
// calendar month of now.
func Aggregate(
	customers []customerdomain.Customer,
	subscriptions []subscriptiondomain.Subscription,
	invoices []invoicedomain.Invoice,
	payments []paymentdomain.Payment,
	now time.Time,
) Snapshot {
	snap := Snapshot{
		TotalCustomers:     len(customers),
		TotalSubscriptions: len(subscriptions),
		TotalInvoices:      len(invoices),
		TotalPayments:      len(payments),
		MonthlyRevenue:     decimal.Zero,
		TotalRevenue:       decimal.Zero,
	}

	for _, sub := range subscriptions {
		if sub.Status == subscriptiondomain.SubscriptionStatusActive {
			snap.ActiveSubscriptions++
		}
	}

	for _, inv := range invoices {
		switch inv.Status {
		case invoicedomain.InvoiceStatusOpen:
			snap.OpenInvoices++
			if inv.IsOverdue(now) {
				snap.OverdueInvoices++
			}
		case invoicedomain.InvoiceStatusPaid:
			snap.PaidInvoices++
		}
	}

	local := now.In(time.Local)
	for _, pay := range payments {
		if pay.Status != paymentdomain.PaymentStatusSuccess {
			continue
		}
		snap.SuccessfulPayments++
		snap.TotalRevenue = snap.TotalRevenue.Add(pay.Amount)
		if sameMonth(pay.PaidAt, local) {
			snap.MonthlyRevenue = snap.MonthlyRevenue.Add(pay.Amount)
		}
	}

	snap.SuccessRate = Percent(snap.SuccessfulPayments, snap.TotalPayments)
	snap.ActivityRate = Percent(snap.ActiveSubscriptions, snap.TotalSubscriptions)
	return snap
}

// ComputeSnapshot is Aggregate with role gating: non-administrators always
// get a zero customer count.
func ComputeSnapshot(
	customers []customerdomain.Customer,
	subscriptions []subscriptiondomain.Subscription,
	invoices []invoicedomain.Invoice,
	payments []paymentdomain.Payment,
	isAdmin bool,
	now time.Time,
) Snapshot {
	if !isAdmin {
		customers = nil
	}
	return Aggregate(customers, subscriptions, invoices, payments, now)
}

func SummarizePayments(payments []paymentdomain.Payment) PaymentSummary {
	summary := PaymentSummary{Total: len(payments), Revenue: decimal.Zero}
	for _, pay := range payments {
		switch pay.Status {
		case paymentdomain.PaymentStatusSuccess:
			summary.Successful++
			summary.Revenue = summary.Revenue.Add(pay.Amount)
		case paymentdomain.PaymentStatusFailed:
			summary.Failed++
		}
	}
	summary.SuccessRate = Percent(summary.Successful, summary.Total)
	return summary
}

// Percent returns part/total as a percentage rounded to one decimal, or 0
// when total is not positive.
func Percent(part, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
}

// FormatMoney renders an amount with exactly two decimals.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func sameMonth(value string, now time.Time) bool {
	t, ok := clock.ParseLocal(value)
	if !ok {
		return false
	}
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}
