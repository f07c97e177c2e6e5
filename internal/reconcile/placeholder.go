package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	plandomain "github.com/smallbiznis/billdesk/internal/plan/domain"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
)

// Every stand-in built here has id 0 and labels that carry the unresolved
// id or amount, so an operator can spot it in the UI. They imply no business state.

const (
	labelNotAvailable     = "No disponible"
	labelCustomerNotFound = "Cliente no encontrado"
	labelPlanNotFound     = "Plan no encontrado"
)

func PlaceholderCustomer(name, email string) customerdomain.Customer {
	return customerdomain.Customer{
		ID:    0,
		Name:  name,
		Email: email,
	}
}

func PlaceholderPlan(name string, price decimal.Decimal) plandomain.Plan {
	return plandomain.Plan{
		ID:           0,
		Name:         name,
		Price:        price,
		BillingCycle: plandomain.BillingCycleMonthly,
		Active:       true,
	}
}

// PlaceholderSubscription stands in for the subscription of an invoice
// during list reconciliation.
func PlaceholderSubscription(subscriptionID int64, amount decimal.Decimal) subscriptiondomain.Subscription {
	return placeholderSubscription(
		PlaceholderCustomer(fmt.Sprintf("Cliente (ID: %d)", subscriptionID), labelNotAvailable),
		PlaceholderPlan(fmt.Sprintf("Plan de $%s", amount.String()), amount),
	)
}

// UnresolvedSubscription stands in for the subscription of a single invoice
// looked up by id.
func UnresolvedSubscription() subscriptiondomain.Subscription {
	return placeholderSubscription(
		PlaceholderCustomer(labelCustomerNotFound, ""),
		PlaceholderPlan(labelPlanNotFound, decimal.Zero),
	)
}

// PlaceholderInvoice stands in for the invoice of a payment.
func PlaceholderInvoice(invoiceID int64, amount decimal.Decimal) invoicedomain.Invoice {
	return invoicedomain.Invoice{
		ID: 0,
		Subscription: placeholderSubscription(
			PlaceholderCustomer(fmt.Sprintf("Cliente (Factura ID: %d)", invoiceID), labelNotAvailable),
			PlaceholderPlan(fmt.Sprintf("Plan de $%s", amount.String()), amount),
		),
		Amount: amount,
		Status: invoicedomain.InvoiceStatusOpen,
	}
}

// CompleteSubscription fills a nil customer or plan so callers never see nil.
func CompleteSubscription(sub subscriptiondomain.Subscription) subscriptiondomain.Subscription {
	if sub.Customer == nil {
		customer := PlaceholderCustomer(labelCustomerNotFound, labelNotAvailable)
		sub.Customer = &customer
	}
	if sub.Plan == nil {
		plan := PlaceholderPlan(labelPlanNotFound, decimal.Zero)
		sub.Plan = &plan
	}
	return sub
}

func placeholderSubscription(customer customerdomain.Customer, plan plandomain.Plan) subscriptiondomain.Subscription {
	return subscriptiondomain.Subscription{
		ID:       0,
		Customer: &customer,
		Plan:     &plan,
		Status:   subscriptiondomain.SubscriptionStatusActive,
	}
}
