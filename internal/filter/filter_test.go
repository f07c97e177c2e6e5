package filter

import (
	"testing"

	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	plandomain "github.com/smallbiznis/billdesk/internal/plan/domain"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
	"github.com/stretchr/testify/assert"
)

func sub(id int64, name, email, plan string, status subscriptiondomain.SubscriptionStatus) subscriptiondomain.Subscription {
	return subscriptiondomain.Subscription{
		ID:       id,
		Customer: &customerdomain.Customer{Name: name, Email: email},
		Plan:     &plandomain.Plan{Name: plan, Price: decimal.NewFromInt(10)},
		Status:   status,
	}
}

func TestMatchesInvoice(t *testing.T) {
	inv := invoicedomain.Invoice{
		ID:           1,
		Subscription: sub(1, "Acme Corp", "billing@acme.io", "Pro", subscriptiondomain.SubscriptionStatusActive),
		Status:       invoicedomain.InvoiceStatusOpen,
	}

	assert.True(t, MatchesInvoice(inv, Criteria{}))
	assert.True(t, MatchesInvoice(inv, Criteria{Term: "ACME"}))
	assert.True(t, MatchesInvoice(inv, Criteria{Term: "acme.io"}))
	assert.True(t, MatchesInvoice(inv, Criteria{Term: "pro", Status: "OPEN"}))
	assert.True(t, MatchesInvoice(inv, Criteria{Status: All}))
	assert.False(t, MatchesInvoice(inv, Criteria{Term: "pro", Status: "PAID"}))
	assert.False(t, MatchesInvoice(inv, Criteria{Term: "globex"}))
	assert.False(t, MatchesInvoice(inv, Criteria{Status: "open"}))
}

func TestMatchesPaymentComposesWithAnd(t *testing.T) {
	pay := paymentdomain.Payment{
		Invoice:   invoicedomain.Invoice{Subscription: sub(1, "Acme", "a@acme.io", "Pro", subscriptiondomain.SubscriptionStatusActive)},
		Method:    paymentdomain.PaymentMethodCard,
		Status:    paymentdomain.PaymentStatusSuccess,
		Reference: "TX-9981",
	}

	assert.True(t, MatchesPayment(pay, Criteria{Term: "tx-99", Status: "SUCCESS", Method: "CARD"}))
	assert.True(t, MatchesPayment(pay, Criteria{Status: All, Method: All}))
	assert.False(t, MatchesPayment(pay, Criteria{Term: "tx-99", Status: "SUCCESS", Method: "CASH"}))
	assert.False(t, MatchesPayment(pay, Criteria{Term: "tx-99", Status: "FAILED", Method: "CARD"}))
	assert.False(t, MatchesPayment(pay, Criteria{Term: "pro"}))
}

func TestMatchesCustomerAndPlan(t *testing.T) {
	customer := customerdomain.Customer{Name: "Globex", Email: "hank@globex.com"}
	assert.True(t, MatchesCustomer(customer, Criteria{Term: "HANK"}))
	assert.False(t, MatchesCustomer(customer, Criteria{Term: "acme"}))

	plan := plandomain.Plan{Name: "Enterprise", Active: false}
	assert.True(t, MatchesPlan(plan, Criteria{Term: "enter"}))
	assert.True(t, MatchesPlan(plan, Criteria{Status: "INACTIVE"}))
	assert.False(t, MatchesPlan(plan, Criteria{Status: "ACTIVE"}))
}

func TestCollectionPreservesOrderAndInput(t *testing.T) {
	subs := []subscriptiondomain.Subscription{
		sub(1, "Acme", "", "Pro", subscriptiondomain.SubscriptionStatusActive),
		sub(2, "Globex", "", "Basic", subscriptiondomain.SubscriptionStatusPaused),
		sub(3, "Acme West", "", "Basic", subscriptiondomain.SubscriptionStatusActive),
	}
	before := append([]subscriptiondomain.Subscription(nil), subs...)

	out := Collection(subs, Criteria{Term: "acme", Status: "ACTIVE"}, MatchesSubscription)

	if assert.Len(t, out, 2) {
		assert.Equal(t, int64(1), out[0].ID)
		assert.Equal(t, int64(3), out[1].ID)
	}
	assert.Equal(t, before, subs)
	assert.Empty(t, Collection(nil, Criteria{}, MatchesSubscription))
}

func TestPlaceholderRowsAreSearchable(t *testing.T) {
	inv := invoicedomain.Invoice{Subscription: sub(0, "Cliente (ID: 42)", "No disponible", "Plan de $10", subscriptiondomain.SubscriptionStatusActive)}
	assert.True(t, MatchesInvoice(inv, Criteria{Term: "id: 42"}))
}

func TestSearchTermIsMatchedAsTyped(t *testing.T) {
	customer := customerdomain.Customer{Name: "John Doe", Email: "john@doe.io"}

	assert.True(t, MatchesCustomer(customer, Criteria{Term: ""}))
	assert.True(t, MatchesCustomer(customer, Criteria{Term: "john "}))
	assert.False(t, MatchesCustomer(customer, Criteria{Term: "Doe "}))
	assert.False(t, MatchesCustomer(customer, Criteria{Term: "   "}))
}
