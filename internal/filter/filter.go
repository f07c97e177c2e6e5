// Package filter implements the list search used by every collection page:
// a case-insensitive text match over entity-specific fields, ANDed with
// exact status and method filters.
package filter

import (
	"strings"

	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/billdesk/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/billdesk/internal/payment/domain"
	plandomain "github.com/smallbiznis/billdesk/internal/plan/domain"
	subscriptiondomain "github.com/smallbiznis/billdesk/internal/subscription/domain"
)

// All matches every status or method.
const All = "ALL"

// Criteria is one search. Empty fields match everything.
type Criteria struct {
	Term   string
	Status string
	Method string
}

func MatchesInvoice(inv invoicedomain.Invoice, c Criteria) bool {
	return matchesEnum(string(inv.Status), c.Status) &&
		containsAny(c.Term, inv.Subscription.CustomerName(), inv.Subscription.CustomerEmail(), inv.Subscription.PlanName())
}

func MatchesSubscription(sub subscriptiondomain.Subscription, c Criteria) bool {
	return matchesEnum(string(sub.Status), c.Status) &&
		containsAny(c.Term, sub.CustomerName(), sub.CustomerEmail(), sub.PlanName())
}

func MatchesPayment(pay paymentdomain.Payment, c Criteria) bool {
	sub := pay.Invoice.Subscription
	return matchesEnum(string(pay.Status), c.Status) &&
		matchesEnum(string(pay.Method), c.Method) &&
		containsAny(c.Term, sub.CustomerName(), sub.CustomerEmail(), pay.Reference)
}

func MatchesCustomer(customer customerdomain.Customer, c Criteria) bool {
	return containsAny(c.Term, customer.Name, customer.Email)
}

// MatchesPlan treats Status as the active flag: "ACTIVE" or "INACTIVE".
func MatchesPlan(plan plandomain.Plan, c Criteria) bool {
	status := "INACTIVE"
	if plan.Active {
		status = "ACTIVE"
	}
	return matchesEnum(status, c.Status) && containsAny(c.Term, plan.Name)
}

// Collection returns the items accepted by match, in their original order.
// items is never modified.
func Collection[T any](items []T, c Criteria, match func(T, Criteria) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if match(item, c) {
			out = append(out, item)
		}
	}
	return out
}

func matchesEnum(value, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, All) {
		return true
	}
	return value == want
}

func containsAny(term string, fields ...string) bool {
	// The term is matched as typed; only the empty string matches everything.
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
