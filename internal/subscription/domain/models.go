package domain

import (
	customerdomain "github.com/smallbiznis/billdesk/internal/customer/domain"
	plandomain "github.com/smallbiznis/billdesk/internal/plan/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPaused   SubscriptionStatus = "PAUSED"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusPaused, SubscriptionStatusCanceled:
		return true
	default:
		return false
	}
}

// Subscription as served by the billing API. Customer and Plan are never nil
// once the service has handed the value out.
type Subscription struct {
	ID              int64                    `json:"id"`
	Customer        *customerdomain.Customer `json:"customer"`
	Plan            *plandomain.Plan         `json:"plan"`
	Status          SubscriptionStatus       `json:"status"`
	StartDate       string                   `json:"startDate"`
	NextBillingDate string                   `json:"nextBillingDate"`
	CreatedAt       string                   `json:"createdAt"`
}

func (s Subscription) IsPlaceholder() bool {
	return s.ID == 0
}

// CustomerName and friends tolerate unreconciled values.
func (s Subscription) CustomerName() string {
	if s.Customer == nil {
		return ""
	}
	return s.Customer.Name
}

func (s Subscription) CustomerEmail() string {
	if s.Customer == nil {
		return ""
	}
	return s.Customer.Email
}

func (s Subscription) PlanName() string {
	if s.Plan == nil {
		return ""
	}
	return s.Plan.Name
}
