package domain

import "github.com/shopspring/decimal"

type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "MONTHLY"
	BillingCycleQuarterly BillingCycle = "QUARTERLY"
	BillingCycleYearly    BillingCycle = "YEARLY"
)

func (b BillingCycle) Valid() bool {
	switch b {
	case BillingCycleMonthly, BillingCycleQuarterly, BillingCycleYearly:
		return true
	default:
		return false
	}
}

type Plan struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	BillingCycle BillingCycle    `json:"billingCycle"`
	Active       bool            `json:"active"`
}

func (p Plan) IsPlaceholder() bool {
	return p.ID == 0
}
