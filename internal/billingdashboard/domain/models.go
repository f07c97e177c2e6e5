package domain

import "github.com/shopspring/decimal"

// Snapshot is the dashboard KPI summary, recomputed on every load.
type Snapshot struct {
	TotalCustomers      int             `json:"totalCustomers"`
	ActiveSubscriptions int             `json:"activeSubscriptions"`
	TotalSubscriptions  int             `json:"totalSubscriptions"`
	OpenInvoices        int             `json:"openInvoices"`
	OverdueInvoices     int             `json:"overdueInvoices"`
	PaidInvoices        int             `json:"paidInvoices"`
	TotalInvoices       int             `json:"totalInvoices"`
	SuccessfulPayments  int             `json:"successfulPayments"`
	TotalPayments       int             `json:"totalPayments"`
	MonthlyRevenue      decimal.Decimal `json:"monthlyRevenue"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	// SuccessRate and ActivityRate are percentages with one decimal.
	SuccessRate  decimal.Decimal `json:"successRate"`
	ActivityRate decimal.Decimal `json:"activityRate"`
}

// PaymentSummary heads the payments page.
type PaymentSummary struct {
	Successful  int             `json:"successful"`
	Failed      int             `json:"failed"`
	Total       int             `json:"total"`
	Revenue     decimal.Decimal `json:"revenue"`
	SuccessRate decimal.Decimal `json:"successRate"`
}
