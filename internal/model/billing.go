package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Plan is a subscription offering shown on the plans page.
type Plan struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Role            Role            `json:"role,omitempty"`
	PriceMonthlyLKR decimal.Decimal `json:"priceMonthlyLkr"`
	PriceYearlyLKR  decimal.Decimal `json:"priceYearlyLkr"`
	TrialDays       int64           `json:"trialDays"`
	Features        []string        `json:"features"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       string          `json:"createdAt,omitempty"`
}

// Payment is one gateway payment as listed in the admin console.
type Payment struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	PlanID    string          `json:"planId,omitempty"`
	AmountLKR decimal.Decimal `json:"amountLkr"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	OrderID   string          `json:"orderId,omitempty"`
	CreatedAt string          `json:"createdAt,omitempty"`
	PaidAt    string          `json:"paidAt,omitempty"`
}

// PaymentCompleted is the status of a settled payment.
const PaymentCompleted = "COMPLETED"

// Completed reports whether the payment settled. Backends disagree on case.
func (p Payment) Completed() bool {
	return strings.EqualFold(p.Status, PaymentCompleted)
}

// Subscription binds a user to a plan for a period.
type Subscription struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	PlanID       string          `json:"planId"`
	Status       string          `json:"status"`
	BillingCycle string          `json:"billingCycle,omitempty"`
	AmountLKR    decimal.Decimal `json:"amountLkr"`
	IsActive     bool            `json:"isActive"`
	StartDate    string          `json:"startDate,omitempty"`
	EndDate      string          `json:"endDate,omitempty"`
}

// AuditLog records one administrative action.
type AuditLog struct {
	ID         string `json:"id"`
	ActorID    string `json:"actorId"`
	Action     string `json:"action"`
	Resource   string `json:"resource,omitempty"`
	ResourceID string `json:"resourceId,omitempty"`
	IPAddress  string `json:"ipAddress,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}
