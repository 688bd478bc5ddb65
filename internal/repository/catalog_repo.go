package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"salt_portal/internal/model"
)

// PlanRecord is a stored subscription plan.
type PlanRecord struct {
	ID           string
	Name         string
	Description  string
	Role         model.Role
	PriceMonthly decimal.Decimal
	PriceYearly  decimal.Decimal
	TrialDays    int64
	Features     []string
	IsActive     bool
	CreatedAt    time.Time
}

// PaymentRecord is a stored gateway payment.
type PaymentRecord struct {
	ID        string
	UserID    string
	PlanID    string
	Amount    decimal.Decimal
	Currency  string
	Status    string
	OrderID   string
	CreatedAt time.Time
	PaidAt    *time.Time
}

// SubscriptionRecord is a stored subscription.
type SubscriptionRecord struct {
	ID           string
	UserID       string
	PlanID       string
	Status       string
	BillingCycle string
	Amount       decimal.Decimal
	IsActive     bool
	StartDate    time.Time
	EndDate      time.Time
}

// PaymentFilters narrows a payment listing.
type PaymentFilters struct {
	UserID *string
	Status *string
}

// CatalogRepository serves plans, payments and subscriptions.
type CatalogRepository interface {
	Plans(ctx context.Context) ([]PlanRecord, error)
	Payments(ctx context.Context, filters PaymentFilters) ([]PaymentRecord, error)
	Subscriptions(ctx context.Context) ([]SubscriptionRecord, error)
}

// MemoryCatalog is a fixture-backed CatalogRepository.
type MemoryCatalog struct {
	mu            sync.RWMutex
	plans         []PlanRecord
	payments      []PaymentRecord
	subscriptions []SubscriptionRecord
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{}
}

func (c *MemoryCatalog) AddPlan(p PlanRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans = append(c.plans, p)
}

func (c *MemoryCatalog) AddPayment(p PaymentRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payments = append(c.payments, p)
}

func (c *MemoryCatalog) AddSubscription(s SubscriptionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions = append(c.subscriptions, s)
}

func (c *MemoryCatalog) Plans(_ context.Context) ([]PlanRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]PlanRecord(nil), c.plans...), nil
}

func (c *MemoryCatalog) Payments(_ context.Context, filters PaymentFilters) ([]PaymentRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []PaymentRecord
	for _, p := range c.payments {
		if filters.UserID != nil && *filters.UserID != "" && p.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && *filters.Status != "" && !strings.EqualFold(p.Status, *filters.Status) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *MemoryCatalog) Subscriptions(_ context.Context) ([]SubscriptionRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]SubscriptionRecord(nil), c.subscriptions...), nil
}

// SeedCatalog loads the demo plans and a little billing history.
func SeedCatalog(c *MemoryCatalog, now time.Time) {
	c.AddPlan(PlanRecord{
		ID: "plan-landowner", Name: "Landowner Standard", Role: model.RoleLandowner,
		Description:  "Saltern tracking and harvest records",
		PriceMonthly: decimal.NewFromInt(1500), PriceYearly: decimal.NewFromInt(15000),
		TrialDays: 14, Features: []string{"Harvest log", "Saltern map"}, IsActive: true, CreatedAt: now,
	})
	c.AddPlan(PlanRecord{
		ID: "plan-distributor", Name: "Distributor", Role: model.RoleDistributor,
		PriceMonthly: decimal.NewFromInt(2500), PriceYearly: decimal.NewFromInt(25000),
		TrialDays: 14, Features: []string{"Orders", "Stock"}, IsActive: true, CreatedAt: now,
	})
	c.AddPlan(PlanRecord{
		ID: "plan-laboratory", Name: "Laboratory", Role: model.RoleLaboratory,
		PriceMonthly: decimal.RequireFromString("3999.50"), PriceYearly: decimal.NewFromInt(39995),
		TrialDays: 30, Features: []string{"Quality reports"}, IsActive: true, CreatedAt: now,
	})
	c.AddPlan(PlanRecord{
		ID: "plan-legacy", Name: "Legacy Seller", Role: model.RoleSeller,
		PriceMonthly: decimal.NewFromInt(1000), IsActive: false, CreatedAt: now,
	})

	paid := now.Add(-48 * time.Hour)
	c.AddPayment(PaymentRecord{
		ID: "pay-1", UserID: "seed-user", PlanID: "plan-landowner", Amount: decimal.NewFromInt(1500),
		Currency: "LKR", Status: "COMPLETED", OrderID: "ORD-1", CreatedAt: paid, PaidAt: &paid,
	})
	c.AddPayment(PaymentRecord{
		ID: "pay-2", UserID: "seed-user", PlanID: "plan-landowner", Amount: decimal.NewFromInt(1500),
		Currency: "LKR", Status: "PENDING", OrderID: "ORD-2", CreatedAt: now,
	})
	c.AddSubscription(SubscriptionRecord{
		ID: "sub-1", UserID: "seed-user", PlanID: "plan-landowner", Status: "ACTIVE", BillingCycle: "MONTHLY",
		Amount: decimal.NewFromInt(1500), IsActive: true, StartDate: paid, EndDate: paid.AddDate(0, 1, 0),
	})
}
