package normalize

import (
	"github.com/shopspring/decimal"

	"salt_portal/internal/model"
)

// Envelope keys per resource.
const (
	planEnvelope         = "plans"
	paymentEnvelope      = "payments"
	subscriptionEnvelope = "subscriptions"
	auditLogEnvelope     = "logs"
)

var planFields = struct {
	ID, Name, Description, Role          []string
	PriceMonthly, PriceYearly, TrialDays []string
	Features, IsActive, Created          []string
}{
	ID:           []string{"id", "_id", "planId", "plan_id"},
	Name:         []string{"name", "planName", "plan_name", "title"},
	Description:  []string{"description", "desc"},
	Role:         []string{"role", "targetRole", "target_role"},
	PriceMonthly: []string{"priceMonthlyLkr", "priceMonthlyLKR", "price_monthly_lkr", "monthlyPrice"},
	PriceYearly:  []string{"priceYearlyLkr", "priceYearlyLKR", "price_yearly_lkr", "yearlyPrice"},
	TrialDays:    []string{"trialDays", "trial_days", "trialPeriodDays"},
	Features:     []string{"features", "featureList", "feature_list"},
	IsActive:     []string{"isActive", "is_active", "active"},
	Created:      []string{"createdAt", "created_at"},
}

var paymentFields = struct {
	ID, UserID, PlanID, Amount, Currency []string
	Status, OrderID, Created, Paid       []string
}{
	ID:       []string{"id", "_id", "paymentId", "payment_id"},
	UserID:   []string{"userId", "user_id"},
	PlanID:   []string{"planId", "plan_id"},
	Amount:   []string{"amountLkr", "amountLKR", "amount_lkr", "amount"},
	Currency: []string{"currency", "currencyCode", "currency_code"},
	Status:   []string{"status", "paymentStatus", "payment_status"},
	OrderID:  []string{"orderId", "order_id"},
	Created:  []string{"createdAt", "created_at"},
	Paid:     []string{"paidAt", "paid_at"},
}

var subscriptionFields = struct {
	ID, UserID, PlanID, Status, BillingCycle []string
	Amount, IsActive, Start, End             []string
}{
	ID:           []string{"id", "_id", "subscriptionId", "subscription_id"},
	UserID:       []string{"userId", "user_id"},
	PlanID:       []string{"planId", "plan_id"},
	Status:       []string{"status"},
	BillingCycle: []string{"billingCycle", "billing_cycle", "cycle"},
	Amount:       []string{"amountLkr", "amountLKR", "amount_lkr", "amount"},
	IsActive:     []string{"isActive", "is_active", "active"},
	Start:        []string{"startDate", "start_date", "startsAt"},
	End:          []string{"endDate", "end_date", "endsAt", "expiresAt"},
}

var auditLogFields = struct {
	ID, ActorID, Action, Resource, ResourceID, IP, Created []string
}{
	ID:         []string{"id", "_id", "logId", "log_id"},
	ActorID:    []string{"actorId", "actor_id", "userId", "user_id"},
	Action:     []string{"action", "event"},
	Resource:   []string{"resource", "resourceType", "resource_type", "entity"},
	ResourceID: []string{"resourceId", "resource_id", "entityId"},
	IP:         []string{"ipAddress", "ip_address", "ip"},
	Created:    []string{"createdAt", "created_at", "timestamp"},
}

// Plan parses one plan record. isActive defaults to true.
func Plan(r Record) model.Plan {
	return model.Plan{
		ID:              r.String(planFields.ID),
		Name:            r.String(planFields.Name),
		Description:     r.String(planFields.Description),
		Role:            model.ParseRole(r.String(planFields.Role)),
		PriceMonthlyLKR: r.Decimal(planFields.PriceMonthly),
		PriceYearlyLKR:  r.Decimal(planFields.PriceYearly),
		TrialDays:       r.Int(planFields.TrialDays),
		Features:        r.Strings(planFields.Features),
		IsActive:        r.Bool(true, planFields.IsActive),
		CreatedAt:       r.Timestamp(planFields.Created),
	}
}

// Plans unwraps the plans list.
func Plans(raw []byte) []model.Plan {
	return mapRecords(Envelope(raw, planEnvelope), Plan)
}

// Payment parses one payment record. Currency defaults to LKR.
func Payment(r Record) model.Payment {
	currency := r.String(paymentFields.Currency)
	if currency == "" {
		currency = "LKR"
	}
	userID := r.String(paymentFields.UserID)
	if userID == "" {
		if u, ok := r.Record("user"); ok {
			userID = u.String(userFields.ID)
		}
	}
	return model.Payment{
		ID:        r.String(paymentFields.ID),
		UserID:    userID,
		PlanID:    r.String(paymentFields.PlanID),
		AmountLKR: r.Decimal(paymentFields.Amount),
		Currency:  currency,
		Status:    r.String(paymentFields.Status),
		OrderID:   r.String(paymentFields.OrderID),
		CreatedAt: r.Timestamp(paymentFields.Created),
		PaidAt:    r.Timestamp(paymentFields.Paid),
	}
}

// Payments unwraps the payments list.
func Payments(raw []byte) []model.Payment {
	return mapRecords(Envelope(raw, paymentEnvelope), Payment)
}

// Subscription parses one subscription record. isActive defaults to true.
func Subscription(r Record) model.Subscription {
	return model.Subscription{
		ID:           r.String(subscriptionFields.ID),
		UserID:       r.String(subscriptionFields.UserID),
		PlanID:       r.String(subscriptionFields.PlanID),
		Status:       r.String(subscriptionFields.Status),
		BillingCycle: r.String(subscriptionFields.BillingCycle),
		AmountLKR:    r.Decimal(subscriptionFields.Amount),
		IsActive:     r.Bool(true, subscriptionFields.IsActive),
		StartDate:    r.Timestamp(subscriptionFields.Start),
		EndDate:      r.Timestamp(subscriptionFields.End),
	}
}

// Subscriptions unwraps the subscriptions list.
func Subscriptions(raw []byte) []model.Subscription {
	return mapRecords(Envelope(raw, subscriptionEnvelope), Subscription)
}

// AuditLog parses one audit log record.
func AuditLog(r Record) model.AuditLog {
	return model.AuditLog{
		ID:         r.String(auditLogFields.ID),
		ActorID:    r.String(auditLogFields.ActorID),
		Action:     r.String(auditLogFields.Action),
		Resource:   r.String(auditLogFields.Resource),
		ResourceID: r.String(auditLogFields.ResourceID),
		IPAddress:  r.String(auditLogFields.IP),
		CreatedAt:  r.Timestamp(auditLogFields.Created),
	}
}

// AuditLogs unwraps the audit log list.
func AuditLogs(raw []byte) []model.AuditLog {
	return mapRecords(Envelope(raw, auditLogEnvelope), AuditLog)
}

// TotalAmount sums payment amounts; handy for the revenue summary card.
func TotalAmount(payments []model.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.AmountLKR)
	}
	return total
}

func mapRecords[T any](records []Record, parse func(Record) T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, parse(r))
	}
	return out
}
