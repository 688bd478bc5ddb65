package service

import (
	"context"
	"time"

	"salt_portal/internal/model"
	"salt_portal/internal/repository"
)

// Document is a JSON body as the platform backend shapes it. Field
// naming and timestamp encoding differ per resource, matching the mix
// of services the real platform fronts.
type Document = map[string]any

// AdminService serves the list endpoints behind the admin console.
type AdminService interface {
	Users(ctx context.Context) (Document, error)
	Plans(ctx context.Context) (Document, error)
	Payments(ctx context.Context, filters repository.PaymentFilters) (Document, error)
	Subscriptions(ctx context.Context) (Document, error)
	AuditLogs(ctx context.Context, filters repository.AuditFilters) (Document, error)
	ProfileDocument(account *model.Account) Document
}

type adminService struct {
	users   repository.UserRepository
	catalog repository.CatalogRepository
	audit   repository.AuditRepository
	now     func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(users repository.UserRepository, catalog repository.CatalogRepository, audit repository.AuditRepository) AdminService {
	return &adminService{users: users, catalog: catalog, audit: audit, now: time.Now}
}

// grpcTimestamp renders t as a protobuf Timestamp.
func grpcTimestamp(t time.Time) Document {
	return Document{"seconds": t.Unix(), "nanos": t.Nanosecond()}
}

// longTimestamp renders t with seconds as a wrapped 64-bit integer.
func longTimestamp(t time.Time) Document {
	secs := t.Unix()
	return Document{
		"seconds": Document{"low": int32(secs), "high": int32(secs >> 32), "unsigned": false},
		"nanos":   t.Nanosecond(),
	}
}

func isoString(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ProfileDocument is the profile reply: the user plus role extras.
func (s *adminService) ProfileDocument(a *model.Account) Document {
	doc := Document{"user": userDocument(a, s.now())}
	if a.Role == model.RoleLandowner {
		doc["landOwnerDetails"] = Document{"userId": a.ID, "salternCount": 0}
	}
	return doc
}

// userDocument uses camelCase with trial dates as protobuf timestamps.
func userDocument(a *model.Account, now time.Time) Document {
	doc := Document{
		"id":            a.ID,
		"name":          a.Name,
		"role":          string(a.Role),
		"isOnboarded":   a.IsOnboarded,
		"isSubscribed":  a.IsSubscribed,
		"isTrialActive": a.TrialActive(now),
		"isVerified":    a.IsVerified,
		"createdAt":     isoString(a.CreatedAt),
	}
	if a.Phone != "" {
		doc["phone"] = a.Phone
	}
	if a.Email != "" {
		doc["email"] = a.Email
	}
	if a.TrialStartDate != nil {
		doc["trialStartDate"] = grpcTimestamp(*a.TrialStartDate)
	}
	if a.TrialEndDate != nil {
		doc["trialEndDate"] = grpcTimestamp(*a.TrialEndDate)
	}
	return doc
}

// Users nests landowners as {user, landOwnerDetails}; others are flat.
func (s *adminService) Users(ctx context.Context) (Document, error) {
	accounts, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	items := make([]Document, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		if a.Role == model.RoleLandowner {
			items = append(items, Document{
				"user":             userDocument(a, now),
				"landOwnerDetails": Document{"userId": a.ID},
			})
			continue
		}
		items = append(items, userDocument(a, now))
	}
	return Document{"data": items, "total": len(items)}, nil
}

// Plans uses snake_case with string prices.
func (s *adminService) Plans(ctx context.Context) (Document, error) {
	plans, err := s.catalog.Plans(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Document, 0, len(plans))
	for _, p := range plans {
		features := p.Features
		if features == nil {
			features = []string{}
		}
		items = append(items, Document{
			"id":                p.ID,
			"name":              p.Name,
			"description":       p.Description,
			"target_role":       string(p.Role),
			"price_monthly_lkr": p.PriceMonthly.String(),
			"price_yearly_lkr":  p.PriceYearly.String(),
			"trial_days":        p.TrialDays,
			"features":          features,
			"is_active":         p.IsActive,
			"created_at":        grpcTimestamp(p.CreatedAt),
		})
	}
	return Document{"plans": items}, nil
}

// Payments mixes camelCase ids with snake_case status and wrapped-long
// timestamps.
func (s *adminService) Payments(ctx context.Context, filters repository.PaymentFilters) (Document, error) {
	payments, err := s.catalog.Payments(ctx, filters)
	if err != nil {
		return nil, err
	}
	items := make([]Document, 0, len(payments))
	for _, p := range payments {
		doc := Document{
			"id":             p.ID,
			"userId":         p.UserID,
			"planId":         p.PlanID,
			"amount":         p.Amount.String(),
			"currency":       p.Currency,
			"payment_status": p.Status,
			"orderId":        p.OrderID,
			"createdAt":      longTimestamp(p.CreatedAt),
		}
		if p.PaidAt != nil {
			doc["paidAt"] = longTimestamp(*p.PaidAt)
		}
		items = append(items, doc)
	}
	return Document{"payments": items}, nil
}

// Subscriptions use camelCase and ISO strings.
func (s *adminService) Subscriptions(ctx context.Context) (Document, error) {
	subs, err := s.catalog.Subscriptions(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]Document, 0, len(subs))
	for _, sub := range subs {
		items = append(items, Document{
			"id":           sub.ID,
			"userId":       sub.UserID,
			"planId":       sub.PlanID,
			"status":       sub.Status,
			"billingCycle": sub.BillingCycle,
			"amountLkr":    sub.Amount.String(),
			"isActive":     sub.IsActive,
			"startDate":    isoString(sub.StartDate),
			"endDate":      isoString(sub.EndDate),
		})
	}
	return Document{"subscriptions": items}, nil
}

// AuditLogs use snake_case with protobuf timestamps.
func (s *adminService) AuditLogs(ctx context.Context, filters repository.AuditFilters) (Document, error) {
	entries, err := s.audit.FindAll(ctx, filters)
	if err != nil {
		return nil, err
	}
	items := make([]Document, 0, len(entries))
	for _, e := range entries {
		items = append(items, Document{
			"id":          e.ID,
			"actor_id":    e.ActorID,
			"action":      e.Action,
			"resource":    e.Resource,
			"resource_id": e.ResourceID,
			"ip_address":  e.IPAddress,
			"created_at":  grpcTimestamp(e.CreatedAt),
		})
	}
	return Document{"logs": items}, nil
}
