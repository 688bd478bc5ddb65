package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salt_portal/internal/model"
	"salt_portal/internal/normalize"
	"salt_portal/internal/repository"
)

func encode(t *testing.T, doc Document) []byte {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func newAdminFixture(t *testing.T, now time.Time) (*adminService, *repository.MemoryUserRepository, *repository.MemoryAuditRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	catalog := repository.NewMemoryCatalog()
	repository.SeedCatalog(catalog, now)
	audit := repository.NewMemoryAuditRepository()
	svc := NewAdminService(users, catalog, audit).(*adminService)
	svc.now = func() time.Time { return now }
	return svc, users, audit
}

// The documents deliberately vary in shape; the portal's normalizers
// must still read every one of them.
func TestAdminService_DocumentsNormalize(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, users, audit := newAdminFixture(t, now)

	start, end := now.Add(-time.Hour), now.Add(13*24*time.Hour)
	require.NoError(t, users.Create(ctx, &model.Account{
		ID: "u1", Phone: "+94771234567", Role: model.RoleLandowner,
		TrialStartDate: &start, TrialEndDate: &end, CreatedAt: now,
	}))
	require.NoError(t, users.Create(ctx, &model.Account{ID: "u2", Email: "admin@salt.lk", Role: model.RoleAdmin, CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, audit.Create(ctx, &repository.AuditEntry{ID: "a1", ActorID: "u2", Action: "ADMIN_LOGIN", CreatedAt: now}))

	doc, err := svc.Users(ctx)
	require.NoError(t, err)
	parsed := normalize.Users(encode(t, doc))
	require.Len(t, parsed, 2)
	assert.Equal(t, "u1", parsed[0].ID)
	assert.True(t, parsed[0].IsTrialActive)
	assert.Equal(t, "2024-05-14T09:00:00.000Z", parsed[0].TrialEndDate)
	assert.Equal(t, model.RoleAdmin, parsed[1].Role)

	doc, err = svc.Plans(ctx)
	require.NoError(t, err)
	plans := normalize.Plans(encode(t, doc))
	require.Len(t, plans, 4)
	assert.Equal(t, "3999.5", plans[2].PriceMonthlyLKR.String())
	assert.False(t, plans[3].IsActive)
	assert.Equal(t, "2024-05-01T09:00:00.000Z", plans[0].CreatedAt)

	doc, err = svc.Payments(ctx, repository.PaymentFilters{})
	require.NoError(t, err)
	payments := normalize.Payments(encode(t, doc))
	require.Len(t, payments, 2)
	assert.True(t, payments[0].Completed())
	assert.Equal(t, "2024-04-29T09:00:00.000Z", payments[0].PaidAt)
	assert.Empty(t, payments[1].PaidAt)

	doc, err = svc.Subscriptions(ctx)
	require.NoError(t, err)
	subs := normalize.Subscriptions(encode(t, doc))
	require.Len(t, subs, 1)
	assert.Equal(t, "MONTHLY", subs[0].BillingCycle)

	doc, err = svc.AuditLogs(ctx, repository.AuditFilters{})
	require.NoError(t, err)
	logs := normalize.AuditLogs(encode(t, doc))
	require.Len(t, logs, 1)
	assert.Equal(t, "u2", logs[0].ActorID)
	assert.Equal(t, "2024-05-01T09:00:00.000Z", logs[0].CreatedAt)
}

func TestAdminService_ProfileDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc, _, _ := newAdminFixture(t, now)

	land := &model.Account{ID: "u1", Phone: "+9477", Role: model.RoleLandowner, IsOnboarded: true, CreatedAt: now}
	doc := svc.ProfileDocument(land)
	assert.Contains(t, doc, "landOwnerDetails")
	user, ok := normalize.Profile(encode(t, doc))
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, user.IsOnboarded)

	lab := &model.Account{ID: "u2", Email: "lab@salt.lk", Role: model.RoleLaboratory, CreatedAt: now}
	assert.NotContains(t, svc.ProfileDocument(lab), "landOwnerDetails")
}
