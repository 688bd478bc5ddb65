package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlans_AliasPrecedence(t *testing.T) {
	raw := []byte(`{"plans":[
		{"id":"p1","name":"Basic","priceMonthlyLkr":1500,"priceMonthlyLKR":9999,"price_yearly_lkr":"15000.50","features":["a","b"]},
		{"_id":"p2","plan_name":"Lab","priceMonthlyLKR":"2500","trial_days":14,"is_active":false},
		{"id":"p3","price_monthly_lkr":3000}
	]}`)

	plans := Plans(raw)
	require.Len(t, plans, 3)

	assert.Equal(t, "p1", plans[0].ID)
	assert.True(t, plans[0].PriceMonthlyLKR.Equal(decimal.NewFromInt(1500)), "camelCase wins over upper-case alias")
	assert.True(t, plans[0].PriceYearlyLKR.Equal(decimal.RequireFromString("15000.50")))
	assert.Equal(t, []string{"a", "b"}, plans[0].Features)
	assert.True(t, plans[0].IsActive, "isActive defaults to true")

	assert.Equal(t, "p2", plans[1].ID)
	assert.Equal(t, "Lab", plans[1].Name)
	assert.True(t, plans[1].PriceMonthlyLKR.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, int64(14), plans[1].TrialDays)
	assert.False(t, plans[1].IsActive)
	assert.Equal(t, []string{}, plans[1].Features)

	assert.True(t, plans[2].PriceMonthlyLKR.Equal(decimal.NewFromInt(3000)))
	assert.True(t, plans[2].PriceYearlyLKR.IsZero())
}

func TestEnvelopes_NeverFail(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json`),
		[]byte(`[]`),
		[]byte(`{"data":[]}`),
		[]byte(`{"plans":{"id":"x"}}`),
		[]byte(`{"payments":null}`),
	}
	for _, raw := range inputs {
		assert.NotNil(t, Plans(raw))
		assert.Empty(t, Plans(raw))
		assert.Empty(t, Payments(raw))
		assert.Empty(t, Subscriptions(raw))
		assert.Empty(t, AuditLogs(raw))
		assert.Empty(t, Users(raw))
	}
}

func TestEnvelopes_UseOnlyTheirOwnKey(t *testing.T) {
	raw := []byte(`{"data":[{"id":"x"}],"logs":[{"id":"l1","action":"LOGIN"}]}`)

	assert.Empty(t, Plans(raw))
	assert.Len(t, Users(raw), 1)
	logs := AuditLogs(raw)
	require.Len(t, logs, 1)
	assert.Equal(t, "LOGIN", logs[0].Action)
}

func TestPayments(t *testing.T) {
	raw := []byte(`{"payments":[
		{"payment_id":"pay1","user_id":"u1","amount_lkr":"1500.00","status":"SUCCESS","created_at":{"seconds":{"low":1700000000,"high":0,"unsigned":true},"nanos":0}},
		{"id":"pay2","user":{"id":"u2"},"amount":2500,"currency":"USD","paidAt":"2024-02-01T00:00:00.000Z"},
		"skipped"
	]}`)

	payments := Payments(raw)
	require.Len(t, payments, 2)

	assert.Equal(t, "pay1", payments[0].ID)
	assert.Equal(t, "u1", payments[0].UserID)
	assert.Equal(t, "LKR", payments[0].Currency)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", payments[0].CreatedAt)

	assert.Equal(t, "u2", payments[1].UserID)
	assert.Equal(t, "USD", payments[1].Currency)
	assert.Equal(t, "2024-02-01T00:00:00.000Z", payments[1].PaidAt)

	assert.True(t, TotalAmount(payments).Equal(decimal.NewFromInt(4000)))
}

func TestSubscriptions(t *testing.T) {
	raw := []byte(`{"subscriptions":[
		{"id":"s1","user_id":"u1","plan_id":"p1","status":"ACTIVE","start_date":{"seconds":1700000000},"end_date":{"seconds":0}},
		{"id":"s2","is_active":"false","amountLKR":1200}
	]}`)

	subs := Subscriptions(raw)
	require.Len(t, subs, 2)
	assert.True(t, subs[0].IsActive)
	assert.Equal(t, "p1", subs[0].PlanID)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", subs[0].StartDate)
	assert.Empty(t, subs[0].EndDate)
	assert.False(t, subs[1].IsActive)
	assert.True(t, subs[1].AmountLKR.Equal(decimal.NewFromInt(1200)))
}

func TestAuditLogs(t *testing.T) {
	raw := []byte(`{"logs":[{"_id":"l1","admin":"x","user_id":"u9","resource_type":"PLAN","ip":"10.0.0.1","timestamp":"2024-03-01T10:00:00.000Z"}]}`)

	logs := AuditLogs(raw)
	require.Len(t, logs, 1)
	assert.Equal(t, "l1", logs[0].ID)
	assert.Equal(t, "u9", logs[0].ActorID)
	assert.Equal(t, "PLAN", logs[0].Resource)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
	assert.Equal(t, "2024-03-01T10:00:00.000Z", logs[0].CreatedAt)
}
