package gateway

import (
	"context"
	"net/http"

	"salt_portal/internal/model"
	"salt_portal/internal/normalize"
)

// DataClient holds the list controllers behind the admin and plans
// pages. Each call fetches one endpoint and normalizes the reply.
type DataClient struct {
	client *Client
}

func NewDataClient(client *Client) *DataClient {
	return &DataClient{client: client}
}

func (d *DataClient) ListUsers(ctx context.Context) ([]model.User, error) {
	raw, err := d.client.do(ctx, http.MethodGet, d.client.endpoints.Users, nil)
	if err != nil {
		return nil, err
	}
	return normalize.Users(raw), nil
}

func (d *DataClient) ListPlans(ctx context.Context) ([]model.Plan, error) {
	raw, err := d.client.do(ctx, http.MethodGet, d.client.endpoints.Plans, nil)
	if err != nil {
		return nil, err
	}
	return normalize.Plans(raw), nil
}

func (d *DataClient) ListPayments(ctx context.Context) ([]model.Payment, error) {
	raw, err := d.client.do(ctx, http.MethodGet, d.client.endpoints.Payments, nil)
	if err != nil {
		return nil, err
	}
	return normalize.Payments(raw), nil
}

func (d *DataClient) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	raw, err := d.client.do(ctx, http.MethodGet, d.client.endpoints.Subscriptions, nil)
	if err != nil {
		return nil, err
	}
	return normalize.Subscriptions(raw), nil
}

func (d *DataClient) ListAuditLogs(ctx context.Context) ([]model.AuditLog, error) {
	raw, err := d.client.do(ctx, http.MethodGet, d.client.endpoints.AuditLogs, nil)
	if err != nil {
		return nil, err
	}
	return normalize.AuditLogs(raw), nil
}
