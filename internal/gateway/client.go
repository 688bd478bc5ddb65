// Package gateway talks to the platform backend: the auth endpoints and
// the thin list controllers used by the admin pages. Every call is one
// round-trip with no automatic retry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"salt_portal/internal/normalize"
)

const maxBodyBytes = 1 << 20

// Endpoints are backend paths relative to the base URL.
type Endpoints struct {
	SignIn        string
	VerifyOTP     string
	Login         string
	Profile       string
	Users         string
	Plans         string
	Payments      string
	Subscriptions string
	AuditLogs     string
}

// DefaultEndpoints matches the reference backend in cmd/devbackend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		SignIn:        "/api/v1/auth/signin",
		VerifyOTP:     "/api/v1/auth/verify-otp",
		Login:         "/api/v1/auth/login",
		Profile:       "/api/v1/auth/profile",
		Users:         "/api/v1/admin/users",
		Plans:         "/api/v1/plans",
		Payments:      "/api/v1/admin/payments",
		Subscriptions: "/api/v1/admin/subscriptions",
		AuditLogs:     "/api/v1/admin/audit-logs",
	}
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Endpoints Endpoints
}

// Client is the shared HTTP plumbing. It carries no per-user state other
// than the token source behind its transport.
type Client struct {
	httpClient *http.Client
	baseURL    string
	endpoints  Endpoints
	log        *zap.Logger
}

// NewClient builds a client whose transport attaches the bearer token
// from tokens.
func NewClient(cfg Config, tokens TokenSource, log *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("gateway: invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Endpoints == (Endpoints{}) {
		cfg.Endpoints = DefaultEndpoints()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &BearerTransport{Base: http.DefaultTransport, Tokens: tokens},
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		endpoints: cfg.Endpoints,
		log:       log,
	}, nil
}

// do sends one request and returns the body of a 2xx reply. Non-2xx
// replies become *BackendError; transport failures wrap ErrNetwork.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrNetwork, path, err)
	}

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{Status: resp.StatusCode, Message: normalize.ErrorMessage(raw)}
	}
	return raw, nil
}
