// Package frontend is the web front end: it serves the sign-in flow and
// the role dashboards, keeping one session per browser.
package frontend

import (
	"context"
	"time"

	"go.uber.org/zap"

	"salt_portal/internal/gateway"
	"salt_portal/internal/session"
	"salt_portal/internal/storage"
)

// Clients builds the per-browser objects. Every browser gets its own
// TokenStore namespace over the shared KV.
type Clients struct {
	cfg gateway.Config
	kv  storage.KV
	log *zap.Logger
}

// NewClients validates cfg once so the per-browser constructors cannot fail.
func NewClients(cfg gateway.Config, kv storage.KV, log *zap.Logger) (*Clients, error) {
	if _, err := gateway.NewClient(cfg, nil, log); err != nil {
		return nil, err
	}
	return &Clients{cfg: cfg, kv: kv, log: log}, nil
}

func (c *Clients) store(clientID string) *storage.TokenStore {
	return storage.NewTokenStore(c.kv, clientID, c.log)
}

func (c *Clients) client(store *storage.TokenStore) *gateway.Client {
	client, _ := gateway.NewClient(c.cfg, store, c.log)
	return client
}

// Controller is a session.Factory.
func (c *Clients) Controller(clientID string) *session.Controller {
	store := c.store(clientID)
	log := c.log.With(zap.String("client_id", clientID))
	return session.NewController(gateway.NewAuthGateway(c.client(store), store, log), store, log)
}

// Data returns list controllers authenticated as the browser's user.
func (c *Clients) Data(clientID string) *gateway.DataClient {
	return gateway.NewDataClient(c.client(c.store(clientID)))
}

// RunSweeper drops idle registry entries until ctx ends.
func RunSweeper(ctx context.Context, reg *session.Registry, every time.Duration, log *zap.Logger) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := reg.Sweep(); n > 0 {
				log.Debug("swept idle sessions", zap.Int("removed", n), zap.Int("remaining", reg.Len()))
			}
		}
	}
}
