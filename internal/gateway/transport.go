package gateway

import (
	"context"
	"net/http"
)

// TokenSource yields the current bearer token, if any.
type TokenSource interface {
	GetToken(ctx context.Context) (string, bool)
}

// BearerTransport attaches "Authorization: Bearer <token>" to every
// request that does not already carry an Authorization header.
type BearerTransport struct {
	Base   http.RoundTripper
	Tokens TokenSource
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get("Authorization") != "" || t.Tokens == nil {
		return base.RoundTrip(req)
	}
	token, ok := t.Tokens.GetToken(req.Context())
	if !ok {
		return base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(clone)
}
