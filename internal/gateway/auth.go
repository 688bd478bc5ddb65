package gateway

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"salt_portal/internal/model"
	"salt_portal/internal/normalize"
)

// CredentialWriter is the part of the token store the gateway writes.
type CredentialWriter interface {
	SetToken(ctx context.Context, token string)
	Clear(ctx context.Context)
}

// AuthGateway performs the auth round-trips. It owns no state; it is the
// only component that writes a fresh token into the store.
type AuthGateway struct {
	client *Client
	store  CredentialWriter
	log    *zap.Logger
}

func NewAuthGateway(client *Client, store CredentialWriter, log *zap.Logger) *AuthGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthGateway{client: client, store: store, log: log}
}

type signInRequest struct {
	Phone string     `json:"phone,omitempty"`
	Email string     `json:"email,omitempty"`
	Role  model.Role `json:"role"`
}

type verifyRequest struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequestOTP asks the backend to send a code. It never touches the store.
func (g *AuthGateway) RequestOTP(ctx context.Context, identity model.Identity, role model.Role) (*model.OTPRequestResult, error) {
	if err := ValidateIdentity(identity); err != nil {
		return nil, err
	}
	if err := ValidateRole(role); err != nil {
		return nil, err
	}
	identity = trimIdentity(identity)

	raw, err := g.client.do(ctx, http.MethodPost, g.client.endpoints.SignIn, signInRequest{
		Phone: identity.Phone,
		Email: identity.Email,
		Role:  role,
	})
	if err != nil {
		return nil, err
	}
	res := normalize.OTPRequest(raw)
	return &res, nil
}

// VerifyOTP exchanges a code for an access token and stores the token
// before returning. On failure the store is left untouched.
func (g *AuthGateway) VerifyOTP(ctx context.Context, identity model.Identity, code string) (*model.VerifyResult, error) {
	if err := ValidateIdentity(identity); err != nil {
		return nil, err
	}
	if err := ValidateCode(code); err != nil {
		return nil, err
	}
	identity = trimIdentity(identity)

	raw, err := g.client.do(ctx, http.MethodPost, g.client.endpoints.VerifyOTP, verifyRequest{
		Phone: identity.Phone,
		Email: identity.Email,
		Code:  code,
	})
	if err != nil {
		return nil, err
	}
	res := normalize.Verify(raw)
	if res.AccessToken == "" {
		return nil, fmt.Errorf("%w: verification reply carried no access token", ErrBackend)
	}
	g.store.SetToken(ctx, res.AccessToken)
	return &res, nil
}

// PasswordLogin is the administrator path. Same token contract as VerifyOTP.
func (g *AuthGateway) PasswordLogin(ctx context.Context, email, password string) (*model.LoginResult, error) {
	if err := ValidatePasswordLogin(email, password); err != nil {
		return nil, err
	}

	raw, err := g.client.do(ctx, http.MethodPost, g.client.endpoints.Login, loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	res := normalize.Login(raw)
	if res.AccessToken == "" {
		return nil, fmt.Errorf("%w: login reply carried no access token", ErrBackend)
	}
	g.store.SetToken(ctx, res.AccessToken)
	return &res, nil
}

// FetchProfile loads the current user. The transport attaches the token.
func (g *AuthGateway) FetchProfile(ctx context.Context) (*model.User, error) {
	raw, err := g.client.do(ctx, http.MethodGet, g.client.endpoints.Profile, nil)
	if err != nil {
		return nil, err
	}
	user, ok := normalize.Profile(raw)
	if !ok {
		return nil, fmt.Errorf("%w: profile reply carried no user", ErrBackend)
	}
	return user, nil
}

// Logout is local only: there is no backend session to invalidate.
func (g *AuthGateway) Logout(ctx context.Context) {
	g.store.Clear(ctx)
}
