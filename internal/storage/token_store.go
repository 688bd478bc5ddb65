package storage

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"salt_portal/internal/model"
)

const (
	keyToken = "auth_token"
	keyUser  = "auth_user"
)

// CredentialState classifies what Load found on disk.
type CredentialState int

const (
	// CredentialEmpty means no token is stored; any cached user is ignored.
	CredentialEmpty CredentialState = iota
	// CredentialValid means both token and cached user are present.
	CredentialValid
	// CredentialCorrupt means a token without a readable cached user.
	CredentialCorrupt
)

func (s CredentialState) String() string {
	switch s {
	case CredentialEmpty:
		return "empty"
	case CredentialValid:
		return "valid"
	case CredentialCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// TokenStore holds the bearer token and cached user profile for one
// client. It never returns errors: failed reads look like absent
// values and failed writes are logged.
type TokenStore struct {
	kv        KV
	namespace string
	log       *zap.Logger
}

// NewTokenStore scopes kv keys under namespace. An empty namespace is
// fine for single-client use.
func NewTokenStore(kv KV, namespace string, log *zap.Logger) *TokenStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenStore{kv: kv, namespace: namespace, log: log}
}

func (s *TokenStore) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

// SetToken persists token, replacing any previous value.
func (s *TokenStore) SetToken(ctx context.Context, token string) {
	if err := s.kv.Set(ctx, s.key(keyToken), token); err != nil {
		s.log.Warn("failed to persist token", zap.String("namespace", s.namespace), zap.Error(err))
	}
}

// GetToken returns the stored token, if any.
func (s *TokenStore) GetToken(ctx context.Context) (string, bool) {
	v, err := s.kv.Get(ctx, s.key(keyToken))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("failed to read token", zap.String("namespace", s.namespace), zap.Error(err))
		}
		return "", false
	}
	if v == "" {
		return "", false
	}
	return v, true
}

func (s *TokenStore) HasToken(ctx context.Context) bool {
	_, ok := s.GetToken(ctx)
	return ok
}

// ClearTokens removes the token. Safe to call when already empty.
func (s *TokenStore) ClearTokens(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.key(keyToken)); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("failed to clear token", zap.String("namespace", s.namespace), zap.Error(err))
	}
}

// SetCachedUser stores the user profile as JSON.
func (s *TokenStore) SetCachedUser(ctx context.Context, user *model.User) {
	if user == nil {
		s.ClearCachedUser(ctx)
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		s.log.Warn("failed to encode cached user", zap.Error(err))
		return
	}
	if err := s.kv.Set(ctx, s.key(keyUser), string(raw)); err != nil {
		s.log.Warn("failed to persist cached user", zap.String("namespace", s.namespace), zap.Error(err))
	}
}

// GetCachedUser returns the cached profile. Without a token the cache is
// stale and reported absent whatever is on disk.
func (s *TokenStore) GetCachedUser(ctx context.Context) (*model.User, bool) {
	if !s.HasToken(ctx) {
		return nil, false
	}
	return s.readUser(ctx)
}

func (s *TokenStore) readUser(ctx context.Context) (*model.User, bool) {
	raw, err := s.kv.Get(ctx, s.key(keyUser))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("failed to read cached user", zap.String("namespace", s.namespace), zap.Error(err))
		}
		return nil, false
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn("cached user is not valid JSON", zap.String("namespace", s.namespace), zap.Error(err))
		return nil, false
	}
	return &user, true
}

func (s *TokenStore) ClearCachedUser(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.key(keyUser)); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("failed to clear cached user", zap.String("namespace", s.namespace), zap.Error(err))
	}
}

// Clear removes everything this store owns.
func (s *TokenStore) Clear(ctx context.Context) {
	s.ClearTokens(ctx)
	s.ClearCachedUser(ctx)
}

// Load reads the stored credential and classifies it. The returned
// credential is only populated when the state is CredentialValid.
func (s *TokenStore) Load(ctx context.Context) (model.StoredCredential, CredentialState) {
	token, ok := s.GetToken(ctx)
	if !ok {
		return model.StoredCredential{}, CredentialEmpty
	}
	user, ok := s.readUser(ctx)
	if !ok {
		return model.StoredCredential{}, CredentialCorrupt
	}
	return model.StoredCredential{Token: token, CachedUser: user}, CredentialValid
}
