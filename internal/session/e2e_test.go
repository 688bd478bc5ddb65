package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"salt_portal/internal/gateway"
	"salt_portal/internal/model"
	"salt_portal/internal/storage"
)

// fakeBackend answers the auth endpoints the way the platform does,
// including its enveloped profile reply.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "LANDOWNER", body["role"])
		w.Write([]byte(`{"message":"OTP sent to +94771234567"}`))
	})
	mux.HandleFunc("/api/v1/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["code"] != "123456" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Invalid OTP"}`))
			return
		}
		w.Write([]byte(`{"data":{"accessToken":"tok1","isNewUser":false,"isOnboarded":true}}`))
	})
	mux.HandleFunc("/api/v1/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"data":{"user":{"id":"u1","phone":"+94771234567","role":"LANDOWNER",
			"isOnboarded":true,"isSubscribed":false,"isTrialActive":true,
			"trialEndDate":{"seconds":1700000000,"nanos":0}}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEnd_LandownerOTPSignIn(t *testing.T) {
	srv := fakeBackend(t)
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	store := storage.NewTokenStore(storage.NewMemoryKV(), "browser-1", log)
	client, err := gateway.NewClient(gateway.Config{BaseURL: srv.URL}, store, log)
	require.NoError(t, err)
	ctrl := NewController(gateway.NewAuthGateway(client, store, log), store, log)
	ctrl.Bootstrap(ctx)
	require.Equal(t, StateAnonymous, ctrl.Snapshot().State())

	identity := model.Identity{Phone: "+94771234567"}
	_, err = ctrl.SignIn(ctx, identity, model.RoleLandowner)
	require.NoError(t, err)

	target, err := ctrl.VerifyOTP(ctx, identity, "123456")
	require.NoError(t, err)
	assert.Equal(t, PathLandownerDashboard, target)

	s := ctrl.Snapshot()
	require.True(t, s.IsAuthenticated)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", s.User.TrialEndDate)

	cred, state := store.Load(ctx)
	require.Equal(t, storage.CredentialValid, state)
	assert.Equal(t, "tok1", cred.Token)
	assert.Equal(t, "u1", cred.CachedUser.ID)

	// A fresh controller over the same store restores the session offline.
	restored := NewController(nil, store, log)
	restored.Bootstrap(ctx)
	assert.Equal(t, StateAuthenticated, restored.Snapshot().State())

	assert.Equal(t, PathHome, ctrl.Logout(ctx))
	_, state = store.Load(ctx)
	assert.Equal(t, storage.CredentialEmpty, state)
}

func TestEndToEnd_WrongCodeLeavesStoreEmpty(t *testing.T) {
	srv := fakeBackend(t)
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	store := storage.NewTokenStore(storage.NewMemoryKV(), "browser-2", log)
	client, err := gateway.NewClient(gateway.Config{BaseURL: srv.URL}, store, log)
	require.NoError(t, err)
	ctrl := NewController(gateway.NewAuthGateway(client, store, log), store, log)
	ctrl.Bootstrap(ctx)

	_, err = ctrl.VerifyOTP(ctx, model.Identity{Phone: "+94771234567"}, "000000")
	assert.ErrorIs(t, err, gateway.ErrBackend)
	assert.Equal(t, "Invalid OTP", ctrl.Snapshot().Error)
	assert.False(t, store.HasToken(ctx))
}
