// Package session owns the authentication state machine. A Controller
// is the single writer of its Snapshot; pages and the route guard read
// snapshots or subscribe to changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"salt_portal/internal/gateway"
	"salt_portal/internal/model"
	"salt_portal/internal/storage"
)

// Gateway is the auth backend as seen by the controller.
type Gateway interface {
	RequestOTP(ctx context.Context, identity model.Identity, role model.Role) (*model.OTPRequestResult, error)
	VerifyOTP(ctx context.Context, identity model.Identity, code string) (*model.VerifyResult, error)
	PasswordLogin(ctx context.Context, email, password string) (*model.LoginResult, error)
	FetchProfile(ctx context.Context) (*model.User, error)
	Logout(ctx context.Context)
}

// Store is the persisted credential as seen by the controller.
type Store interface {
	Load(ctx context.Context) (model.StoredCredential, storage.CredentialState)
	SetCachedUser(ctx context.Context, user *model.User)
	Clear(ctx context.Context)
}

// Controller holds one session. It is safe for concurrent use; at most
// one VerifyOTP or PasswordLogin runs at a time.
type Controller struct {
	gw    Gateway
	store Store
	log   *zap.Logger

	mu      sync.Mutex
	state   Snapshot
	pending bool
	// gen changes on every Logout; a transition started under an older
	// generation may not sign the session back in.
	gen     uint64
	subs    map[uint64]func(Snapshot)
	nextSub uint64
}

// NewController starts in StateUnknown with IsLoading set. Call
// Bootstrap before routing on it.
func NewController(gw Gateway, store Store, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		gw:    gw,
		store: store,
		log:   log,
		state: Snapshot{IsLoading: true},
		subs:  make(map[uint64]func(Snapshot)),
	}
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Subscribe registers fn to receive every new snapshot. The returned
// function removes the subscription and may be called more than once.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) dispatch(a action) {
	c.mu.Lock()
	c.applyLocked(a)
}

// dispatchIf applies a only if no Logout happened since gen was taken.
func (c *Controller) dispatchIf(gen uint64, a action) bool {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return false
	}
	c.applyLocked(a)
	return true
}

// applyLocked reduces a, releases mu and notifies subscribers.
func (c *Controller) applyLocked(a action) {
	c.state = reduce(c.state, a)
	snap := c.state
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		c.notify(fn, snap)
	}
}

// notify shields the controller from subscribers whose UI is gone.
func (c *Controller) notify(fn func(Snapshot), snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("session subscriber panicked", zap.Any("panic", r))
		}
	}()
	fn(snap)
}

func (c *Controller) begin() (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return 0, false
	}
	c.pending = true
	return c.gen, true
}

func (c *Controller) superseded(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen != gen
}

// abandon drops whatever a superseded transition wrote to the store.
func (c *Controller) abandon(ctx context.Context, step string) error {
	c.log.Info("discarding authentication finished after logout", zap.String("step", step))
	c.gw.Logout(ctx)
	return ErrSuperseded
}

func (c *Controller) end() {
	c.mu.Lock()
	c.pending = false
	c.mu.Unlock()
}

// Bootstrap restores the session from the store without a network call.
// A token with no readable cached user is cleared: fail closed.
func (c *Controller) Bootstrap(ctx context.Context) {
	cred, state := c.store.Load(ctx)
	switch state {
	case storage.CredentialValid:
		c.dispatch(action{kind: actAuthenticated, user: cred.CachedUser, token: cred.Token})
	case storage.CredentialCorrupt:
		c.log.Warn("stored token without cached user, clearing", zap.Error(ErrCorruptSession))
		c.store.Clear(ctx)
		c.dispatch(action{kind: actAnonymous})
	default:
		c.dispatch(action{kind: actAnonymous})
	}
}

// SignIn requests an OTP. Moving the UI to the code entry step is the
// caller's business; only failures touch the session.
func (c *Controller) SignIn(ctx context.Context, identity model.Identity, role model.Role) (*model.OTPRequestResult, error) {
	if c.Snapshot().IsAuthenticated {
		return nil, ErrInvalidState
	}

	res, err := c.gw.RequestOTP(ctx, identity, role)
	if err != nil {
		if errors.Is(err, gateway.ErrValidation) {
			return nil, err
		}
		c.log.Warn("otp request failed", zap.String("role", string(role)), zap.Error(err))
		c.dispatch(action{kind: actError, err: UserMessage(err)})
		return nil, err
	}

	c.dispatch(action{kind: actError, err: ""})
	return res, nil
}

// VerifyOTP completes an OTP sign-in and returns the page to land on.
// Any failure clears the session and is returned to the caller as well.
func (c *Controller) VerifyOTP(ctx context.Context, identity model.Identity, code string) (string, error) {
	if err := gateway.ValidateIdentity(identity); err != nil {
		return "", err
	}
	if err := gateway.ValidateCode(code); err != nil {
		return "", err
	}
	gen, ok := c.begin()
	if !ok {
		return "", ErrTransitionInFlight
	}
	defer c.end()

	if !c.dispatchIf(gen, action{kind: actBegin}) {
		return "", ErrSuperseded
	}

	res, err := c.gw.VerifyOTP(ctx, identity, code)
	if c.superseded(gen) {
		return "", c.abandon(ctx, "verify otp")
	}
	if err != nil {
		return "", c.fail(ctx, "verify otp", err)
	}
	user, err := c.gw.FetchProfile(ctx)
	if c.superseded(gen) {
		return "", c.abandon(ctx, "fetch profile after verify")
	}
	if err != nil {
		return "", c.fail(ctx, "fetch profile after verify", err)
	}

	c.store.SetCachedUser(ctx, user)
	if !c.dispatchIf(gen, action{kind: actAuthenticated, user: user, token: res.AccessToken}) {
		return "", c.abandon(ctx, "verify otp")
	}

	target := PostVerificationTarget(res.IsOnboarded, user)
	c.log.Info("otp sign-in complete",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.Bool("new_user", res.IsNewUser),
		zap.String("target", target),
	)
	return target, nil
}

// PasswordLogin is the administrator path. Admin accounts are
// provisioned ahead of time, so the target is always the dashboard.
func (c *Controller) PasswordLogin(ctx context.Context, email, password string) (string, error) {
	if err := gateway.ValidatePasswordLogin(email, password); err != nil {
		return "", err
	}
	gen, ok := c.begin()
	if !ok {
		return "", ErrTransitionInFlight
	}
	defer c.end()

	if !c.dispatchIf(gen, action{kind: actBegin}) {
		return "", ErrSuperseded
	}

	res, err := c.gw.PasswordLogin(ctx, email, password)
	if c.superseded(gen) {
		return "", c.abandon(ctx, "password login")
	}
	if err != nil {
		return "", c.fail(ctx, "password login", err)
	}
	user, err := c.gw.FetchProfile(ctx)
	if c.superseded(gen) {
		return "", c.abandon(ctx, "fetch profile after login")
	}
	if err != nil {
		return "", c.fail(ctx, "fetch profile after login", err)
	}

	c.store.SetCachedUser(ctx, user)
	if !c.dispatchIf(gen, action{kind: actAuthenticated, user: user, token: res.AccessToken}) {
		return "", c.abandon(ctx, "password login")
	}

	target := DashboardPath(user.Role)
	c.log.Info("password login complete", zap.String("user_id", user.ID), zap.String("target", target))
	return target, nil
}

func (c *Controller) fail(ctx context.Context, step string, err error) error {
	c.log.Warn("authentication failed", zap.String("step", step), zap.Error(err))
	c.gw.Logout(ctx)
	c.dispatch(action{kind: actAnonymous, err: UserMessage(err)})
	return err
}

// RefreshUser re-fetches the profile in place. A session that cannot be
// refreshed is not trusted: it is logged out.
func (c *Controller) RefreshUser(ctx context.Context) error {
	if !c.Snapshot().IsAuthenticated {
		return ErrInvalidState
	}

	user, err := c.gw.FetchProfile(ctx)
	if err != nil {
		c.log.Warn("profile refresh failed, logging out", zap.Error(err))
		c.Logout(ctx)
		return fmt.Errorf("%w: %w", ErrCorruptSession, err)
	}

	c.store.SetCachedUser(ctx, user)
	c.dispatch(action{kind: actUserRefreshed, user: user})
	return nil
}

// Logout clears everything and returns the public landing page. A
// sign-in still in flight is discarded when it resolves.
func (c *Controller) Logout(ctx context.Context) string {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
	c.gw.Logout(ctx)
	c.dispatch(action{kind: actAnonymous})
	return PathHome
}
