package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"salt_portal/internal/model"
	"salt_portal/internal/repository"
	"salt_portal/internal/utils"
)

var (
	ErrInvalidOTP         = errors.New("invalid or expired verification code")
	ErrTooManyAttempts    = errors.New("too many attempts, request a new code")
	ErrRoleMismatch       = errors.New("this contact is registered with a different role")
	ErrRoleNotAllowed     = errors.New("role cannot sign in with a verification code")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const (
	otpDigits      = 6
	maxOTPAttempts = 5
	trialPeriod    = 14 * 24 * time.Hour
)

// AuthService provides authentication related services
type AuthService interface {
	RequestOTP(ctx context.Context, identity model.Identity, role model.Role) (*model.OTPRequestResult, error)
	VerifyOTP(ctx context.Context, identity model.Identity, code, ip string) (*model.VerifyResult, error)
	Login(ctx context.Context, email, password, ip string) (string, *model.Account, error)
	Profile(ctx context.Context, userID string) (*model.Account, error)
	Onboard(ctx context.Context, userID, name string) (*model.Account, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

// AuthOptions tunes the code lifecycle.
type AuthOptions struct {
	OTPTTL time.Duration
	// LogCodes writes issued codes to the log. Development only.
	LogCodes bool
}

type authService struct {
	users   repository.UserRepository
	otps    repository.OTPRepository
	audit   repository.AuditRepository
	jwtUtil *utils.JWTUtil
	opts    AuthOptions
	log     *zap.Logger
	now     func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repository.UserRepository,
	otps repository.OTPRepository,
	audit repository.AuditRepository,
	jwtUtil *utils.JWTUtil,
	opts AuthOptions,
	log *zap.Logger,
) AuthService {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		users:   users,
		otps:    otps,
		audit:   audit,
		jwtUtil: jwtUtil,
		opts:    opts,
		log:     log,
		now:     time.Now,
	}
}

func otpKey(identity model.Identity) string {
	if identity.Phone != "" {
		return "phone:" + strings.TrimSpace(identity.Phone)
	}
	return "email:" + strings.ToLower(strings.TrimSpace(identity.Email))
}

func (s *authService) findByIdentity(ctx context.Context, identity model.Identity) (*model.Account, error) {
	if identity.Phone != "" {
		return s.users.FindByPhone(ctx, strings.TrimSpace(identity.Phone))
	}
	return s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(identity.Email)))
}

// RequestOTP issues a code for identity. Administrators use Login instead.
func (s *authService) RequestOTP(ctx context.Context, identity model.Identity, role model.Role) (*model.OTPRequestResult, error) {
	role = model.ParseRole(string(role))
	if !role.Valid() || role.IsAdmin() {
		return nil, ErrRoleNotAllowed
	}

	existing, err := s.findByIdentity(ctx, identity)
	switch {
	case err == nil:
		if existing.Role != role {
			return nil, ErrRoleMismatch
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	code, err := utils.GenerateOTP(otpDigits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}
	if err := s.otps.Save(ctx, otpKey(identity), repository.PendingOTP{Code: code, Role: role}, s.opts.OTPTTL); err != nil {
		return nil, err
	}

	fields := []zap.Field{zap.String("contact", identity.String()), zap.String("role", string(role))}
	if s.opts.LogCodes {
		fields = append(fields, zap.String("code", code))
	}
	s.log.Info("verification code issued", fields...)

	return &model.OTPRequestResult{Message: "Verification code sent"}, nil
}

// VerifyOTP consumes a code and returns a token, creating the account on
// first sign-in.
func (s *authService) VerifyOTP(ctx context.Context, identity model.Identity, code, ip string) (*model.VerifyResult, error) {
	key := otpKey(identity)
	// Every guess is counted before the comparison.
	pending, err := s.otps.Attempt(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}
	if pending.Attempts > maxOTPAttempts {
		_ = s.otps.Delete(ctx, key)
		return nil, ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(code)) != 1 {
		if pending.Attempts >= maxOTPAttempts {
			_ = s.otps.Delete(ctx, key)
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidOTP
	}
	if err := s.otps.Delete(ctx, key); err != nil {
		return nil, err
	}

	account, err := s.findByIdentity(ctx, identity)
	isNew := false
	switch {
	case errors.Is(err, repository.ErrNotFound):
		account, err = s.createAccount(ctx, identity, pending.Role)
		if err != nil {
			return nil, err
		}
		isNew = true
	case err != nil:
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	token, err := s.jwtUtil.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.record(ctx, account.ID, "OTP_VERIFIED", ip)

	return &model.VerifyResult{AccessToken: token, IsNewUser: isNew, IsOnboarded: account.IsOnboarded}, nil
}

func (s *authService) createAccount(ctx context.Context, identity model.Identity, role model.Role) (*model.Account, error) {
	now := s.now().UTC()
	trialEnd := now.Add(trialPeriod)
	account := &model.Account{
		ID:             uuid.NewString(),
		Phone:          strings.TrimSpace(identity.Phone),
		Email:          strings.ToLower(strings.TrimSpace(identity.Email)),
		Role:           role,
		TrialStartDate: &now,
		TrialEndDate:   &trialEnd,
		IsVerified:     true,
		CreatedAt:      now,
	}
	if err := s.users.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", account.ID), zap.String("role", string(role)))
	return account, nil
}

// Login authenticates an administrator and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password, ip string) (string, *model.Account, error) {
	account, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if !account.Role.IsAdmin() || account.PasswordHash == "" {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(account.ID, account.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	s.record(ctx, account.ID, "ADMIN_LOGIN", ip)
	return token, account, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*model.Account, error) {
	account, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return account, err
}

// Onboard records the profile details collected on the onboarding page.
func (s *authService) Onboard(ctx context.Context, userID, name string) (*model.Account, error) {
	account, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	account.Name = strings.TrimSpace(name)
	account.IsOnboarded = true
	if err := s.users.Update(ctx, account); err != nil {
		return nil, err
	}
	s.record(ctx, account.ID, "ONBOARDED", "")
	return account, nil
}

// EnsureAdmin seeds a SUPERADMIN account when none exists for email.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.now().UTC()
	account := &model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		IsOnboarded:  true,
		IsSubscribed: true,
		IsVerified:   true,
		CreatedAt:    now,
	}
	if err := s.users.Create(ctx, account); err != nil {
		return err
	}
	s.log.Info("seeded administrator", zap.String("email", email))
	return nil
}

func (s *authService) record(ctx context.Context, actorID, action, ip string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Create(ctx, &repository.AuditEntry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		Resource:   "user",
		ResourceID: actorID,
		IPAddress:  ip,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		s.log.Warn("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
}
