package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"salt_portal/internal/model"
	"salt_portal/internal/repository"
	"salt_portal/internal/utils"
)

type authFixture struct {
	svc   *authService
	users *repository.MemoryUserRepository
	otps  *repository.MemoryOTPRepository
	audit *repository.MemoryAuditRepository
	jwt   *utils.JWTUtil
	now   time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users: repository.NewMemoryUserRepository(),
		otps:  repository.NewMemoryOTPRepository(),
		audit: repository.NewMemoryAuditRepository(),
		jwt:   utils.NewJWTUtil("test-secret", 1),
		now:   time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewAuthService(f.users, f.otps, f.audit, f.jwt, AuthOptions{OTPTTL: time.Minute}, zaptest.NewLogger(t)).(*authService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *authFixture) code(t *testing.T, identity model.Identity) string {
	t.Helper()
	pending, err := f.otps.Get(context.Background(), otpKey(identity))
	require.NoError(t, err)
	return pending.Code
}

func TestAuthService_OTPFirstSignIn(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	phone := model.Identity{Phone: "+94771234567"}

	res, err := f.svc.RequestOTP(ctx, phone, "landowner")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Message)

	code := f.code(t, phone)
	assert.Len(t, code, otpDigits)

	verified, err := f.svc.VerifyOTP(ctx, phone, code, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, verified.IsNewUser)
	assert.False(t, verified.IsOnboarded)

	claims, err := f.jwt.ValidateToken(verified.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.RoleLandowner, claims.Role)

	account, err := f.users.FindByPhone(ctx, "+94771234567")
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, account.ID)
	require.NotNil(t, account.TrialEndDate)
	assert.Equal(t, f.now.Add(trialPeriod), *account.TrialEndDate)
	assert.True(t, account.TrialActive(f.now))

	_, err = f.otps.Get(ctx, otpKey(phone))
	assert.ErrorIs(t, err, repository.ErrNotFound, "code is single use")

	logs, err := f.audit.FindAll(ctx, repository.AuditFilters{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "OTP_VERIFIED", logs[0].Action)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)

	// second sign-in reuses the account
	_, err = f.svc.RequestOTP(ctx, phone, model.RoleLandowner)
	require.NoError(t, err)
	again, err := f.svc.VerifyOTP(ctx, phone, f.code(t, phone), "")
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
}

func TestAuthService_RequestOTPRejections(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.svc.RequestOTP(ctx, model.Identity{Email: "a@b.lk"}, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
	_, err = f.svc.RequestOTP(ctx, model.Identity{Email: "a@b.lk"}, "FARMER")
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	require.NoError(t, f.users.Create(ctx, &model.Account{ID: "u1", Email: "lab@salt.lk", Role: model.RoleLaboratory}))
	_, err = f.svc.RequestOTP(ctx, model.Identity{Email: "LAB@salt.lk"}, model.RoleDistributor)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestAuthService_VerifyOTPAttempts(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	email := model.Identity{Email: "dist@salt.lk"}

	_, err := f.svc.VerifyOTP(ctx, email, "123456", "")
	assert.ErrorIs(t, err, ErrInvalidOTP, "no pending code")

	_, err = f.svc.RequestOTP(ctx, email, model.RoleDistributor)
	require.NoError(t, err)
	good := f.code(t, email)
	bad := "000000"
	if good == bad {
		bad = "111111"
	}

	for i := 1; i < maxOTPAttempts; i++ {
		_, err = f.svc.VerifyOTP(ctx, email, bad, "")
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
	_, err = f.svc.VerifyOTP(ctx, email, bad, "")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	_, err = f.svc.VerifyOTP(ctx, email, good, "")
	assert.ErrorIs(t, err, ErrInvalidOTP, "code is burned after too many attempts")
}

func TestAuthService_VerifyOTPLastAttemptMayStillSucceed(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	phone := model.Identity{Phone: "+94770000001"}

	_, err := f.svc.RequestOTP(ctx, phone, model.RoleLaboratory)
	require.NoError(t, err)
	good := f.code(t, phone)
	bad := "000000"
	if good == bad {
		bad = "111111"
	}
	for i := 1; i < maxOTPAttempts; i++ {
		_, err = f.svc.VerifyOTP(ctx, phone, bad, "")
		require.ErrorIs(t, err, ErrInvalidOTP)
	}

	res, err := f.svc.VerifyOTP(ctx, phone, good, "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}

func TestAuthService_VerifyOTPConcurrentGuessesAreAllCounted(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	email := model.Identity{Email: "lab@salt.lk"}

	_, err := f.svc.RequestOTP(ctx, email, model.RoleLaboratory)
	require.NoError(t, err)
	good := f.code(t, email)
	bad := "000000"
	if good == bad {
		bad = "111111"
	}

	var wg sync.WaitGroup
	var burned atomic.Int32
	for i := 0; i < 2*maxOTPAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.VerifyOTP(ctx, email, bad, "")
			if errors.Is(err, ErrTooManyAttempts) {
				burned.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, burned.Load(), int32(1))
	_, err = f.svc.VerifyOTP(ctx, email, good, "")
	assert.ErrorIs(t, err, ErrInvalidOTP, "code is burned once the attempt budget is spent")
}

func TestAuthService_AdminLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.svc.EnsureAdmin(ctx, "Admin@Salt.lk", "s3cret!"))
	require.NoError(t, f.svc.EnsureAdmin(ctx, "admin@salt.lk", "other"), "second seed is a no-op")
	all, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotEqual(t, "s3cret!", all[0].PasswordHash)
	assert.True(t, utils.CheckPasswordHash("s3cret!", all[0].PasswordHash), "stored hash is bcrypt of the seed password")

	token, account, err := f.svc.Login(ctx, "admin@salt.lk", "s3cret!", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, model.RoleSuperAdmin, account.Role)

	_, _, err = f.svc.Login(ctx, "admin@salt.lk", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.svc.Login(ctx, "nobody@salt.lk", "s3cret!", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	hash, err := utils.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, &model.Account{ID: "u2", Email: "soc@salt.lk", Role: model.RoleSaltSociety, PasswordHash: hash}))
	_, _, err = f.svc.Login(ctx, "soc@salt.lk", "pw", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "only administrators use password login")
}

func TestAuthService_ProfileAndOnboard(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.svc.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, f.users.Create(ctx, &model.Account{ID: "u1", Phone: "+9477", Role: model.RoleLandowner}))
	account, err := f.svc.Onboard(ctx, "u1", "  Nimal Perera ")
	require.NoError(t, err)
	assert.Equal(t, "Nimal Perera", account.Name)

	stored, err := f.svc.Profile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, stored.IsOnboarded)
}
