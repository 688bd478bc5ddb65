package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"salt_portal/internal/model"
)

// PendingOTP is a code waiting to be verified.
type PendingOTP struct {
	Code     string
	Role     model.Role
	Attempts int
}

// OTPRepository holds pending codes keyed by phone or email.
type OTPRepository interface {
	Save(ctx context.Context, key string, otp PendingOTP, ttl time.Duration) error
	Get(ctx context.Context, key string) (*PendingOTP, error)
	// Attempt counts one verification attempt and returns the code with
	// the new count. Concurrent attempts each see a distinct count.
	Attempt(ctx context.Context, key string) (*PendingOTP, error)
	Delete(ctx context.Context, key string) error
}

// attemptScript bumps the counter only while the code exists, so an
// expired key is never recreated without a TTL.
var attemptScript = redis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
	return false
end
local n = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
return {code, redis.call('HGET', KEYS[1], 'role'), n}
`)

type redisOTPRepository struct {
	client redis.Cmdable
	prefix string
}

// NewRedisOTPRepository stores each code as a hash with a Redis expiry.
func NewRedisOTPRepository(client redis.Cmdable) OTPRepository {
	return &redisOTPRepository{client: client, prefix: "salt:otp:"}
}

func (r *redisOTPRepository) Save(ctx context.Context, key string, otp PendingOTP, ttl time.Duration) error {
	k := r.prefix + key
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, "code", otp.Code, "role", string(otp.Role), "attempts", otp.Attempts)
		pipe.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save otp: %w", err)
	}
	return nil
}

func (r *redisOTPRepository) Get(ctx context.Context, key string) (*PendingOTP, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get otp: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return nil, fmt.Errorf("failed to decode otp attempts: %w", err)
	}
	return &PendingOTP{Code: fields["code"], Role: model.Role(fields["role"]), Attempts: attempts}, nil
}

func (r *redisOTPRepository) Attempt(ctx context.Context, key string) (*PendingOTP, error) {
	res, err := attemptScript.Run(ctx, r.client, []string{r.prefix + key}).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record otp attempt: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("failed to record otp attempt: unexpected reply %v", res)
	}
	code, _ := res[0].(string)
	role, _ := res[1].(string)
	n, _ := res[2].(int64)
	return &PendingOTP{Code: code, Role: model.Role(role), Attempts: int(n)}, nil
}

func (r *redisOTPRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

type memoryOTP struct {
	otp       PendingOTP
	expiresAt time.Time
}

// MemoryOTPRepository is the in-process OTPRepository.
type MemoryOTPRepository struct {
	mu      sync.Mutex
	entries map[string]memoryOTP
	now     func() time.Time
}

func NewMemoryOTPRepository() *MemoryOTPRepository {
	return &MemoryOTPRepository{entries: make(map[string]memoryOTP), now: time.Now}
}

func (r *MemoryOTPRepository) Save(_ context.Context, key string, otp PendingOTP, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = memoryOTP{otp: otp, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemoryOTPRepository) Get(_ context.Context, key string) (*PendingOTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !r.now().Before(e.expiresAt) {
		delete(r.entries, key)
		return nil, ErrNotFound
	}
	otp := e.otp
	return &otp, nil
}

func (r *MemoryOTPRepository) Attempt(_ context.Context, key string) (*PendingOTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok || !r.now().Before(e.expiresAt) {
		delete(r.entries, key)
		return nil, ErrNotFound
	}
	e.otp.Attempts++
	r.entries[key] = e
	otp := e.otp
	return &otp, nil
}

func (r *MemoryOTPRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}
