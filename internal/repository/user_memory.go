package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"salt_portal/internal/model"
)

// MemoryUserRepository keeps users in process for local runs and tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.Account
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]model.Account)}
}

func (r *MemoryUserRepository) Create(_ context.Context, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	for _, existing := range r.users {
		if existing.ID == a.ID ||
			(a.Phone != "" && existing.Phone == a.Phone) ||
			(a.Email != "" && strings.EqualFold(existing.Email, a.Email)) {
			return fmt.Errorf("user %s: %w", a.ID, ErrAlreadyExists)
		}
	}
	r.users[a.ID] = *a
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[a.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", a.ID, ErrNotFound)
	}
	existing.Name = a.Name
	existing.IsOnboarded = a.IsOnboarded
	existing.IsSubscribed = a.IsSubscribed
	existing.TrialStartDate = a.TrialStartDate
	existing.TrialEndDate = a.TrialEndDate
	existing.IsVerified = a.IsVerified
	r.users[a.ID] = existing
	return nil
}

func (r *MemoryUserRepository) find(match func(model.Account) bool) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.users {
		if match(a) {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByPhone(_ context.Context, phone string) (*model.Account, error) {
	return r.find(func(a model.Account) bool { return a.Phone != "" && a.Phone == phone })
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	return r.find(func(a model.Account) bool { return a.Email != "" && strings.EqualFold(a.Email, email) })
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.Account, error) {
	return r.find(func(a model.Account) bool { return a.ID == id })
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Account, 0, len(r.users))
	for _, a := range r.users {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
