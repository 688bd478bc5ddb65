package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"salt_portal/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// DBTX is the subset of *pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
	FindByPhone(ctx context.Context, phone string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
}

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, COALESCE(phone, ''), COALESCE(email, ''), name, password_hash, role,
	is_onboarded, is_subscribed, trial_start_date, trial_end_date, is_verified, created_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	a := &model.Account{}
	var role string
	err := row.Scan(&a.ID, &a.Phone, &a.Email, &a.Name, &a.PasswordHash, &role,
		&a.IsOnboarded, &a.IsSubscribed, &a.TrialStartDate, &a.TrialEndDate, &a.IsVerified, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Role = model.Role(role)
	return a, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, a *model.Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	sql := `INSERT INTO users (id, phone, email, name, password_hash, role, is_onboarded, is_subscribed,
			trial_start_date, trial_end_date, is_verified, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, sql, a.ID, nullable(a.Phone), nullable(a.Email), a.Name, a.PasswordHash, string(a.Role),
		a.IsOnboarded, a.IsSubscribed, a.TrialStartDate, a.TrialEndDate, a.IsVerified, a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user %s: %w", a.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update rewrites the mutable profile fields.
func (r *userRepository) Update(ctx context.Context, a *model.Account) error {
	sql := `UPDATE users SET name = $2, is_onboarded = $3, is_subscribed = $4,
			trial_start_date = $5, trial_end_date = $6, is_verified = $7
            WHERE id = $1`
	tag, err := r.db.Exec(ctx, sql, a.ID, a.Name, a.IsOnboarded, a.IsSubscribed, a.TrialStartDate, a.TrialEndDate, a.IsVerified)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, where string, arg any) (*model.Account, error) {
	sql := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` = $1`
	a, err := scanAccount(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by %s: %w", where, err)
	}
	return a, nil
}

// FindByPhone retrieves a user by their phone number
func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*model.Account, error) {
	return r.findOne(ctx, "phone", phone)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, "email", email)
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return r.findOne(ctx, "id", id)
}

// List returns every user, newest first.
func (r *userRepository) List(ctx context.Context) ([]model.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return out, nil
}
