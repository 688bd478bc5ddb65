package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salt_portal/internal/model"
)

var accountColumns = []string{
	"id", "phone", "email", "name", "password_hash", "role",
	"is_onboarded", "is_subscribed", "trial_start_date", "trial_end_date", "is_verified", "created_at",
}

func TestUserRepository_FindByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock)
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	start := created
	end := created.AddDate(0, 0, 14)

	mock.ExpectQuery("FROM users WHERE phone").
		WithArgs("+94771234567").
		WillReturnRows(pgxmock.NewRows(accountColumns).AddRow(
			"u1", "+94771234567", "", "Nimal", "", "LANDOWNER",
			true, false, &start, &end, true, created,
		))

	a, err := repo.FindByPhone(context.Background(), "+94771234567")
	require.NoError(t, err)
	assert.Equal(t, "u1", a.ID)
	assert.Equal(t, model.RoleLandowner, a.Role)
	assert.True(t, a.IsOnboarded)
	require.NotNil(t, a.TrialEndDate)
	assert.Equal(t, end, *a.TrialEndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock)
	mock.ExpectQuery("FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock)
	a := &model.Account{ID: "u1", Phone: "+94771234567", Role: model.RoleLandowner}

	mock.ExpectExec("INSERT INTO users").
		WithArgs("u1", pgxmock.AnyArg(), pgxmock.AnyArg(), "", "", "LANDOWNER",
			false, false, pgxmock.AnyArg(), pgxmock.AnyArg(), false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), a))
	assert.False(t, a.CreatedAt.IsZero())

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err = repo.Create(context.Background(), &model.Account{ID: "u2", Phone: "+94771234567"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Update(context.Background(), &model.Account{ID: "u1", IsOnboarded: true}))

	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err = repo.Update(context.Background(), &model.Account{ID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUserRepository(mock)
	now := time.Now().UTC()
	start, end := now, now.AddDate(0, 0, 14)

	mock.ExpectQuery("FROM users ORDER BY created_at DESC").
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("u2", "", "admin@salt.lk", "Admin", "hash", "ADMIN", true, true, &start, &end, true, now).
			AddRow("u1", "+94771234567", "", "Nimal", "", "LANDOWNER", false, false, &start, &end, true, now.Add(-time.Hour)))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, model.RoleAdmin, users[0].Role)
	assert.Equal(t, "u1", users[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &model.Account{ID: "u1", Phone: "+94771234567", Role: model.RoleLandowner}))
	require.NoError(t, repo.Create(ctx, &model.Account{ID: "u2", Email: "Admin@Salt.lk", Role: model.RoleAdmin}))

	err := repo.Create(ctx, &model.Account{ID: "u3", Phone: "+94771234567"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	a, err := repo.FindByEmail(ctx, "admin@salt.lk")
	require.NoError(t, err)
	assert.Equal(t, "u2", a.ID)

	_, err = repo.FindByPhone(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	a.IsOnboarded = true
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.FindByID(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, got.IsOnboarded)

	assert.ErrorIs(t, repo.Update(ctx, &model.Account{ID: "ghost"}), ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
