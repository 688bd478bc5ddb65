package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresKV_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	kv := NewPostgresKV(mock, "web")

	mock.ExpectQuery("SELECT value FROM client_storage").
		WithArgs("web", "c1:auth_token").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow("tok1"))

	v, err := kv.Get(context.Background(), "c1:auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok1", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_GetMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	kv := NewPostgresKV(mock, "web")

	mock.ExpectQuery("SELECT value FROM client_storage").
		WithArgs("web", "missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = kv.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_SetAndDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	kv := NewPostgresKV(mock, "web")

	mock.ExpectExec("INSERT INTO client_storage").
		WithArgs("web", "auth_token", "tok1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM client_storage").
		WithArgs("web", "auth_token").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, kv.Set(context.Background(), "auth_token", "tok1"))
	require.NoError(t, kv.Delete(context.Background(), "auth_token"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresKV_ErrorsAreWrapped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	kv := NewPostgresKV(mock, "web")
	boom := errors.New("connection reset")

	mock.ExpectExec("INSERT INTO client_storage").
		WithArgs("web", "k", "v").
		WillReturnError(boom)

	err = kv.Set(context.Background(), "k", "v")
	assert.ErrorIs(t, err, boom)
}
