package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used here; pgxmock satisfies it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresKV stores values in the client_storage table, scoped by
// namespace so several front-end deployments can share one database.
type PostgresKV struct {
	db        DBTX
	namespace string
}

func NewPostgresKV(db DBTX, namespace string) *PostgresKV {
	return &PostgresKV{db: db, namespace: namespace}
}

func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	sql := `SELECT value FROM client_storage WHERE namespace = $1 AND key = $2`
	err := p.db.QueryRow(ctx, sql, p.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	sql := `INSERT INTO client_storage (namespace, key, value, updated_at)
            VALUES ($1, $2, $3, NOW())
            ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := p.db.Exec(ctx, sql, p.namespace, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	sql := `DELETE FROM client_storage WHERE namespace = $1 AND key = $2`
	if _, err := p.db.Exec(ctx, sql, p.namespace, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

var _ KV = (*PostgresKV)(nil)
