package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IdempotencyRepo struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepo(pool *pgxpool.Pool) *IdempotencyRepo {
	return &IdempotencyRepo{
		pool: pool,
	}
}

func (r *IdempotencyRepo) SaveIdempotencyKey(ctx context.Context, scope, key string, resourceID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (scope, key, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (scope, key) DO NOTHING
	`, scope, key, resourceID)
	return err
}

func (r *IdempotencyRepo) GetIdempotencyKey(ctx context.Context, scope, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE scope = $1 AND key = $2
	`, scope, key).Scan(&id)
	return id, mapError(err)
}

func (r *IdempotencyRepo) PurgeIdempotencyKeys(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// keyExists reports whether key was already recorded for scope. An empty key
// never exists.
func keyExists(ctx context.Context, tx pgx.Tx, scope, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM idempotency_keys WHERE scope = $1 AND key = $2)
	`, scope, key).Scan(&exists)
	return exists, err
}

func saveKey(ctx context.Context, tx pgx.Tx, scope, key string, resourceID int64) error {
	if key == "" {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO idempotency_keys (scope, key, resource_id) VALUES ($1, $2, $3)
		ON CONFLICT (scope, key) DO NOTHING
	`, scope, key, resourceID)
	return err
}
