package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type IdempotencyRepo struct {
	db *sql.DB
}

func NewIdempotencyRepo(db *sql.DB) *IdempotencyRepo {
	return &IdempotencyRepo{db: db}
}

func (r *IdempotencyRepo) SaveIdempotencyKey(ctx context.Context, scope, key string, resourceID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_keys (scope, key, resource_id) VALUES (?, ?, ?)
		ON CONFLICT (scope, key) DO NOTHING
	`, scope, key, resourceID)
	return err
}

func (r *IdempotencyRepo) GetIdempotencyKey(ctx context.Context, scope, key string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE scope = ? AND key = ?
	`, scope, key).Scan(&id)
	return id, mapError(err)
}

// created_at is stored as unix seconds.
func (r *IdempotencyRepo) PurgeIdempotencyKeys(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
