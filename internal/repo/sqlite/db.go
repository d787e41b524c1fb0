// Package sqlite implements the board repositories on top of SQLite. It is
// used for local development and for tests that should not need Docker.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

// Open opens the database file at path. ":memory:" gives a private in-memory
// database; the pool is limited to one connection so every query sees it.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repo.ErrorNotFound
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return repo.ErrorConflict
	}
	return err
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func keyExists(ctx context.Context, tx *sql.Tx, scope, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM idempotency_keys WHERE scope = ? AND key = ?)
	`, scope, key).Scan(&exists)
	return exists, err
}

func saveKey(ctx context.Context, tx *sql.Tx, scope, key string, resourceID int64) error {
	if key == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO idempotency_keys (scope, key, resource_id) VALUES (?, ?, ?)
		ON CONFLICT (scope, key) DO NOTHING
	`, scope, key, resourceID)
	return err
}

// execEach runs stmt once per args entry and fails with ErrorConflict when a
// run touched no row.
func execEach(ctx context.Context, tx *sql.Tx, stmt string, args [][]any) error {
	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer prepared.Close()

	for i, a := range args {
		res, err := prepared.ExecContext(ctx, a...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: statement %d matched no row", repo.ErrorConflict, i)
		}
	}
	return nil
}
