package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

const columnFields = `id, title, position`

type ColumnRepo struct { // Репозиторий колонок поверх PostgreSQL
	pool *pgxpool.Pool
}

func NewColumnRepo(pool *pgxpool.Pool) *ColumnRepo {
	return &ColumnRepo{
		pool: pool,
	}
}

func (r *ColumnRepo) List(ctx context.Context) ([]model.Column, error) {
	return listColumns(ctx, r.pool)
}

func (r *ColumnRepo) Get(ctx context.Context, id int64) (model.Column, error) {
	var c model.Column
	err := r.pool.QueryRow(ctx, `
		SELECT `+columnFields+`
		FROM columns
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Title, &c.Position)
	return c, mapError(err)
}

func (r *ColumnRepo) Create(ctx context.Context, in model.ColumnInput) (model.Column, error) {
	var c model.Column
	// Без позиции колонка добавляется в конец
	err := r.pool.QueryRow(ctx, `
		INSERT INTO columns (title, position)
		VALUES ($1, COALESCE($2::int, (SELECT COALESCE(MAX(position) + 1, 0) FROM columns)))
		RETURNING `+columnFields+`
	`, in.Title, in.Position).Scan(&c.ID, &c.Title, &c.Position)
	return c, mapError(err)
}

func (r *ColumnRepo) Update(ctx context.Context, id int64, in model.ColumnInput) (model.Column, error) {
	var c model.Column
	err := r.pool.QueryRow(ctx, `
		UPDATE columns
		SET title = $2, position = COALESCE($3::int, position)
		WHERE id = $1
		RETURNING `+columnFields+`
	`, id, in.Title, in.Position).Scan(&c.ID, &c.Title, &c.Position)
	return c, mapError(err)
}

func (r *ColumnRepo) Delete(ctx context.Context, id int64) (model.Column, error) {
	var c model.Column
	err := r.pool.QueryRow(ctx, `
		DELETE FROM columns
		WHERE id = $1
		RETURNING `+columnFields+`
	`, id).Scan(&c.ID, &c.Title, &c.Position)
	return c, mapError(err)
}

func (r *ColumnRepo) Reorder(ctx context.Context, key string, ids []int64) ([]model.Column, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	replayed, err := keyExists(ctx, tx, ScopeColumnReorder, key)
	if err != nil {
		return nil, false, err
	}

	if !replayed {
		// Порядок должен перечислять все колонки, иначе позиции совпадут
		var total int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM columns`).Scan(&total); err != nil {
			return nil, false, err
		}
		if total != len(ids) {
			return nil, false, fmt.Errorf("%w: order lists %d of %d columns", ErrorConflict, len(ids), total)
		}

		batch := &pgx.Batch{}
		for i, id := range ids {
			batch.Queue(`UPDATE columns SET position = $2 WHERE id = $1`, id, i)
		}
		if err := execBatch(ctx, tx, batch); err != nil {
			return nil, false, err
		}
		if err := saveKey(ctx, tx, ScopeColumnReorder, key, 0); err != nil {
			return nil, false, err
		}
	}

	cols, err := listColumns(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	return cols, replayed, tx.Commit(ctx)
}

// NormalizePositions renumbers columns to 0..n-1 keeping their order.
func (r *ColumnRepo) NormalizePositions(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE columns c
		SET position = ranked.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position, id) AS rn
			FROM columns
		) ranked
		WHERE c.id = ranked.id AND c.position <> ranked.rn - 1
	`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listColumns(ctx context.Context, q querier) ([]model.Column, error) {
	rows, err := q.Query(ctx, `
		SELECT `+columnFields+`
		FROM columns
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make([]model.Column, 0)
	for rows.Next() {
		var c model.Column
		if err := rows.Scan(&c.ID, &c.Title, &c.Position); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// execBatch sends the batch and fails with ErrorConflict when any statement
// touched no row.
func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		cmd, err := results.Exec()
		if err != nil {
			results.Close()
			return err
		}
		if cmd.RowsAffected() == 0 {
			results.Close()
			return fmt.Errorf("%w: statement %d matched no row", ErrorConflict, i)
		}
	}
	return results.Close()
}
