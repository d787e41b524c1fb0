package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

const columnFields = `id, title, position`

type ColumnRepo struct {
	db *sql.DB
}

func NewColumnRepo(db *sql.DB) *ColumnRepo {
	return &ColumnRepo{db: db}
}

func (r *ColumnRepo) List(ctx context.Context) ([]model.Column, error) {
	return listColumns(ctx, r.db)
}

func (r *ColumnRepo) Get(ctx context.Context, id int64) (model.Column, error) {
	var c model.Column
	err := r.db.QueryRowContext(ctx, `SELECT `+columnFields+` FROM columns WHERE id = ?`, id).
		Scan(&c.ID, &c.Title, &c.Position)
	return c, mapError(err)
}

func (r *ColumnRepo) Create(ctx context.Context, in model.ColumnInput) (model.Column, error) {
	var c model.Column
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO columns (title, position)
		VALUES (?, COALESCE(?, (SELECT COALESCE(MAX(position) + 1, 0) FROM columns)))
		RETURNING `+columnFields,
		in.Title, in.Position).Scan(&c.ID, &c.Title, &c.Position)
	return c, mapError(err)
}

func (r *ColumnRepo) Update(ctx context.Context, id int64, in model.ColumnInput) (model.Column, error) {
	var c model.Column
	err := r.db.QueryRowContext(ctx, `
		UPDATE columns
		SET title = ?, position = COALESCE(?, position)
		WHERE id = ?
		RETURNING `+columnFields,
		in.Title, in.Position, id).Scan(&c.ID, &c.Title, &c.Position)
	return c, mapError(err)
}

func (r *ColumnRepo) Delete(ctx context.Context, id int64) (model.Column, error) {
	var c model.Column
	err := r.db.QueryRowContext(ctx, `DELETE FROM columns WHERE id = ? RETURNING `+columnFields, id).
		Scan(&c.ID, &c.Title, &c.Position)
	return c, mapError(err)
}

func (r *ColumnRepo) Reorder(ctx context.Context, key string, ids []int64) ([]model.Column, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	replayed, err := keyExists(ctx, tx, repo.ScopeColumnReorder, key)
	if err != nil {
		return nil, false, err
	}

	if !replayed {
		var total int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM columns`).Scan(&total); err != nil {
			return nil, false, err
		}
		if total != len(ids) {
			return nil, false, fmt.Errorf("%w: order lists %d of %d columns", repo.ErrorConflict, len(ids), total)
		}

		args := make([][]any, 0, len(ids))
		for i, id := range ids {
			args = append(args, []any{i, id})
		}
		if err := execEach(ctx, tx, `UPDATE columns SET position = ? WHERE id = ?`, args); err != nil {
			return nil, false, err
		}
		if err := saveKey(ctx, tx, repo.ScopeColumnReorder, key, 0); err != nil {
			return nil, false, err
		}
	}

	cols, err := listColumns(ctx, tx)
	if err != nil {
		return nil, false, err
	}
	return cols, replayed, tx.Commit()
}

func (r *ColumnRepo) NormalizePositions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE columns
		SET position = ranked.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position, id) AS rn
			FROM columns
		) AS ranked
		WHERE columns.id = ranked.id AND columns.position <> ranked.rn - 1
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func listColumns(ctx context.Context, q queryer) ([]model.Column, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+columnFields+` FROM columns ORDER BY position, id`)
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
