package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

const taskFields = `id, column_id, content, description, priority, difficulty, position`

type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.ColumnID, &t.Content, &t.Description, &t.Priority, &t.Difficulty, &t.Position)
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return listTasks(ctx, r.db, filter)
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskFields+` FROM tasks WHERE id = ?`, id))
	return t, mapError(err)
}

func (r *TaskRepo) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `
		INSERT INTO tasks (column_id, content, description, priority, difficulty, position)
		VALUES (?1, ?2, ?3, ?4, ?5,
			COALESCE(?6, (SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE column_id = ?1)))
		RETURNING `+taskFields,
		in.ColumnID, in.Content, in.Description, in.Priority, in.Difficulty, in.Position))
	return t, mapError(err)
}

func (r *TaskRepo) Update(ctx context.Context, id int64, in model.TaskInput) (model.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `
		UPDATE tasks
		SET column_id = ?, content = ?, description = ?, priority = ?, difficulty = ?,
			position = COALESCE(?, position)
		WHERE id = ?
		RETURNING `+taskFields,
		in.ColumnID, in.Content, in.Description, in.Priority, in.Difficulty, in.Position, id))
	return t, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) (model.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `DELETE FROM tasks WHERE id = ? RETURNING `+taskFields, id))
	return t, mapError(err)
}

func (r *TaskRepo) Reorder(ctx context.Context, key string, groups []model.TaskGroup) ([]model.Task, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	replayed, err := keyExists(ctx, tx, repo.ScopeTaskReorder, key)
	if err != nil {
		return nil, false, err
	}

	if !replayed {
		var args [][]any
		for _, g := range groups {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM columns WHERE id = ?)`, g.ColumnID).Scan(&exists); err != nil {
				return nil, false, err
			}
			if !exists {
				return nil, false, fmt.Errorf("%w: column %d does not exist", repo.ErrorConflict, g.ColumnID)
			}
			for i, id := range g.TaskIDs {
				args = append(args, []any{g.ColumnID, i, id})
			}
		}
		if err := execEach(ctx, tx, `UPDATE tasks SET column_id = ?, position = ? WHERE id = ?`, args); err != nil {
			return nil, false, err
		}
		if err := checkGroups(ctx, tx, groups); err != nil {
			return nil, false, err
		}
		if err := saveKey(ctx, tx, repo.ScopeTaskReorder, key, 0); err != nil {
			return nil, false, err
		}
	}

	tasks, err := listTasks(ctx, tx, model.TaskFilter{})
	if err != nil {
		return nil, false, err
	}
	return tasks, replayed, tx.Commit()
}

func (r *TaskRepo) NormalizePositions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET position = ranked.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY column_id ORDER BY position, id) AS rn
			FROM tasks
		) AS ranked
		WHERE tasks.id = ranked.id AND tasks.position <> ranked.rn - 1
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func listTasks(ctx context.Context, q queryer, filter model.TaskFilter) ([]model.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+taskFields+`
		FROM tasks
		WHERE (?1 IS NULL OR column_id = ?1)
		ORDER BY position, id
	`, filter.ColumnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// checkGroups fails with ErrorConflict when a group leaves out tasks that
// are still in its column.
func checkGroups(ctx context.Context, tx *sql.Tx, groups []model.TaskGroup) error {
	for _, g := range groups {
		var total int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE column_id = ?`, g.ColumnID).Scan(&total); err != nil {
			return err
		}
		if total != len(g.TaskIDs) {
			return fmt.Errorf("%w: column %d holds %d tasks, order lists %d", repo.ErrorConflict, g.ColumnID, total, len(g.TaskIDs))
		}
	}
	return nil
}
