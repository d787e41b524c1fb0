package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

const taskFields = `id, column_id, content, description, priority, difficulty, position`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.ColumnID, &t.Content, &t.Description, &t.Priority, &t.Difficulty, &t.Position)
	return t, err
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return listTasks(ctx, r.pool, filter)
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskFields+`
		FROM tasks
		WHERE id = $1
	`, id))
	return t, mapError(err)
}

func (r *TaskRepo) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	// Позиции задач считаются внутри колонки
	t, err := scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (column_id, content, description, priority, difficulty, position)
		VALUES ($1, $2, $3, $4, $5,
			COALESCE($6::int, (SELECT COALESCE(MAX(position) + 1, 0) FROM tasks WHERE column_id = $1)))
		RETURNING `+taskFields+`
	`, in.ColumnID, in.Content, in.Description, in.Priority, in.Difficulty, in.Position))
	return t, mapError(err)
}

func (r *TaskRepo) Update(ctx context.Context, id int64, in model.TaskInput) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET column_id = $2, content = $3, description = $4, priority = $5, difficulty = $6,
			position = COALESCE($7::int, position)
		WHERE id = $1
		RETURNING `+taskFields+`
	`, id, in.ColumnID, in.Content, in.Description, in.Priority, in.Difficulty, in.Position))
	return t, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `
		DELETE FROM tasks
		WHERE id = $1
		RETURNING `+taskFields+`
	`, id))
	return t, mapError(err)
}

func (r *TaskRepo) Reorder(ctx context.Context, key string, groups []model.TaskGroup) ([]model.Task, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	replayed, err := keyExists(ctx, tx, ScopeTaskReorder, key)
	if err != nil {
		return nil, false, err
	}

	if !replayed {
		for _, g := range groups {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM columns WHERE id = $1)`, g.ColumnID).Scan(&exists); err != nil {
				return nil, false, err
			}
			if !exists {
				return nil, false, fmt.Errorf("%w: column %d does not exist", ErrorConflict, g.ColumnID)
			}
		}

		batch := &pgx.Batch{}
		for _, g := range groups {
			for i, id := range g.TaskIDs {
				batch.Queue(`UPDATE tasks SET column_id = $2, position = $3 WHERE id = $1`, id, g.ColumnID, i)
			}
		}
		if err := execBatch(ctx, tx, batch); err != nil {
			return nil, false, err
		}
		// Каждая группа обязана перечислить все задачи своей колонки
		for _, g := range groups {
			var total int
			if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE column_id = $1`, g.ColumnID).Scan(&total); err != nil {
				return nil, false, err
			}
			if total != len(g.TaskIDs) {
				return nil, false, fmt.Errorf("%w: column %d holds %d tasks, order lists %d", ErrorConflict, g.ColumnID, total, len(g.TaskIDs))
			}
		}
		if err := saveKey(ctx, tx, ScopeTaskReorder, key, 0); err != nil {
			return nil, false, err
		}
	}

	tasks, err := listTasks(ctx, tx, model.TaskFilter{})
	if err != nil {
		return nil, false, err
	}
	return tasks, replayed, tx.Commit(ctx)
}

// NormalizePositions renumbers tasks to 0..k-1 inside every column.
func (r *TaskRepo) NormalizePositions(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tasks t
		SET position = ranked.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY column_id ORDER BY position, id) AS rn
			FROM tasks
		) ranked
		WHERE t.id = ranked.id AND t.position <> ranked.rn - 1
	`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func listTasks(ctx context.Context, q querier, filter model.TaskFilter) ([]model.Task, error) {
	rows, err := q.Query(ctx, `
		SELECT `+taskFields+`
		FROM tasks
		WHERE ($1::bigint IS NULL OR column_id = $1)
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
