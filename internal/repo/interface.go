package repo

import (
	"context"
	"time"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// Idempotency key scopes.
const (
	ScopeColumnCreate  = "columns.create"
	ScopeTaskCreate    = "tasks.create"
	ScopeColumnReorder = "columns.reorder"
	ScopeTaskReorder   = "tasks.reorder"
)

// ColumnRepository определяет интерфейс для работы с колонками
type ColumnRepository interface {
	List(ctx context.Context) ([]model.Column, error)
	Get(ctx context.Context, id int64) (model.Column, error)
	Create(ctx context.Context, in model.ColumnInput) (model.Column, error)
	Update(ctx context.Context, id int64, in model.ColumnInput) (model.Column, error)
	Delete(ctx context.Context, id int64) (model.Column, error)
	// Reorder assigns position i to ids[i] in a single transaction. ids must
	// list every column, otherwise ErrorConflict. A key that was already
	// applied is not applied again; replayed reports that.
	Reorder(ctx context.Context, key string, ids []int64) (cols []model.Column, replayed bool, err error)
	NormalizePositions(ctx context.Context) (int64, error)
}

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	Create(ctx context.Context, in model.TaskInput) (model.Task, error)
	Update(ctx context.Context, id int64, in model.TaskInput) (model.Task, error)
	Delete(ctx context.Context, id int64) (model.Task, error)
	// Reorder moves every listed task into its group. After the move each group
	// must list all tasks of its column, otherwise ErrorConflict.
	Reorder(ctx context.Context, key string, groups []model.TaskGroup) (tasks []model.Task, replayed bool, err error)
	NormalizePositions(ctx context.Context) (int64, error)
}

type IdempotencyRepository interface {
	SaveIdempotencyKey(ctx context.Context, scope, key string, resourceID int64) error
	GetIdempotencyKey(ctx context.Context, scope, key string) (int64, error)
	PurgeIdempotencyKeys(ctx context.Context, before time.Time) (int64, error)
}
