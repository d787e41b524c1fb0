package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/kanban-board/internal/client"
	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// API is the part of the REST client the session needs.
type API interface {
	ListColumns(ctx context.Context) ([]model.Column, error)
	CreateColumn(ctx context.Context, in model.ColumnInput, idempKey string) (model.Column, error)
	UpdateColumn(ctx context.Context, id int64, in model.ColumnInput) (model.Column, error)
	DeleteColumn(ctx context.Context, id int64) (model.Column, error)
	ReorderColumns(ctx context.Context, idempKey string, ids []int64) (model.ColumnReorderAck, error)

	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, in model.TaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, id int64) (model.Task, error)
	ReorderTasks(ctx context.Context, idempKey string, groups []model.TaskGroup) (model.TaskReorderAck, error)
}

// Session keeps the mirror in sync with the server.
type Session struct {
	api    API
	store  *Store
	drag   *Controller
	logger *zap.Logger
	newKey func() string
}

func NewSession(api API, logger *zap.Logger) *Session {
	store := NewStore()
	return &Session{
		api:    api,
		store:  store,
		drag:   NewController(store),
		logger: logger,
		newKey: uuid.NewString,
	}
}

func (s *Session) State() State { return s.store.State() }

func (s *Session) Drag() *Controller { return s.drag }

// Load fetches columns and tasks independently. A failed fetch keeps that
// part of the mirror as it was; the first error is returned.
func (s *Session) Load(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error {
		cols, err := s.api.ListColumns(ctx)
		if err != nil {
			s.logger.Error("failed to load columns", zap.Error(err))
			return fmt.Errorf("load columns: %w", err)
		}
		s.store.Dispatch(SetColumns{Columns: cols})
		return nil
	})
	g.Go(func() error {
		tasks, err := s.api.ListTasks(ctx)
		if err != nil {
			s.logger.Error("failed to load tasks", zap.Error(err))
			return fmt.Errorf("load tasks: %w", err)
		}
		s.store.Dispatch(SetTasks{Tasks: tasks})
		return nil
	})

	return g.Wait()
}

// CreateColumn appends a column titled "Column N".
func (s *Session) CreateColumn(ctx context.Context) (model.Column, error) {
	st := s.store.State()
	n := len(st.Columns)
	in := model.ColumnInput{
		Title:    fmt.Sprintf("Column %d", n+1),
		Position: model.IntPtr(n),
	}

	col, err := s.api.CreateColumn(ctx, in, s.newKey())
	if err != nil {
		s.logger.Error("failed to create column", zap.Error(err))
		return model.Column{}, err
	}
	s.store.Dispatch(AddColumn{Column: col})
	return col, nil
}

func (s *Session) UpdateColumnTitle(ctx context.Context, id int64, title string) (model.Column, error) {
	st := s.store.State()
	i := st.ColumnIndex(id)
	if i < 0 {
		return model.Column{}, fmt.Errorf("column %d is not on the board", id)
	}
	in := model.ColumnInput{Title: title, Position: model.IntPtr(st.Columns[i].Position)}

	col, err := s.api.UpdateColumn(ctx, id, in)
	if err != nil {
		s.logger.Error("failed to update column", zap.Int64("column_id", id), zap.Error(err))
		return model.Column{}, err
	}
	s.store.Dispatch(ReplaceColumn{Column: col})
	return col, nil
}

// DeleteColumn removes the column and, locally, its tasks. A column the
// server no longer has is dropped from the mirror as well.
func (s *Session) DeleteColumn(ctx context.Context, id int64) error {
	if _, err := s.api.DeleteColumn(ctx, id); err != nil && !gone(err) {
		s.logger.Error("failed to delete column", zap.Int64("column_id", id), zap.Error(err))
		return err
	}
	s.store.Dispatch(RemoveColumn{ID: id})
	return nil
}

// CreateTask appends a default task to column.
func (s *Session) CreateTask(ctx context.Context, columnID int64) (model.Task, error) {
	st := s.store.State()
	in := model.TaskInput{
		ColumnID:    columnID,
		Content:     fmt.Sprintf("Task %d", len(st.Tasks)+1),
		Description: "Description",
		Priority:    model.PriorityLow,
		Difficulty:  model.DifficultyEasy,
		Position:    model.IntPtr(len(st.TasksIn(columnID))),
	}

	task, err := s.api.CreateTask(ctx, in, s.newKey())
	if err != nil {
		s.logger.Error("failed to create task", zap.Int64("column_id", columnID), zap.Error(err))
		return model.Task{}, err
	}
	s.store.Dispatch(AddTask{Task: task})
	return task, nil
}

// UpdateTask stores every mutable field of task.
func (s *Session) UpdateTask(ctx context.Context, task model.Task) (model.Task, error) {
	in := model.TaskInput{
		ColumnID:    task.ColumnID,
		Content:     task.Content,
		Description: task.Description,
		Priority:    task.Priority,
		Difficulty:  task.Difficulty,
		Position:    model.IntPtr(task.Position),
	}

	updated, err := s.api.UpdateTask(ctx, task.ID, in)
	if err != nil {
		s.logger.Error("failed to update task", zap.Int64("task_id", task.ID), zap.Error(err))
		return model.Task{}, err
	}
	s.store.Dispatch(ReplaceTask{Task: updated})
	return updated, nil
}

func (s *Session) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.api.DeleteTask(ctx, id); err != nil && !gone(err) {
		s.logger.Error("failed to delete task", zap.Int64("task_id", id), zap.Error(err))
		return err
	}
	s.store.Dispatch(RemoveTask{ID: id})
	return nil
}

// gone reports an empty delete result: the row was already removed.
func gone(err error) bool {
	return errors.Is(err, client.ErrNotFound)
}

func (s *Session) StartDrag(item Item) bool { return s.drag.Start(item) }

func (s *Session) DragOver(over *Item) { s.drag.Over(over) }

func (s *Session) CancelDrag() { s.drag.Cancel() }

// EndDrag drops the dragged item and persists the result.
func (s *Session) EndDrag(ctx context.Context, over *Item) error {
	return s.Commit(ctx, s.drag.End(over))
}

// Commit persists plan with one request per kind. The acknowledged lists
// replace the mirror; on failure the mirror is reloaded from the server.
func (s *Session) Commit(ctx context.Context, plan *Plan) error {
	if plan == nil {
		return nil
	}

	if len(plan.Columns) > 0 {
		ack, err := s.api.ReorderColumns(ctx, s.newKey(), plan.Columns)
		if err != nil {
			return s.resync(ctx, "columns", err)
		}
		s.logger.Debug("columns reordered", zap.String("key", ack.Key), zap.Bool("replayed", ack.Replayed))
		s.store.Dispatch(SetColumns{Columns: ack.Columns})
	}

	if len(plan.Tasks) > 0 {
		ack, err := s.api.ReorderTasks(ctx, s.newKey(), plan.Tasks)
		if err != nil {
			return s.resync(ctx, "tasks", err)
		}
		s.logger.Debug("tasks reordered", zap.String("key", ack.Key), zap.Bool("replayed", ack.Replayed))
		s.store.Dispatch(SetTasks{Tasks: ack.Tasks})
	}
	return nil
}

func (s *Session) resync(ctx context.Context, what string, err error) error {
	s.logger.Error("failed to persist order", zap.String("kind", what), zap.Error(err))
	if lerr := s.Load(ctx); lerr != nil {
		s.logger.Warn("reload after failed reorder", zap.Error(lerr))
	}
	return fmt.Errorf("reorder %s: %w", what, err)
}
