package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

type TaskService struct {
	repo repo.TaskRepository
	keys repo.IdempotencyRepository
}

func NewTaskService(repo repo.TaskRepository, keys repo.IdempotencyRepository) *TaskService {
	return &TaskService{repo: repo, keys: keys}
}

func (s *TaskService) Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	if err := s.validate(in); err != nil { // Валидация модели на корректность введенных данных
		return model.Task{}, err
	}

	// Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз.
	// Если задачу успели удалить, повтор отвечает ErrorNotFound
	if idempKey != "" {
		if existingID, err := s.keys.GetIdempotencyKey(ctx, repo.ScopeTaskCreate, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	// Создание новой задачи
	task, err := s.repo.Create(ctx, in)
	if err != nil {
		return task, err
	}

	// Сохранение нового ключа
	if idempKey != "" {
		if err := s.keys.SaveIdempotencyKey(ctx, repo.ScopeTaskCreate, idempKey, task.ID); err != nil {
			return task, err
		}
	}

	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return s.repo.List(ctx, filter)
}

func (s *TaskService) Update(ctx context.Context, id int64, in model.TaskInput) (model.Task, error) {
	if err := s.validate(in); err != nil {
		return model.Task{}, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *TaskService) Delete(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Delete(ctx, id)
}

// Reorder moves every listed task into its group's column at the listed index.
// A task may appear in one group only.
func (s *TaskService) Reorder(ctx context.Context, key string, groups []model.TaskGroup) (model.TaskReorderAck, error) {
	if len(groups) == 0 {
		return model.TaskReorderAck{}, fmt.Errorf("%w: columns must not be empty", ErrValidation)
	}

	columnIDs := make([]int64, 0, len(groups))
	var taskIDs []int64
	for _, g := range groups {
		columnIDs = append(columnIDs, g.ColumnID)
		taskIDs = append(taskIDs, g.TaskIDs...)
	}
	if err := validateIDs("columns", columnIDs); err != nil {
		return model.TaskReorderAck{}, err
	}
	if err := validateIDs("taskIds", taskIDs); err != nil {
		return model.TaskReorderAck{}, err
	}

	tasks, replayed, err := s.repo.Reorder(ctx, key, groups)
	if err != nil {
		return model.TaskReorderAck{}, err
	}
	return model.TaskReorderAck{Key: key, Replayed: replayed, Tasks: tasks}, nil
}

func (s *TaskService) validate(in model.TaskInput) error {
	if in.ColumnID <= 0 {
		return fmt.Errorf("%w: columnId is required", ErrValidation)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return validatePosition(in.Position)
}
