package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

type ColumnService struct {
	repo repo.ColumnRepository
	keys repo.IdempotencyRepository
}

func NewColumnService(repo repo.ColumnRepository, keys repo.IdempotencyRepository) *ColumnService {
	return &ColumnService{repo: repo, keys: keys}
}

func (s *ColumnService) List(ctx context.Context) ([]model.Column, error) {
	return s.repo.List(ctx)
}

func (s *ColumnService) Get(ctx context.Context, id int64) (model.Column, error) {
	return s.repo.Get(ctx, id)
}

func (s *ColumnService) Create(ctx context.Context, in model.ColumnInput, idempKey string) (model.Column, error) {
	if err := validateColumn(in); err != nil {
		return model.Column{}, err
	}

	// Если ключ уже использован, возвращаем созданную ранее колонку.
	// Удалённая с тех пор колонка даёт ErrorNotFound, ключ повторно не привязывается.
	if idempKey != "" {
		if existingID, err := s.keys.GetIdempotencyKey(ctx, repo.ScopeColumnCreate, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	col, err := s.repo.Create(ctx, in)
	if err != nil {
		return col, err
	}

	if idempKey != "" {
		if err := s.keys.SaveIdempotencyKey(ctx, repo.ScopeColumnCreate, idempKey, col.ID); err != nil {
			return col, err
		}
	}
	return col, nil
}

func (s *ColumnService) Update(ctx context.Context, id int64, in model.ColumnInput) (model.Column, error) {
	if err := validateColumn(in); err != nil {
		return model.Column{}, err
	}
	return s.repo.Update(ctx, id, in)
}

// Delete removes the column only. Its tasks stay in storage.
func (s *ColumnService) Delete(ctx context.Context, id int64) (model.Column, error) {
	return s.repo.Delete(ctx, id)
}

// Reorder stores position i for ids[i] atomically and acknowledges with the
// resulting column list.
func (s *ColumnService) Reorder(ctx context.Context, key string, ids []int64) (model.ColumnReorderAck, error) {
	if err := validateIDs("ids", ids); err != nil {
		return model.ColumnReorderAck{}, err
	}
	if len(ids) == 0 {
		return model.ColumnReorderAck{}, fmt.Errorf("%w: ids must not be empty", ErrValidation)
	}

	cols, replayed, err := s.repo.Reorder(ctx, key, ids)
	if err != nil {
		return model.ColumnReorderAck{}, err
	}
	return model.ColumnReorderAck{Key: key, Replayed: replayed, Columns: cols}, nil
}

func validateColumn(in model.ColumnInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return validatePosition(in.Position)
}

func validatePosition(p *int) error {
	if p != nil && *p < 0 {
		return fmt.Errorf("%w: position must not be negative", ErrValidation)
	}
	return nil
}

func validateIDs(field string, ids []int64) error {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%w: %s contains invalid id %d", ErrValidation, field, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s contains id %d twice", ErrValidation, field, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
