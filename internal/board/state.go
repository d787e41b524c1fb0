// Package board holds the client-side mirror of the board and the drag
// controller that reorders it.
package board

import (
	"slices"
	"sync"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// State is the in-memory mirror of the server plus the entity under drag.
type State struct {
	Columns      []model.Column
	Tasks        []model.Task
	ActiveColumn *model.Column
	ActiveTask   *model.Task
}

// TasksIn returns the tasks of column in mirror order.
func (s State) TasksIn(columnID int64) []model.Task {
	var out []model.Task
	for _, t := range s.Tasks {
		if t.ColumnID == columnID {
			out = append(out, t)
		}
	}
	return out
}

func (s State) ColumnIndex(id int64) int {
	return slices.IndexFunc(s.Columns, func(c model.Column) bool { return c.ID == id })
}

func (s State) TaskIndex(id int64) int {
	return slices.IndexFunc(s.Tasks, func(t model.Task) bool { return t.ID == id })
}

// Action is a state transition handled by Reduce.
type Action interface {
	reduce(State) State
}

type SetColumns struct{ Columns []model.Column }

type SetTasks struct{ Tasks []model.Task }

type SetActiveColumn struct{ Column *model.Column }

type SetActiveTask struct{ Task *model.Task }

type AddColumn struct{ Column model.Column }

// ReplaceColumn swaps the column with the same id.
type ReplaceColumn struct{ Column model.Column }

// RemoveColumn drops the column and every task that belongs to it.
type RemoveColumn struct{ ID int64 }

type AddTask struct{ Task model.Task }

type ReplaceTask struct{ Task model.Task }

type RemoveTask struct{ ID int64 }

func (a SetColumns) reduce(s State) State {
	s.Columns = slices.Clone(a.Columns)
	return s
}

func (a SetTasks) reduce(s State) State {
	s.Tasks = slices.Clone(a.Tasks)
	return s
}

func (a SetActiveColumn) reduce(s State) State {
	s.ActiveColumn = clonePtr(a.Column)
	return s
}

func (a SetActiveTask) reduce(s State) State {
	s.ActiveTask = clonePtr(a.Task)
	return s
}

func (a AddColumn) reduce(s State) State {
	s.Columns = append(slices.Clone(s.Columns), a.Column)
	return s
}

func (a ReplaceColumn) reduce(s State) State {
	s.Columns = slices.Clone(s.Columns)
	if i := s.ColumnIndex(a.Column.ID); i >= 0 {
		s.Columns[i] = a.Column
	}
	return s
}

func (a RemoveColumn) reduce(s State) State {
	s.Columns = slices.DeleteFunc(slices.Clone(s.Columns), func(c model.Column) bool { return c.ID == a.ID })
	s.Tasks = slices.DeleteFunc(slices.Clone(s.Tasks), func(t model.Task) bool { return t.ColumnID == a.ID })
	return s
}

func (a AddTask) reduce(s State) State {
	s.Tasks = append(slices.Clone(s.Tasks), a.Task)
	return s
}

func (a ReplaceTask) reduce(s State) State {
	s.Tasks = slices.Clone(s.Tasks)
	if i := s.TaskIndex(a.Task.ID); i >= 0 {
		s.Tasks[i] = a.Task
	}
	return s
}

func (a RemoveTask) reduce(s State) State {
	s.Tasks = slices.DeleteFunc(slices.Clone(s.Tasks), func(t model.Task) bool { return t.ID == a.ID })
	return s
}

// Reduce applies action to s. The slices of s are never modified in place.
func Reduce(s State, action Action) State {
	if action == nil {
		return s
	}
	return action.reduce(s)
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Store holds the current State. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{}
}

// State returns a snapshot. Callers must not modify the returned slices.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Dispatch(actions ...Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
}
