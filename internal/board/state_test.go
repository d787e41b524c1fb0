package board

import (
	"testing"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	base := State{
		Columns: []model.Column{{ID: 1, Title: "Todo", Position: 0}, {ID: 2, Title: "Done", Position: 1}},
		Tasks: []model.Task{
			{ID: 10, ColumnID: 1, Content: "a"},
			{ID: 11, ColumnID: 2, Content: "b"},
			{ID: 12, ColumnID: 1, Content: "c", Position: 1},
		},
	}

	tests := []struct {
		name   string
		action Action
		check  func(t *testing.T, s State)
	}{
		{
			name:   "set columns",
			action: SetColumns{Columns: []model.Column{{ID: 3, Title: "X"}}},
			check: func(t *testing.T, s State) {
				assert.Equal(t, []model.Column{{ID: 3, Title: "X"}}, s.Columns)
				assert.Len(t, s.Tasks, 3)
			},
		},
		{
			name:   "set tasks",
			action: SetTasks{Tasks: nil},
			check: func(t *testing.T, s State) {
				assert.Empty(t, s.Tasks)
				assert.Len(t, s.Columns, 2)
			},
		},
		{
			name:   "add column",
			action: AddColumn{Column: model.Column{ID: 3, Title: "Column 3", Position: 2}},
			check: func(t *testing.T, s State) {
				require.Len(t, s.Columns, 3)
				assert.Equal(t, int64(3), s.Columns[2].ID)
			},
		},
		{
			name:   "replace column",
			action: ReplaceColumn{Column: model.Column{ID: 2, Title: "Shipped", Position: 1}},
			check: func(t *testing.T, s State) {
				assert.Equal(t, "Shipped", s.Columns[1].Title)
			},
		},
		{
			name:   "replace unknown column is ignored",
			action: ReplaceColumn{Column: model.Column{ID: 99, Title: "Ghost"}},
			check: func(t *testing.T, s State) {
				assert.Equal(t, base.Columns, s.Columns)
			},
		},
		{
			name:   "remove column drops its tasks",
			action: RemoveColumn{ID: 1},
			check: func(t *testing.T, s State) {
				assert.Equal(t, []model.Column{{ID: 2, Title: "Done", Position: 1}}, s.Columns)
				require.Len(t, s.Tasks, 1)
				assert.Equal(t, int64(11), s.Tasks[0].ID)
			},
		},
		{
			name:   "add task",
			action: AddTask{Task: model.Task{ID: 13, ColumnID: 2}},
			check: func(t *testing.T, s State) {
				assert.Len(t, s.TasksIn(2), 2)
			},
		},
		{
			name:   "replace task",
			action: ReplaceTask{Task: model.Task{ID: 10, ColumnID: 1, Content: "edited"}},
			check: func(t *testing.T, s State) {
				assert.Equal(t, "edited", s.Tasks[0].Content)
			},
		},
		{
			name:   "remove task",
			action: RemoveTask{ID: 11},
			check: func(t *testing.T, s State) {
				assert.Equal(t, -1, s.TaskIndex(11))
				assert.Len(t, s.Tasks, 2)
			},
		},
		{
			name:   "active task is copied",
			action: SetActiveTask{Task: &model.Task{ID: 10}},
			check: func(t *testing.T, s State) {
				require.NotNil(t, s.ActiveTask)
				assert.Equal(t, int64(10), s.ActiveTask.ID)
			},
		},
		{
			name:   "nil action",
			action: nil,
			check: func(t *testing.T, s State) {
				assert.Equal(t, base, s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns := append([]model.Column(nil), base.Columns...)
			tasks := append([]model.Task(nil), base.Tasks...)

			tt.check(t, Reduce(base, tt.action))

			// входное состояние не меняется
			assert.Equal(t, columns, base.Columns)
			assert.Equal(t, tasks, base.Tasks)
		})
	}
}

func TestState_TasksIn(t *testing.T) {
	s := State{Tasks: []model.Task{{ID: 1, ColumnID: 5}, {ID: 2, ColumnID: 6}, {ID: 3, ColumnID: 5}}}

	got := s.TasksIn(5)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Empty(t, s.TasksIn(7))
}

func TestStore_Dispatch(t *testing.T) {
	store := NewStore()

	store.Dispatch(
		SetColumns{Columns: []model.Column{{ID: 1}}},
		AddTask{Task: model.Task{ID: 2, ColumnID: 1}},
	)

	s := store.State()
	assert.Len(t, s.Columns, 1)
	assert.Len(t, s.Tasks, 1)
}
