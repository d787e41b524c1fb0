package ui

import (
	"context"
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/board"
	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// fakeAPI - сервер в памяти
type fakeAPI struct {
	columns  []model.Column
	tasks    []model.Task
	nextID   int64
	reorders [][]model.TaskGroup
}

func (f *fakeAPI) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeAPI) sorted() []model.Task {
	out := slices.Clone(f.tasks)
	slices.SortStableFunc(out, func(a, b model.Task) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return int(a.ID - b.ID)
	})
	return out
}

func (f *fakeAPI) ListColumns(context.Context) ([]model.Column, error) {
	return slices.Clone(f.columns), nil
}

func (f *fakeAPI) CreateColumn(_ context.Context, in model.ColumnInput, _ string) (model.Column, error) {
	c := model.Column{ID: f.id(), Title: in.Title, Position: *in.Position}
	f.columns = append(f.columns, c)
	return c, nil
}

func (f *fakeAPI) UpdateColumn(_ context.Context, id int64, in model.ColumnInput) (model.Column, error) {
	i := slices.IndexFunc(f.columns, func(c model.Column) bool { return c.ID == id })
	f.columns[i].Title = in.Title
	return f.columns[i], nil
}

func (f *fakeAPI) DeleteColumn(_ context.Context, id int64) (model.Column, error) {
	i := slices.IndexFunc(f.columns, func(c model.Column) bool { return c.ID == id })
	c := f.columns[i]
	f.columns = slices.Delete(f.columns, i, i+1)
	return c, nil
}

func (f *fakeAPI) ReorderColumns(_ context.Context, key string, ids []int64) (model.ColumnReorderAck, error) {
	cols := make([]model.Column, 0, len(ids))
	for pos, id := range ids {
		i := slices.IndexFunc(f.columns, func(c model.Column) bool { return c.ID == id })
		c := f.columns[i]
		c.Position = pos
		cols = append(cols, c)
	}
	f.columns = cols
	return model.ColumnReorderAck{Key: key, Columns: slices.Clone(cols)}, nil
}

func (f *fakeAPI) ListTasks(context.Context) ([]model.Task, error) {
	return f.sorted(), nil
}

func (f *fakeAPI) CreateTask(_ context.Context, in model.TaskInput, _ string) (model.Task, error) {
	t := model.Task{
		ID: f.id(), ColumnID: in.ColumnID, Content: in.Content, Description: in.Description,
		Priority: in.Priority, Difficulty: in.Difficulty, Position: *in.Position,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id int64, in model.TaskInput) (model.Task, error) {
	i := slices.IndexFunc(f.tasks, func(t model.Task) bool { return t.ID == id })
	f.tasks[i] = model.Task{
		ID: id, ColumnID: in.ColumnID, Content: in.Content, Description: in.Description,
		Priority: in.Priority, Difficulty: in.Difficulty, Position: *in.Position,
	}
	return f.tasks[i], nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id int64) (model.Task, error) {
	i := slices.IndexFunc(f.tasks, func(t model.Task) bool { return t.ID == id })
	t := f.tasks[i]
	f.tasks = slices.Delete(f.tasks, i, i+1)
	return t, nil
}

func (f *fakeAPI) ReorderTasks(_ context.Context, key string, groups []model.TaskGroup) (model.TaskReorderAck, error) {
	f.reorders = append(f.reorders, groups)
	for _, g := range groups {
		for pos, id := range g.TaskIDs {
			i := slices.IndexFunc(f.tasks, func(t model.Task) bool { return t.ID == id })
			f.tasks[i].ColumnID, f.tasks[i].Position = g.ColumnID, pos
		}
	}
	return model.TaskReorderAck{Key: key, Tasks: f.sorted()}, nil
}

func newModel(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := New(board.NewSession(api, zap.NewNop()), time.Second)
	return run(t, m, m.Init())
}

// run синхронно выполняет команду и передаёт результат в модель
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = run(t, next.(Model), cmd)
	}
	return m
}

func seeded() *fakeAPI {
	return &fakeAPI{
		columns: []model.Column{{ID: 1, Title: "Todo", Position: 0}, {ID: 2, Title: "Done", Position: 1}},
		tasks: []model.Task{
			{ID: 10, ColumnID: 1, Content: "write", Priority: model.PriorityLow, Difficulty: model.DifficultyEasy, Position: 0},
			{ID: 11, ColumnID: 1, Content: "review", Priority: model.PriorityLow, Difficulty: model.DifficultyEasy, Position: 1},
		},
		nextID: 100,
	}
}

func TestModel_LoadAndRender(t *testing.T) {
	m := newModel(t, seeded())

	view := m.View()
	assert.Contains(t, view, "Todo")
	assert.Contains(t, view, "Done")
	assert.Contains(t, view, "write")
	assert.Contains(t, view, "board loaded")
}

func TestModel_EmptyBoard(t *testing.T) {
	m := newModel(t, &fakeAPI{})

	assert.Contains(t, m.View(), "No columns yet")
	m = press(t, m, "n", "x", " ")
	assert.Empty(t, m.session.State().Tasks)
}

func TestModel_CreateColumnAndTask(t *testing.T) {
	api := &fakeAPI{}
	m := newModel(t, api)

	m = press(t, m, "c", "n")

	require.Len(t, api.columns, 1)
	assert.Equal(t, "Column 1", api.columns[0].Title)
	require.Len(t, api.tasks, 1)
	assert.Equal(t, "Task 1", api.tasks[0].Content)
	assert.Equal(t, api.columns[0].ID, api.tasks[0].ColumnID)
	assert.Contains(t, m.View(), "Task 1")
}

func TestModel_MoveTaskAcrossColumns(t *testing.T) {
	api := seeded()
	m := newModel(t, api)

	// курсор на первой задаче, берём её и несём в пустую колонку
	m = press(t, m, "j", " ")
	assert.Equal(t, board.DraggingTask, m.session.Drag().Phase())

	m = press(t, m, "l")
	assert.Equal(t, 1, m.col)
	assert.Empty(t, api.reorders, "hovering never persists")

	m = press(t, m, " ")

	require.Len(t, api.reorders, 1)
	assert.Equal(t, []model.TaskGroup{
		{ColumnID: 1, TaskIDs: []int64{11}},
		{ColumnID: 2, TaskIDs: []int64{10}},
	}, api.reorders[0])
	assert.Equal(t, board.Idle, m.session.Drag().Phase())
	assert.Equal(t, "order saved", m.status)
	assert.Len(t, m.session.State().TasksIn(2), 1)
}

func TestModel_MoveTaskWithinColumn(t *testing.T) {
	api := seeded()
	m := newModel(t, api)

	m = press(t, m, "j", " ", "j", " ")

	require.Len(t, api.reorders, 1)
	assert.Equal(t, []model.TaskGroup{{ColumnID: 1, TaskIDs: []int64{11, 10}}}, api.reorders[0])
	assert.Equal(t, 1, m.row)
}

func TestModel_CancelMove(t *testing.T) {
	api := seeded()
	m := newModel(t, api)
	before := m.session.State().Tasks

	m = press(t, m, "j", " ", "l", "esc")

	assert.Empty(t, api.reorders)
	assert.Equal(t, before, m.session.State().Tasks)
	assert.Equal(t, "move cancelled", m.status)
}

func TestModel_MoveColumn(t *testing.T) {
	api := seeded()
	m := newModel(t, api)

	m = press(t, m, " ", "l", " ")

	assert.Equal(t, []model.Column{{ID: 2, Title: "Done", Position: 0}, {ID: 1, Title: "Todo", Position: 1}}, api.columns)
	assert.Equal(t, 1, m.col)
	assert.Equal(t, int64(1), m.session.State().Columns[1].ID)
}

func TestModel_EditAndCycle(t *testing.T) {
	api := seeded()
	m := newModel(t, api)

	m = press(t, m, "e", "backspace", "backspace", "s", "enter")
	assert.Equal(t, "Tos", api.columns[0].Title)

	m = press(t, m, "j", "p", "f")
	assert.Equal(t, model.PriorityMedium, api.tasks[0].Priority)
	assert.Equal(t, model.DifficultyMedium, api.tasks[0].Difficulty)
	assert.Contains(t, m.View(), "Medium")
}

func TestModel_DeleteColumnDropsTasks(t *testing.T) {
	api := seeded()
	m := newModel(t, api)

	m = press(t, m, "x")

	assert.Len(t, api.columns, 1)
	assert.Empty(t, m.session.State().Tasks)
	assert.Equal(t, "column deleted", m.status)
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t, seeded())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
