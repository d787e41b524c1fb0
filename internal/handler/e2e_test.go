package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/board"
	"github.com/BuzzLyutic/kanban-board/internal/client"
	"github.com/BuzzLyutic/kanban-board/internal/handler"
	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/service"
	"github.com/BuzzLyutic/kanban-board/internal/testdb"
)

// writes считает изменяющие запросы к /tasks
type writes struct {
	reorders atomic.Int64
	updates  atomic.Int64
}

func setupE2EServer(t *testing.T) (*client.Client, *writes) {
	t.Helper()
	stores := testdb.SQLite(t)
	logger := zap.NewNop()

	columns := handler.NewColumnHandler(service.NewColumnService(stores.Columns, stores.Keys), logger)
	tasks := handler.NewTaskHandler(service.NewTaskService(stores.Tasks, stores.Keys), logger)
	router := handler.NewRouter(columns, tasks, stores.Ping, []string{"*"})

	counts := &writes{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/tasks/reorder" {
			counts.reorders.Add(1)
		} else if r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/tasks/") {
			counts.updates.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	return client.New(server.URL, server.Client()), counts
}

func TestE2E_ColumnDragPersists(t *testing.T) {
	api, _ := setupE2EServer(t)
	ctx := context.Background()

	s := board.NewSession(api, zap.NewNop())
	first, err := s.CreateColumn(ctx)
	require.NoError(t, err)
	second, err := s.CreateColumn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)

	require.True(t, s.StartDrag(board.ColumnItem(first.ID)))
	over := board.ColumnItem(second.ID)
	require.NoError(t, s.EndDrag(ctx, &over))

	stored, err := api.ListColumns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Column{
		{ID: second.ID, Title: "Column 2", Position: 0},
		{ID: first.ID, Title: "Column 1", Position: 1},
	}, stored)
	assert.Equal(t, stored, s.State().Columns)
}

func TestE2E_TaskAcrossColumnsPersistsOnce(t *testing.T) {
	api, counts := setupE2EServer(t)
	ctx := context.Background()

	s := board.NewSession(api, zap.NewNop())
	todo, err := s.CreateColumn(ctx)
	require.NoError(t, err)
	done, err := s.CreateColumn(ctx)
	require.NoError(t, err)
	task, err := s.CreateTask(ctx, todo.ID)
	require.NoError(t, err)
	target, err := s.CreateTask(ctx, done.ID)
	require.NoError(t, err)

	require.True(t, s.StartDrag(board.TaskItem(task.ID)))
	s.DragOver(&board.Item{Kind: board.KindTask, ID: target.ID})
	for i := 0; i < 3; i++ {
		s.DragOver(&board.Item{Kind: board.KindColumn, ID: done.ID})
	}
	assert.Zero(t, counts.reorders.Load(), "hovering never persists")

	self := board.TaskItem(task.ID)
	require.NoError(t, s.EndDrag(ctx, &self))

	assert.Equal(t, int64(1), counts.reorders.Load())
	assert.Zero(t, counts.updates.Load())

	stored, err := api.ListTasks(ctx)
	require.NoError(t, err)
	byID := map[int64]model.Task{}
	for _, st := range stored {
		byID[st.ID] = st
	}
	assert.Equal(t, done.ID, byID[task.ID].ColumnID)
	assert.Equal(t, 0, byID[task.ID].Position)
	assert.Equal(t, 1, byID[target.ID].Position)
}

func TestE2E_CRUDThroughClient(t *testing.T) {
	api, _ := setupE2EServer(t)
	ctx := context.Background()

	s := board.NewSession(api, zap.NewNop())
	col, err := s.CreateColumn(ctx)
	require.NoError(t, err)
	task, err := s.CreateTask(ctx, col.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task 1", task.Content)
	assert.Equal(t, "Description", task.Description)
	assert.Equal(t, model.PriorityLow, task.Priority)
	assert.Equal(t, model.DifficultyEasy, task.Difficulty)

	task.Priority = model.Next(model.Priorities, task.Priority)
	updated, err := s.UpdateTask(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityMedium, updated.Priority)

	_, err = s.UpdateColumnTitle(ctx, col.ID, "Backlog")
	require.NoError(t, err)

	// свежая сессия видит то же самое
	fresh := board.NewSession(api, zap.NewNop())
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, s.State().Columns, fresh.State().Columns)
	assert.Equal(t, s.State().Tasks, fresh.State().Tasks)

	// удаление колонки убирает её задачи из зеркала
	require.NoError(t, s.DeleteColumn(ctx, col.ID))
	assert.Empty(t, s.State().Tasks)

	_, err = api.DeleteColumn(ctx, col.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
	_, err = api.UpdateTask(ctx, 999, model.TaskInput{ColumnID: col.ID, Content: "x"})
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestE2E_FailedReorderReloads(t *testing.T) {
	api, _ := setupE2EServer(t)
	ctx := context.Background()

	s := board.NewSession(api, zap.NewNop())
	col, err := s.CreateColumn(ctx)
	require.NoError(t, err)

	// колонки 999 нет на сервере - конфликт, зеркало перечитывается
	err = s.Commit(ctx, &board.Plan{Columns: []int64{col.ID, 999}})

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Len(t, s.State().Columns, 1)
}
