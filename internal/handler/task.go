package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/service"
	"github.com/BuzzLyutic/kanban-board/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.TaskInput
	if err := decodeBody(w, r, taskInputSchema, &req); err != nil {
		h.logger.Debug("rejected task body", zap.Error(err))
		handleErrors(w, r, h.logger, err)
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), req, idempKey)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.TaskFilter
	if raw := r.URL.Query().Get("columnId"); raw != "" {
		columnID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, "invalid columnId")
			return
		}
		filter.ColumnID = &columnID
	}

	tasks, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

// Update overwrites every mutable field. Clients send the full task, so an
// id in the body is ignored in favour of the path.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	var req model.TaskInput
	if err := decodeBody(w, r, taskInputSchema, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	task, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		handleMutationErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	task, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleMutationErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req model.TaskOrder
	if err := decodeBody(w, r, taskOrderSchema, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	ack, err := h.service.Reorder(r.Context(), r.Header.Get("Idempotency-Key"), req.Columns)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	h.logger.Info("Tasks reordered",
		zap.String("key", ack.Key),
		zap.Bool("replayed", ack.Replayed),
		zap.Int("columns", len(req.Columns)),
	)
	respond.JSON(w, r, http.StatusOK, ack)
}
