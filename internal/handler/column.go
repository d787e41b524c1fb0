package handler

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/service"
	"github.com/BuzzLyutic/kanban-board/pkg/respond"
)

type ColumnHandler struct {
	service *service.ColumnService
	logger  *zap.Logger
}

func NewColumnHandler(srv *service.ColumnService, logger *zap.Logger) *ColumnHandler {
	return &ColumnHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *ColumnHandler) List(w http.ResponseWriter, r *http.Request) {
	cols, err := h.service.List(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, cols)
}

func (h *ColumnHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	col, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, col)
}

func (h *ColumnHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ColumnInput
	if err := decodeBody(w, r, columnInputSchema, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	col, err := h.service.Create(r.Context(), req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/columns/%d", col.ID))
	respond.JSON(w, r, http.StatusCreated, col)
}

func (h *ColumnHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	var req model.ColumnInput
	if err := decodeBody(w, r, columnInputSchema, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	col, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		handleMutationErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, col)
}

func (h *ColumnHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	col, err := h.service.Delete(r.Context(), id)
	if err != nil {
		handleMutationErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, col)
}

func (h *ColumnHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req model.ColumnOrder
	if err := decodeBody(w, r, columnOrderSchema, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	ack, err := h.service.Reorder(r.Context(), r.Header.Get("Idempotency-Key"), req.IDs)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	h.logger.Info("Columns reordered",
		zap.String("key", ack.Key),
		zap.Bool("replayed", ack.Replayed),
		zap.Int("count", len(req.IDs)),
	)
	respond.JSON(w, r, http.StatusOK, ack)
}
