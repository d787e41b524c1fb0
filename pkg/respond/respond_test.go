package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_BoardPayloads(t *testing.T) {
	type column struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		Position int    `json:"position"`
	}

	tests := []struct {
		name     string
		code     int
		data     any
		wantBody string
	}{
		{
			name:     "created column",
			code:     http.StatusCreated,
			data:     column{ID: 1, Title: "Todo", Position: 0},
			wantBody: `{"id":1,"title":"Todo","position":0}`,
		},
		{
			name:     "empty board is an array, not null",
			code:     http.StatusOK,
			data:     []column{},
			wantBody: `[]`,
		},
		{
			name:     "health",
			code:     http.StatusServiceUnavailable,
			data:     map[string]string{"status": "unavailable"},
			wantBody: `{"status":"unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, httptest.NewRequest(http.MethodGet, "/columns", nil), tt.code, tt.data)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestError_CarriesMessage(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{"schema violation", http.StatusBadRequest, "bad request: /title: length must be >= 1, but got 0"},
		{"query parameter", http.StatusBadRequest, "invalid columnId"},
		{"unknown id on get", http.StatusNotFound, "not found"},
		{"reorder conflict", http.StatusConflict, "conflict: order lists 1 of 3 columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Error(w, httptest.NewRequest(http.MethodPut, "/columns/reorder", nil), tt.code, tt.message)

			assert.Equal(t, tt.code, w.Code)

			var got map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, map[string]string{"error": tt.message}, got)
		})
	}
}

func TestFault_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	Fault(w, httptest.NewRequest(http.MethodPost, "/tasks", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func TestEmpty_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	Empty(w, httptest.NewRequest(http.MethodDelete, "/tasks/42", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())
	assert.Empty(t, w.Header().Get("Content-Type"))
}
