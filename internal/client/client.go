// Package client talks to the board REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// ErrNotFound is returned by update and delete calls when the server
// answered with an empty result.
var ErrNotFound = errors.New("row not found")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) ListColumns(ctx context.Context) ([]model.Column, error) {
	var cols []model.Column
	_, err := c.do(ctx, http.MethodGet, "/columns", "", nil, &cols)
	return cols, err
}

func (c *Client) CreateColumn(ctx context.Context, in model.ColumnInput, idempKey string) (model.Column, error) {
	var col model.Column
	_, err := c.do(ctx, http.MethodPost, "/columns", idempKey, in, &col)
	return col, err
}

func (c *Client) UpdateColumn(ctx context.Context, id int64, in model.ColumnInput) (model.Column, error) {
	var col model.Column
	err := c.mutate(ctx, http.MethodPut, "/columns/"+strconv.FormatInt(id, 10), in, &col)
	return col, err
}

func (c *Client) DeleteColumn(ctx context.Context, id int64) (model.Column, error) {
	var col model.Column
	err := c.mutate(ctx, http.MethodDelete, "/columns/"+strconv.FormatInt(id, 10), nil, &col)
	return col, err
}

func (c *Client) ReorderColumns(ctx context.Context, idempKey string, ids []int64) (model.ColumnReorderAck, error) {
	var ack model.ColumnReorderAck
	_, err := c.do(ctx, http.MethodPut, "/columns/reorder", idempKey, model.ColumnOrder{IDs: ids}, &ack)
	return ack, err
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	_, err := c.do(ctx, http.MethodGet, "/tasks", "", nil, &tasks)
	return tasks, err
}

func (c *Client) CreateTask(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	var task model.Task
	_, err := c.do(ctx, http.MethodPost, "/tasks", idempKey, in, &task)
	return task, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, in model.TaskInput) (model.Task, error) {
	var task model.Task
	err := c.mutate(ctx, http.MethodPut, "/tasks/"+strconv.FormatInt(id, 10), in, &task)
	return task, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) (model.Task, error) {
	var task model.Task
	err := c.mutate(ctx, http.MethodDelete, "/tasks/"+strconv.FormatInt(id, 10), nil, &task)
	return task, err
}

func (c *Client) ReorderTasks(ctx context.Context, idempKey string, groups []model.TaskGroup) (model.TaskReorderAck, error) {
	var ack model.TaskReorderAck
	_, err := c.do(ctx, http.MethodPut, "/tasks/reorder", idempKey, model.TaskOrder{Columns: groups}, &ack)
	return ack, err
}

func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	status, err := c.do(ctx, method, path, "", body, out)
	if err != nil {
		return err
	}
	if status == http.StatusNoContent {
		return ErrNotFound
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, idempKey string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempKey != "" {
		req.Header.Set("Idempotency-Key", idempKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return resp.StatusCode, nil
}
