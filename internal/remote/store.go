package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/existcore/focal/internal/model"
)

// Store is the remote task store the sync engine pushes to and fetches
// from. The HTTP client implements it; tests substitute an in-memory
// fake.
type Store interface {
	// FetchTasks retrieves all rows for the current user with the given
	// archive state, ordered by created_at descending.
	FetchTasks(ctx context.Context, archived bool) ([]model.Task, error)

	// Insert persists a new row and returns the server's record with
	// its assigned id, timestamps, and defaults filled in.
	Insert(ctx context.Context, t model.Task) (model.Task, error)

	// Update pushes the given fields to one row.
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	// UpdateMany pushes the same fields to a set of rows in one call.
	UpdateMany(ctx context.Context, ids []string, fields map[string]interface{}) error

	// Delete removes a row permanently.
	Delete(ctx context.Context, id string) error
}

// insertPayload is the subset of Task sent on insert: identity and
// timestamps are the server's to assign.
type insertPayload struct {
	Task        string          `json:"task"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Importance  int             `json:"importance"`
	Deadline    interface{}     `json:"deadline"`
	IsCompleted bool            `json:"is_completed"`
	IsDeleted   bool            `json:"is_deleted"`
	Context     model.Context   `json:"context"`
	Subtasks    []model.Subtask `json:"subtasks"`
}

type batchUpdateRequest struct {
	IDs    []string               `json:"ids"`
	Fields map[string]interface{} `json:"fields"`
}

// FetchTasks implements Store
func (c *Client) FetchTasks(ctx context.Context, archived bool) ([]model.Task, error) {
	url := fmt.Sprintf("%s/api/v1/tasks?deleted=%t", c.session.ServerURL, archived)

	var tasks []model.Task
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &tasks); err != nil {
		return nil, err
	}

	for i := range tasks {
		tasks[i] = model.Sanitize(tasks[i])
	}
	return tasks, nil
}

// Insert implements Store
func (c *Client) Insert(ctx context.Context, t model.Task) (model.Task, error) {
	payload := insertPayload{
		Task:        model.Capitalize(t.Task),
		Description: t.Description,
		Category:    t.Category,
		Importance:  t.Importance,
		IsCompleted: t.IsCompleted,
		IsDeleted:   false,
		Context:     t.Context,
		Subtasks:    t.Subtasks,
	}
	if t.Deadline != nil {
		payload.Deadline = t.Deadline
	}
	if payload.Importance == 0 {
		payload.Importance = model.ImportanceNormal
	}
	if payload.Subtasks == nil {
		payload.Subtasks = []model.Subtask{}
	}

	var created model.Task
	url := c.session.ServerURL + "/api/v1/tasks"
	if err := c.doJSON(ctx, http.MethodPost, url, payload, &created); err != nil {
		return model.Task{}, err
	}
	return model.Sanitize(created), nil
}

// Update implements Store
func (c *Client) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	url := c.session.ServerURL + "/api/v1/tasks/" + id
	return c.doJSON(ctx, http.MethodPatch, url, fields, nil)
}

// UpdateMany implements Store
func (c *Client) UpdateMany(ctx context.Context, ids []string, fields map[string]interface{}) error {
	url := c.session.ServerURL + "/api/v1/tasks/batch"
	return c.doJSON(ctx, http.MethodPost, url, batchUpdateRequest{IDs: ids, Fields: fields}, nil)
}

// Delete implements Store
func (c *Client) Delete(ctx context.Context, id string) error {
	url := c.session.ServerURL + "/api/v1/tasks/" + id
	return c.doJSON(ctx, http.MethodDelete, url, nil, nil)
}

// doJSON performs an authenticated request with an optional JSON body
// and decodes an optional JSON response.
func (c *Client) doJSON(ctx context.Context, method, url string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.session.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
