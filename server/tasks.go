package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/existcore/focal/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
)

const taskColumns = `id, task, description, category, importance, deadline,
	is_completed, is_deleted, context, user_id, subtasks, created_at`

// patchableColumns is the whitelist for PATCH and batch updates. The
// client sends wire-schema field names; anything else is rejected.
var patchableColumns = map[string]bool{
	"task":         true,
	"description":  true,
	"category":     true,
	"importance":   true,
	"deadline":     true,
	"is_completed": true,
	"is_deleted":   true,
	"context":      true,
	"subtasks":     true,
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(r rowScanner) (model.Task, error) {
	var t model.Task
	var deadline sql.NullTime
	var subtasks []byte
	err := r.Scan(&t.ID, &t.Task, &t.Description, &t.Category, &t.Importance,
		&deadline, &t.IsCompleted, &t.IsDeleted, &t.Context, &t.UserID,
		&subtasks, &t.CreatedAt)
	if err != nil {
		return model.Task{}, err
	}
	if deadline.Valid {
		d := deadline.Time
		t.Deadline = &d
	}
	if len(subtasks) > 0 {
		_ = json.Unmarshal(subtasks, &t.Subtasks)
	}
	return model.Sanitize(t), nil
}

// handleListTasks returns the caller's rows, split by archive state via
// the deleted query parameter.
func (s *Server) handleListTasks(c echo.Context) error {
	userID := c.Get("user_id").(string)
	deleted := c.QueryParam("deleted") == "true"

	rows, err := s.db.QueryContext(c.Request().Context(), `
		SELECT `+taskColumns+`
		FROM todos
		WHERE user_id = $1 AND is_deleted = $2
		ORDER BY created_at DESC`,
		userID, deleted,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			c.Logger().Error("scan error:", err)
			continue
		}
		tasks = append(tasks, t)
	}

	return c.JSON(http.StatusOK, tasks)
}

// handleCreateTask inserts a row and returns it with the server-assigned
// id and timestamp. The INSERT event echoes to every session of the
// owner, this one included.
func (s *Server) handleCreateTask(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var in model.Task
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(in.Task) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "task title required"})
	}
	in = model.Sanitize(in)

	subtasks, _ := json.Marshal(in.Subtasks)

	var deadline interface{}
	if in.Deadline != nil {
		deadline = *in.Deadline
	}

	row := s.db.QueryRowContext(c.Request().Context(), `
		INSERT INTO todos (user_id, task, description, category, importance,
			deadline, is_completed, is_deleted, context, subtasks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+taskColumns,
		userID, in.Task, in.Description, in.Category, in.Importance,
		deadline, in.IsCompleted, in.IsDeleted, in.Context, subtasks,
	)

	created, err := scanTask(row)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	s.hub.Publish(userID, Event{Type: EventInsert, New: &created})
	return c.JSON(http.StatusOK, created)
}

// handlePatchTask applies a partial update and returns the full row.
func (s *Server) handlePatchTask(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	var fields map[string]interface{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	set, args, err := buildSetClause(fields, 3)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if set == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no fields to update"})
	}

	args = append([]interface{}{id, userID}, args...)
	row := s.db.QueryRowContext(c.Request().Context(), `
		UPDATE todos SET `+set+`
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns,
		args...,
	)

	updated, err := scanTask(row)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	s.hub.Publish(userID, Event{Type: EventUpdate, New: &updated})
	return c.JSON(http.StatusOK, updated)
}

type batchUpdateRequest struct {
	IDs    []string               `json:"ids"`
	Fields map[string]interface{} `json:"fields"`
}

// handleBatchUpdate applies the same field set to many rows at once.
// Used by the clients' bulk archive operations. One UPDATE event is
// published per affected row so listeners fold them individually.
func (s *Server) handleBatchUpdate(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req batchUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "ids required"})
	}

	set, args, err := buildSetClause(req.Fields, 3)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if set == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no fields to update"})
	}

	args = append([]interface{}{pq.Array(req.IDs), userID}, args...)
	rows, err := s.db.QueryContext(c.Request().Context(), `
		UPDATE todos SET `+set+`
		WHERE id = ANY($1) AND user_id = $2
		RETURNING `+taskColumns,
		args...,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer rows.Close()

	updated := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			c.Logger().Error("scan error:", err)
			continue
		}
		updated = append(updated, t)
	}

	for i := range updated {
		s.hub.Publish(userID, Event{Type: EventUpdate, New: &updated[i]})
	}

	c.Logger().Infof("Batch update for user %s: %d rows", userID, len(updated))
	return c.JSON(http.StatusOK, updated)
}

// handleDeleteTask removes a row permanently.
func (s *Server) handleDeleteTask(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	res, err := s.db.ExecContext(c.Request().Context(), `
		DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}

	// The DELETE event carries only the old id; listeners drop the row
	// from whichever list holds it.
	s.hub.Publish(userID, Event{Type: EventDelete, Old: &model.Task{ID: id}})
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// buildSetClause turns a wire-schema field map into a SET clause with
// numbered placeholders starting at firstArg. Unknown columns fail the
// whole request rather than being silently dropped.
func buildSetClause(fields map[string]interface{}, firstArg int) (string, []interface{}, error) {
	var parts []string
	var args []interface{}

	n := firstArg
	for col, val := range fields {
		if !patchableColumns[col] {
			return "", nil, fmt.Errorf("unknown field %q", col)
		}
		if col == "subtasks" {
			payload, err := json.Marshal(val)
			if err != nil {
				return "", nil, fmt.Errorf("invalid subtasks payload")
			}
			val = payload
		}
		if col == "deadline" {
			// JSON timestamps arrive as strings; normalize for the
			// driver and reject garbage early.
			if str, ok := val.(string); ok {
				ts, err := time.Parse(time.RFC3339, str)
				if err != nil {
					return "", nil, fmt.Errorf("invalid deadline")
				}
				val = ts
			}
		}
		parts = append(parts, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, val)
		n++
	}

	return strings.Join(parts, ", "), args, nil
}
