package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/existcore/focal/internal/model"
)

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClientAt(filepath.Join(t.TempDir(), "sync.json"))
	if err != nil {
		t.Fatalf("NewClientAt: %v", err)
	}
	if serverURL != "" {
		if err := c.SetServer(serverURL); err != nil {
			t.Fatalf("SetServer: %v", err)
		}
	}
	return c
}

func TestLoginSavesSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != "alice" {
			t.Errorf("username = %q", creds["username"])
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"token":   "tok-123",
			"user_id": "user-1",
		})
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "sync.json")
	c, _ := NewClientAt(path)
	_ = c.SetServer(ts.URL)

	if err := c.Login("alice", "hunter22"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !c.IsLoggedIn() || c.UserID() != "user-1" {
		t.Errorf("session = (%v, %q)", c.IsLoggedIn(), c.UserID())
	}

	// The session survives a fresh client on the same path.
	c2, _ := NewClientAt(path)
	if !c2.IsLoggedIn() || c2.UserID() != "user-1" {
		t.Error("session did not persist across clients")
	}

	if err := c2.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	c3, _ := NewClientAt(path)
	if c3.IsLoggedIn() {
		t.Error("logout did not clear the saved session")
	}
}

func TestLoginRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer ts.Close()

	c := testClient(t, ts.URL)
	if err := c.Login("alice", "wrong"); err == nil {
		t.Fatal("rejected login must error")
	}
	if c.IsLoggedIn() {
		t.Error("failed login must not store a session")
	}
}

func TestFetchTasks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/api/v1/tasks" || r.URL.Query().Get("deleted") != "false" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		// A legacy row with no context or importance exercises
		// ingestion sanitizing.
		_, _ = w.Write([]byte(`[{"id":"srv-1","task":"From server"}]`))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL)
	c.session.Token = "tok"

	tasks, err := c.FetchTasks(context.Background(), false)
	if err != nil {
		t.Fatalf("FetchTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	got := tasks[0]
	if got.Context != model.ContextPersonal || got.Importance != model.ImportanceNormal || got.Subtasks == nil {
		t.Errorf("row not sanitized: %+v", got)
	}
}

func TestInsertStripsTempID(t *testing.T) {
	deadline := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if _, ok := payload["id"]; ok {
			t.Error("insert payload must not carry an id")
		}
		if _, ok := payload["created_at"]; ok {
			t.Error("insert payload must not carry created_at")
		}
		if payload["task"] != "Buy milk" {
			t.Errorf("task = %v", payload["task"])
		}

		created := model.Task{
			ID:        "srv-42",
			Task:      "Buy milk",
			Category:  "errand",
			Deadline:  &deadline,
			Context:   model.ContextPersonal,
			CreatedAt: time.Now().UTC(),
		}
		_ = json.NewEncoder(w).Encode(created)
	}))
	defer ts.Close()

	c := testClient(t, ts.URL)

	pending := model.NewPending(model.Draft{Title: "buy milk #errand", Deadline: &deadline})
	created, err := c.Insert(context.Background(), pending)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if created.ID != "srv-42" || model.IsTempID(created.ID) {
		t.Errorf("created.ID = %q", created.ID)
	}
}

func TestUpdateAndBatch(t *testing.T) {
	var gotPatch map[string]interface{}
	var gotBatch batchUpdateRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/api/v1/tasks/srv-1":
			_ = json.NewDecoder(r.Body).Decode(&gotPatch)
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/tasks/batch":
			_ = json.NewDecoder(r.Body).Decode(&gotBatch)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/tasks/srv-1":
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL)
	ctx := context.Background()

	if err := c.Update(ctx, "srv-1", map[string]interface{}{"is_completed": true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotPatch["is_completed"] != true {
		t.Errorf("patch body = %v", gotPatch)
	}

	if err := c.UpdateMany(ctx, []string{"srv-1", "srv-2"}, map[string]interface{}{"is_deleted": true}); err != nil {
		t.Fatalf("UpdateMany: %v", err)
	}
	if len(gotBatch.IDs) != 2 || gotBatch.Fields["is_deleted"] != true {
		t.Errorf("batch body = %+v", gotBatch)
	}

	if err := c.Delete(ctx, "srv-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestPing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))

	c := testClient(t, ts.URL)
	if !c.Ping() {
		t.Error("Ping against a live server must succeed")
	}

	ts.Close()
	if c.Ping() {
		t.Error("Ping against a dead server must fail")
	}
}
