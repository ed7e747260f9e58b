package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/existcore/focal/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open test cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	c := openTestCache(t)

	deadline := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{
			ID:         "a1",
			Task:       "Buy milk",
			Category:   "errand",
			Importance: 2,
			Deadline:   &deadline,
			Context:    model.ContextPersonal,
			CreatedAt:  time.Now().UTC().Truncate(time.Second),
			Subtasks:   []model.Subtask{{Text: "find store", Done: true}},
		},
		{
			ID:        model.NewTempID(),
			Task:      "Pending one",
			Context:   model.ContextWork,
			IsPending: true,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			Subtasks:  []model.Subtask{},
		},
	}

	if err := c.SaveTasks(tasks); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	got := c.LoadTasks()
	if len(got) != 2 {
		t.Fatalf("loaded %d tasks, want 2", len(got))
	}
	if got[0].ID != "a1" || got[0].Category != "errand" || got[0].Deadline == nil {
		t.Errorf("first task did not round-trip: %+v", got[0])
	}
	if !got[1].IsPending {
		t.Error("pending flag must survive a restart")
	}
}

func TestOverwriteIsWholesale(t *testing.T) {
	c := openTestCache(t)

	if err := c.SaveTasks([]model.Task{{ID: "1", Task: "One"}, {ID: "2", Task: "Two"}}); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}
	if err := c.SaveTasks([]model.Task{{ID: "3", Task: "Three"}}); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	got := c.LoadTasks()
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("snapshot = %v, want only task 3", got)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	c := openTestCache(t)

	got := c.LoadTasks()
	if got == nil || len(got) != 0 {
		t.Errorf("missing snapshot should load as empty list, got %v", got)
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	c := openTestCache(t)

	_, err := c.db.Exec(`INSERT INTO snapshots (slot, payload, updated_at) VALUES (?, ?, ?)`,
		SlotTasks, "{not json", "2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("failed to plant corrupt payload: %v", err)
	}

	got := c.LoadTasks()
	if len(got) != 0 {
		t.Errorf("corrupt snapshot should load as empty list, got %v", got)
	}
}

func TestLoadSanitizesLegacyRows(t *testing.T) {
	c := openTestCache(t)

	// A record written before the context field existed.
	_, err := c.db.Exec(`INSERT INTO snapshots (slot, payload, updated_at) VALUES (?, ?, ?)`,
		SlotTasks, `[{"id":"old1","task":"Legacy","created_at":"2023-01-01T00:00:00Z"}]`,
		"2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("failed to plant legacy payload: %v", err)
	}

	got := c.LoadTasks()
	if len(got) != 1 {
		t.Fatalf("loaded %d tasks, want 1", len(got))
	}
	if got[0].Context != model.ContextPersonal {
		t.Errorf("legacy context = %q, want %q", got[0].Context, model.ContextPersonal)
	}
	if got[0].Importance != model.ImportanceNormal {
		t.Errorf("legacy importance = %d, want %d", got[0].Importance, model.ImportanceNormal)
	}
	if got[0].Subtasks == nil {
		t.Error("legacy subtasks should default to empty list")
	}
}
