package engine

import (
	"testing"
	"time"

	"github.com/existcore/focal/internal/model"
)

func TestArchiveCompleted(t *testing.T) {
	e, snap := seeded(t,
		model.Task{ID: "a", Task: "Done personal", IsCompleted: true, Context: model.ContextPersonal},
		model.Task{ID: "b", Task: "Open personal", Context: model.ContextPersonal},
		model.Task{ID: "c", Task: "Done work", IsCompleted: true, Context: model.ContextWork},
	)
	e.SetOnline(false)

	n, err := e.ArchiveCompleted(model.ContextPersonal)
	if err != nil {
		t.Fatalf("ArchiveCompleted: %v", err)
	}
	if n != 1 {
		t.Errorf("archived %d, want 1", n)
	}

	// The work-context completed task is untouched.
	ids := map[string]bool{}
	for _, task := range e.Tasks() {
		ids[task.ID] = true
	}
	if !ids["b"] || !ids["c"] || ids["a"] {
		t.Errorf("remaining ids = %v, want b and c only", ids)
	}

	got := e.Archived(model.Query{})
	if len(got) != 1 || got[0].ID != "a" || !got[0].IsDeleted {
		t.Errorf("archive view = %v", got)
	}

	// The snapshot no longer carries the archived row.
	for _, task := range snap.snapshot() {
		if task.ID == "a" {
			t.Error("archived row still in cache snapshot")
		}
	}
}

func TestArchiveCompletedNothingToDo(t *testing.T) {
	e, _ := seeded(t, model.Task{ID: "a", Task: "Open", Context: model.ContextPersonal})

	if _, err := e.ArchiveCompleted(model.ContextPersonal); err != ErrNothingToArchive {
		t.Fatalf("err = %v, want ErrNothingToArchive", err)
	}
	if len(e.Tasks()) != 1 {
		t.Error("list must be unchanged")
	}
}

func TestArchiveOlderThan(t *testing.T) {
	now := time.Now()
	e, _ := seeded(t,
		model.Task{ID: "old", Task: "Stale", CreatedAt: now.AddDate(0, 0, -40), Context: model.ContextPersonal},
		model.Task{ID: "edge", Task: "Exactly at cutoff", CreatedAt: truncatedDaysAgo(now, 28), Context: model.ContextPersonal},
		model.Task{ID: "fresh", Task: "Recent", CreatedAt: now.AddDate(0, 0, -3), Context: model.ContextPersonal},
		model.Task{ID: "work", Task: "Stale but work", CreatedAt: now.AddDate(0, 0, -40), Context: model.ContextWork},
	)
	e.SetOnline(false)

	n, err := e.ArchiveOlderThan(model.ContextPersonal, 28)
	if err != nil {
		t.Fatalf("ArchiveOlderThan: %v", err)
	}
	if n != 1 {
		t.Errorf("archived %d, want only the strictly-older task", n)
	}

	ids := map[string]bool{}
	for _, task := range e.Tasks() {
		ids[task.ID] = true
	}
	if ids["old"] {
		t.Error("40-day-old personal task should be archived")
	}
	if !ids["edge"] {
		t.Error("task created exactly at the cutoff day must survive")
	}
	if !ids["fresh"] || !ids["work"] {
		t.Error("recent and other-context tasks must survive")
	}
}

func TestArchiveBatchPush(t *testing.T) {
	e, _, store := newTestEngine(t)
	e.SetOnline(true)
	e.mu.Lock()
	e.tasks = []model.Task{
		{ID: "srv-1", IsCompleted: true, Context: model.ContextPersonal},
		{ID: "srv-2", IsCompleted: true, Context: model.ContextPersonal},
		{ID: model.NewTempID(), IsCompleted: true, IsPending: true, Context: model.ContextPersonal},
	}
	e.mu.Unlock()

	n, err := e.ArchiveCompleted(model.ContextPersonal)
	if err != nil {
		t.Fatalf("ArchiveCompleted: %v", err)
	}
	if n != 3 {
		t.Errorf("archived %d locally, want 3", n)
	}
	e.Quiesce()

	// Only acknowledged ids reach the batch update; temp ids never do.
	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.batchIDs) != 2 {
		t.Fatalf("batch ids = %v, want the two server ids", store.batchIDs)
	}
	for _, id := range store.batchIDs {
		if model.IsTempID(id) {
			t.Errorf("temp id %s pushed remotely", id)
		}
	}
}

func TestArchiveBatchPushFailureIsSwallowed(t *testing.T) {
	e, _, store := newTestEngine(t)
	e.SetOnline(true)
	store.failUpdate = true
	e.mu.Lock()
	e.tasks = []model.Task{{ID: "srv-1", IsCompleted: true, Context: model.ContextPersonal}}
	e.mu.Unlock()

	n, err := e.ArchiveCompleted(model.ContextPersonal)
	if err != nil || n != 1 {
		t.Fatalf("ArchiveCompleted = (%d, %v), local archive must succeed", n, err)
	}
	e.Quiesce()

	if len(e.Archived(model.Query{})) != 1 {
		t.Error("local archive must stand despite the failed push")
	}
}

// truncatedDaysAgo builds a timestamp n calendar days before now at the
// same clock time, which after midnight truncation sits exactly on the
// cutoff and therefore must not match "strictly older".
func truncatedDaysAgo(now time.Time, n int) time.Time {
	return now.AddDate(0, 0, -n)
}
