package model

import (
	"testing"
	"time"
)

func TestNewPendingNormalizes(t *testing.T) {
	task := NewPending(Draft{Title: "buy milk #errand"})

	if task.Task != "Buy milk" {
		t.Errorf("title = %q, want %q", task.Task, "Buy milk")
	}
	if task.Category != "errand" {
		t.Errorf("category = %q, want %q", task.Category, "errand")
	}
	if !task.IsPending {
		t.Error("new task should be pending")
	}
	if !IsTempID(task.ID) {
		t.Errorf("id %q should carry the temp prefix", task.ID)
	}
	if task.Importance != ImportanceNormal {
		t.Errorf("importance = %d, want default %d", task.Importance, ImportanceNormal)
	}
	if task.Context != ContextPersonal {
		t.Errorf("context = %q, want %q", task.Context, ContextPersonal)
	}
	if task.Subtasks == nil || len(task.Subtasks) != 0 {
		t.Errorf("subtasks = %v, want empty list", task.Subtasks)
	}
}

func TestExtractCategory(t *testing.T) {
	tests := []struct {
		in           string
		wantTitle    string
		wantCategory string
	}{
		{"buy milk #errand", "buy milk", "errand"},
		{"#work review PR", "review PR", "work"},
		{"call #family mom", "call mom", "family"},
		{"no tags here", "no tags here", ""},
		{"two #first #second", "two #second", "first"},
	}

	for _, tt := range tests {
		title, cat := ExtractCategory(tt.in)
		if title != tt.wantTitle || cat != tt.wantCategory {
			t.Errorf("ExtractCategory(%q) = (%q, %q), want (%q, %q)",
				tt.in, title, cat, tt.wantTitle, tt.wantCategory)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"buy milk", "Buy milk"},
		{"Already", "Already"},
		{"", ""},
		{"ärger", "Ärger"},
	}
	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeDefaults(t *testing.T) {
	got := Sanitize(Task{ID: "abc", Task: "X"})

	if got.Importance != ImportanceNormal {
		t.Errorf("importance = %d, want %d", got.Importance, ImportanceNormal)
	}
	if got.Context != DefaultContext {
		t.Errorf("context = %q, want %q", got.Context, DefaultContext)
	}
	if got.Subtasks == nil {
		t.Error("subtasks should default to an empty list")
	}
}

func TestUrgent(t *testing.T) {
	deadline := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"deadline-bearing active", Task{Deadline: &deadline, Importance: 1}, true},
		{"top importance active", Task{Importance: ImportanceHigh}, true},
		{"plain active", Task{Importance: ImportanceNormal}, false},
		{"completed", Task{Deadline: &deadline, IsCompleted: true}, false},
		{"archived", Task{Importance: ImportanceHigh, IsDeleted: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Urgent(); got != tt.want {
				t.Errorf("Urgent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDaysUntilDeadline(t *testing.T) {
	now := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

	late := time.Date(2024, 1, 8, 23, 0, 0, 0, time.UTC)
	soon := time.Date(2024, 1, 12, 1, 0, 0, 0, time.UTC)

	if d, ok := (Task{Deadline: &late}).DaysUntilDeadline(now); !ok || d != -2 {
		t.Errorf("overdue: got (%d, %v), want (-2, true)", d, ok)
	}
	if d, ok := (Task{Deadline: &soon}).DaysUntilDeadline(now); !ok || d != 2 {
		t.Errorf("upcoming: got (%d, %v), want (2, true)", d, ok)
	}
	if _, ok := (Task{}).DaysUntilDeadline(now); ok {
		t.Error("no deadline should report ok=false")
	}
}

func TestOlderThan(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	old := Task{CreatedAt: now.AddDate(0, 0, -29)}
	fresh := Task{CreatedAt: now.AddDate(0, 0, -27)}

	if !old.OlderThan(now, 28) {
		t.Error("29-day-old task should qualify at 28 days")
	}
	if fresh.OlderThan(now, 28) {
		t.Error("27-day-old task should not qualify at 28 days")
	}
}
