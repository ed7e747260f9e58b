package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	ts := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &ts
}

func TestQueryFilters(t *testing.T) {
	items := []Task{
		{ID: "1", Task: "Buy milk", Category: "errand"},
		{ID: "2", Task: "Review budget", Category: "finance", Deadline: date(2024, 1, 10)},
		{ID: "3", Task: "Buy stamps", Category: "errand", Deadline: date(2024, 1, 12)},
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"search is case-insensitive substring", Query{Search: "buy"}, []string{"1", "3"}},
		{"scheduled only", Query{Deadline: DeadlineScheduled}, []string{"2", "3"}},
		{"anytime only", Query{Deadline: DeadlineAnytime}, []string{"1"}},
		{"category equality", Query{Category: "errand"}, []string{"1", "3"}},
		{"combined", Query{Search: "BUY", Deadline: DeadlineScheduled}, []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.query.Apply(items)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("item %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestSortDeadline(t *testing.T) {
	x := Task{ID: "X", Task: "X", Deadline: date(2024, 1, 10), Importance: 1}
	y := Task{ID: "Y", Task: "Y", Importance: 3}

	got := Query{SortBy: SortDeadline}.Apply([]Task{y, x})
	if got[0].ID != "X" || got[1].ID != "Y" {
		t.Errorf("order = [%s %s], want [X Y]", got[0].ID, got[1].ID)
	}
}

func TestSortDeadlineLaw(t *testing.T) {
	// A task with a deadline never sorts after a task without one.
	items := []Task{
		{ID: "a", Importance: 3},
		{ID: "b", Deadline: date(2024, 5, 1), Importance: 1},
		{ID: "c", Importance: 2},
		{ID: "d", Deadline: date(2024, 2, 1), Importance: 1},
	}

	got := Query{SortBy: SortDeadline}.Apply(items)
	seenNil := false
	for _, task := range got {
		if task.Deadline == nil {
			seenNil = true
		} else if seenNil {
			t.Fatalf("deadline-bearing task %s after a no-deadline task", task.ID)
		}
	}
	if got[0].ID != "d" || got[1].ID != "b" {
		t.Errorf("scheduled group = [%s %s], want [d b]", got[0].ID, got[1].ID)
	}
	// No-deadline group falls back to descending importance.
	if got[2].ID != "a" || got[3].ID != "c" {
		t.Errorf("unscheduled group = [%s %s], want [a c]", got[2].ID, got[3].ID)
	}
}

func TestSortImportance(t *testing.T) {
	items := []Task{
		{ID: "low", Importance: 1},
		{ID: "highLate", Importance: 3, Deadline: date(2024, 6, 1)},
		{ID: "highSoon", Importance: 3, Deadline: date(2024, 3, 1)},
	}

	got := Query{SortBy: SortImportance}.Apply(items)
	want := []string{"highSoon", "highLate", "low"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("item %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSortNewestDefault(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Task{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(48 * time.Hour)},
		{ID: "mid", CreatedAt: base.Add(24 * time.Hour)},
	}

	got := Query{}.Apply(items)
	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("item %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestCategories(t *testing.T) {
	items := []Task{
		{Category: "work"},
		{Category: ""},
		{Category: "errand"},
		{Category: "work"},
	}
	got := Categories(items)
	if len(got) != 2 || got[0] != "errand" || got[1] != "work" {
		t.Errorf("Categories = %v, want [errand work]", got)
	}
}
