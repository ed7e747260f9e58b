package model

import (
	"sort"
	"strings"
)

// SortKey selects the ordering of a task view.
type SortKey string

const (
	SortNewest     SortKey = "newest" // default: created_at descending
	SortDeadline   SortKey = "deadline"
	SortImportance SortKey = "importance"
)

// DeadlineFilter narrows a view by deadline presence.
type DeadlineFilter string

const (
	DeadlineAll       DeadlineFilter = "all"
	DeadlineScheduled DeadlineFilter = "scheduled" // has a deadline
	DeadlineAnytime   DeadlineFilter = "anytime"   // no deadline
)

// ParseSortKey maps a user-supplied sort name to a SortKey, defaulting
// to newest.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortDeadline:
		return SortDeadline
	case SortImportance:
		return SortImportance
	default:
		return SortNewest
	}
}

// ParseDeadlineFilter maps a user-supplied filter name to a
// DeadlineFilter, defaulting to all.
func ParseDeadlineFilter(s string) DeadlineFilter {
	switch DeadlineFilter(strings.ToLower(strings.TrimSpace(s))) {
	case DeadlineScheduled:
		return DeadlineScheduled
	case DeadlineAnytime:
		return DeadlineAnytime
	default:
		return DeadlineAll
	}
}

// Query is the filter/sort contract shared by the active, completed,
// and archive views.
type Query struct {
	Search   string // case-insensitive substring on title
	Deadline DeadlineFilter
	Category string // empty means all
	SortBy   SortKey
}

// Apply filters and sorts a copy of items. The input slice is not
// modified.
func (q Query) Apply(items []Task) []Task {
	out := make([]Task, 0, len(items))

	search := strings.ToLower(q.Search)
	for _, t := range items {
		if search != "" && !strings.Contains(strings.ToLower(t.Task), search) {
			continue
		}
		switch q.Deadline {
		case DeadlineScheduled:
			if t.Deadline == nil {
				continue
			}
		case DeadlineAnytime:
			if t.Deadline != nil {
				continue
			}
		}
		if q.Category != "" && t.Category != q.Category {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return q.less(out[i], out[j])
	})
	return out
}

// less implements the three sort keys:
//   - deadline: scheduled before unscheduled, then ascending date,
//     then descending importance
//   - importance: descending importance, ties broken by ascending
//     deadline when both have one
//   - newest: descending created_at
func (q Query) less(a, b Task) bool {
	switch q.SortBy {
	case SortDeadline:
		if a.Deadline != nil && b.Deadline == nil {
			return true
		}
		if a.Deadline == nil && b.Deadline != nil {
			return false
		}
		if a.Deadline != nil && b.Deadline != nil && !a.Deadline.Equal(*b.Deadline) {
			return a.Deadline.Before(*b.Deadline)
		}
		return a.Importance > b.Importance

	case SortImportance:
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if a.Deadline != nil && b.Deadline != nil && !a.Deadline.Equal(*b.Deadline) {
			return a.Deadline.Before(*b.Deadline)
		}
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Categories returns the sorted distinct categories present in items.
func Categories(items []Task) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range items {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out
}
