package model

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Importance levels for tasks
const (
	ImportanceLow    = 1
	ImportanceNormal = 2 // default
	ImportanceHigh   = 3
)

// Context is a user-selected partition of the task list. A task is
// visible in exactly one context at a time.
type Context string

const (
	ContextPersonal Context = "personal"
	ContextWork     Context = "work"
)

// DefaultContext is applied to records created before the context field
// existed.
const DefaultContext = ContextPersonal

// ParseContext maps a stored or user-supplied context name to a valid
// Context, falling back to the default for anything unknown.
func ParseContext(s string) Context {
	switch Context(strings.ToLower(strings.TrimSpace(s))) {
	case ContextWork:
		return ContextWork
	case ContextPersonal:
		return ContextPersonal
	default:
		return DefaultContext
	}
}

// TempIDPrefix marks locally-generated ids that have not been accepted
// by the remote store yet.
const TempIDPrefix = "temp-"

// Subtask is a single checklist entry under a task.
type Subtask struct {
	Text        string `json:"text"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// Task is the central entity. The json field names are the wire schema
// of the remote store and must not change.
type Task struct {
	ID          string     `json:"id"`
	Task        string     `json:"task"`
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	Importance  int        `json:"importance"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	IsDeleted   bool       `json:"is_deleted"`
	Context     Context    `json:"context"`
	UserID      string     `json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Subtasks    []Subtask  `json:"subtasks"`

	// IsPending is client-only: true while the task exists locally but
	// has not been accepted by the remote store. It is persisted in the
	// cache snapshot so pending tasks survive a restart, but never sent
	// to the server.
	IsPending bool `json:"isPending,omitempty"`
}

// Draft is the user input for a new task.
type Draft struct {
	Title       string
	Description string
	Importance  int
	Deadline    *time.Time
	Context     Context
}

var categoryRe = regexp.MustCompile(`#(\w+)`)

// NewPending normalizes a draft into a pending task with a temporary
// id: title capitalized, an optional #tag extracted into the category,
// importance defaulted to normal.
func NewPending(d Draft) Task {
	title, category := ExtractCategory(d.Title)

	importance := d.Importance
	if importance < ImportanceLow || importance > ImportanceHigh {
		importance = ImportanceNormal
	}

	ctx := d.Context
	if ctx != ContextPersonal && ctx != ContextWork {
		ctx = DefaultContext
	}

	return Task{
		ID:          NewTempID(),
		Task:        Capitalize(title),
		Description: d.Description,
		Category:    category,
		Importance:  importance,
		Deadline:    d.Deadline,
		Context:     ctx,
		CreatedAt:   time.Now().UTC(),
		Subtasks:    []Subtask{},
		IsPending:   true,
	}
}

// NewTempID returns a fresh temporary identifier.
func NewTempID() string {
	return TempIDPrefix + uuid.New().String()
}

// IsTempID reports whether id is a locally-generated temporary id.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// ExtractCategory pulls the first #tag out of a title and returns the
// title without it.
func ExtractCategory(title string) (string, string) {
	m := categoryRe.FindStringSubmatch(title)
	if m == nil {
		return strings.TrimSpace(title), ""
	}
	title = strings.Replace(title, m[0], "", 1)
	// Collapse the double space left where the tag sat mid-sentence.
	title = strings.Join(strings.Fields(title), " ")
	return title, m[1]
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Sanitize fills defaults on a record coming from any ingestion point
// (remote fetch, realtime event, cache load) so no code path observes
// a task missing default fields.
func Sanitize(t Task) Task {
	if t.Importance == 0 {
		t.Importance = ImportanceNormal
	}
	if t.Context != ContextPersonal && t.Context != ContextWork {
		t.Context = DefaultContext
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	return t
}

// Urgent reports whether the task counts toward the badge: active and
// either deadline-bearing or top-importance.
func (t Task) Urgent() bool {
	if t.IsCompleted || t.IsDeleted {
		return false
	}
	return t.Deadline != nil || t.Importance == ImportanceHigh
}

// DaysUntilDeadline returns the calendar-day distance from now to the
// deadline, truncating both to midnight. Negative means overdue.
// The second return is false when the task has no deadline.
func (t Task) DaysUntilDeadline(now time.Time) (int, bool) {
	if t.Deadline == nil {
		return 0, false
	}
	today := truncateDay(now)
	due := truncateDay(*t.Deadline)
	return int(due.Sub(today).Hours() / 24), true
}

func truncateDay(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}

// OlderThan reports whether the task was created strictly before
// now minus ageDays, using calendar-day truncation consistent with
// DaysUntilDeadline.
func (t Task) OlderThan(now time.Time, ageDays int) bool {
	cutoff := truncateDay(now).AddDate(0, 0, -ageDays)
	return t.CreatedAt.Before(cutoff)
}
