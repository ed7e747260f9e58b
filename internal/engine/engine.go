// Package engine owns the authoritative in-memory task list and keeps
// it consistent across local mutation, remote persistence, the durable
// cache snapshot, and the realtime change feed.
//
// Every operation is optimistic: the in-memory list and the cache
// snapshot are updated together before any network activity, and remote
// pushes are fire-and-forget. The cache is therefore always a complete,
// valid serialization of the current list.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/existcore/focal/internal/cache"
	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
	"github.com/existcore/focal/internal/remote"
)

var (
	// ErrEmptyTitle rejects a draft with no title. Callers treat it as
	// a no-op, not a user-facing failure.
	ErrEmptyTitle = errors.New("task title is empty")

	// ErrNotFound reports an id absent from the list.
	ErrNotFound = errors.New("task not found")

	// ErrNothingToArchive is the distinct nothing-to-do outcome of the
	// batch archive operations.
	ErrNothingToArchive = errors.New("no tasks to archive")
)

// Engine is the sync core. All exported methods are safe for concurrent
// use; each holds the engine lock for the whole local mutation so no
// caller observes the list mid-update.
type Engine struct {
	mu       sync.Mutex
	tasks    []model.Task // active view source: non-archived rows plus pendings
	archived []model.Task // archive view source, fetched on demand
	current  model.Context

	store cache.Snapshotter
	remot remote.Store

	online bool

	// Single-flight guard for FlushPending: refuse while running,
	// re-run once after completion when new pendings appeared.
	flushing   bool
	flushAgain bool

	pushes   sync.WaitGroup
	onChange func()
}

// New creates an engine over a cache snapshot store and a remote store.
func New(snap cache.Snapshotter, store remote.Store) *Engine {
	return &Engine{
		store:   snap,
		remot:   store,
		current: model.DefaultContext,
	}
}

// SetOnChange registers a hook invoked after every change to the list
// (mutation, flush replacement, realtime event). Used by the TUI to
// repaint; must not call back into the engine synchronously.
func (e *Engine) SetOnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// SetOnline gates remote operations. The caller (connectivity monitor)
// is responsible for triggering FlushPending and FetchRemote on the
// offline-to-online edge.
func (e *Engine) SetOnline(online bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.online = online
}

// Online reports the current connectivity gate.
func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// SetContext switches the current context partition.
func (e *Engine) SetContext(ctx model.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = ctx
}

// Context returns the current context partition.
func (e *Engine) Context() model.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// LoadFromCache populates the list from the last-known snapshot for
// instant display. Missing or corrupt snapshots load as empty.
func (e *Engine) LoadFromCache() {
	tasks := e.store.LoadTasks()

	e.mu.Lock()
	e.tasks = tasks
	e.mu.Unlock()

	logger.Debug("Loaded snapshot from cache", logger.F("tasks", len(tasks)))
	e.notify()
}

// FetchRemote retrieves all non-archived rows for the current user and
// replaces the list with (still-pending local tasks) ++ (server rows).
// Pending tasks are never dropped by a fetch racing their insert.
func (e *Engine) FetchRemote(ctx context.Context) error {
	if !e.Online() {
		return nil
	}

	serverTasks, err := e.remot.FetchTasks(ctx, false)
	if err != nil {
		logger.Warn("Remote fetch failed", logger.F("error", err))
		return err
	}

	e.mu.Lock()
	var merged []model.Task
	for _, t := range e.tasks {
		if t.IsPending {
			merged = append(merged, t)
		}
	}
	merged = append(merged, serverTasks...)
	e.tasks = merged
	e.persistLocked()
	e.mu.Unlock()

	logger.Info("Fetched remote tasks", logger.F("count", len(serverTasks)))
	e.notify()
	return nil
}

// FetchArchive retrieves the archived rows for the current user.
func (e *Engine) FetchArchive(ctx context.Context) error {
	if !e.Online() {
		return nil
	}

	rows, err := e.remot.FetchTasks(ctx, true)
	if err != nil {
		logger.Warn("Archive fetch failed", logger.F("error", err))
		return err
	}

	e.mu.Lock()
	e.archived = rows
	e.mu.Unlock()
	e.notify()
	return nil
}

// Create validates and normalizes a draft, prepends it as a pending
// task, persists the snapshot, and — when online — triggers a
// background flush. It never blocks on network I/O.
func (e *Engine) Create(d model.Draft) (model.Task, error) {
	if isBlank(d.Title) {
		return model.Task{}, ErrEmptyTitle
	}

	e.mu.Lock()
	if d.Context == "" {
		d.Context = e.current
	}
	task := model.NewPending(d)
	e.tasks = append([]model.Task{task}, e.tasks...)
	e.persistLocked()
	online := e.online
	e.mu.Unlock()

	logger.Info("Task created", logger.F("id", task.ID), logger.F("title", task.Task))
	e.notify()

	if online {
		go e.FlushPending(context.Background())
	}
	return task, nil
}

// FlushPending submits pending tasks to the remote store one at a time
// in list order. It refuses to run concurrently with itself and re-runs
// once after completion if new pendings appeared during the run.
func (e *Engine) FlushPending(ctx context.Context) {
	e.mu.Lock()
	if e.flushing {
		e.flushAgain = true
		e.mu.Unlock()
		return
	}
	e.flushing = true
	e.mu.Unlock()

	attempted := e.flushOnce(ctx)

	e.mu.Lock()
	e.flushing = false
	again := e.flushAgain
	e.flushAgain = false
	if !again {
		// Pendings that appeared during the run without a trigger of
		// their own still get drained.
		for _, t := range e.tasks {
			if t.IsPending && !attempted[t.ID] {
				again = true
				break
			}
		}
	}
	e.mu.Unlock()

	if again {
		e.FlushPending(ctx)
	}
}

// flushOnce pushes the pendings present at entry and returns the set of
// temp ids it attempted.
func (e *Engine) flushOnce(ctx context.Context) map[string]bool {
	e.mu.Lock()
	var queue []model.Task
	for _, t := range e.tasks {
		if t.IsPending {
			queue = append(queue, t)
		}
	}
	e.mu.Unlock()

	attempted := make(map[string]bool, len(queue))
	for _, pending := range queue {
		attempted[pending.ID] = true

		if !e.Online() {
			break
		}

		created, err := e.remot.Insert(ctx, pending)
		if err != nil {
			// Leave it pending; the next flush or reconnect retries.
			logger.Warn("Pending insert failed", logger.F("id", pending.ID), logger.F("error", err))
			continue
		}

		e.mu.Lock()
		e.resolvePendingLocked(pending.ID, created)
		e.persistLocked()
		e.mu.Unlock()
		e.notify()

		logger.Debug("Pending task acknowledged",
			logger.F("tempID", pending.ID), logger.F("id", created.ID))
	}
	return attempted
}

// resolvePendingLocked swaps a temporary entry for the server record.
// If the realtime INSERT for the new id already landed, the temporary
// entry is removed instead of duplicated.
func (e *Engine) resolvePendingLocked(tempID string, created model.Task) {
	created = model.Sanitize(created)
	created.IsPending = false

	if e.indexLocked(created.ID) != -1 {
		e.removeLocked(tempID)
		return
	}

	if i := e.indexLocked(tempID); i != -1 {
		e.tasks[i] = created
		return
	}
	// Temp entry vanished (archived while in flight); keep the server
	// record out of the list, the next fetch reconciles.
}

// Patch carries the updatable fields of a task. Nil pointers leave the
// field unchanged.
type Patch struct {
	Title         *string
	Description   *string
	Category      *string // set to empty string to clear
	Importance    *int
	Deadline      *time.Time
	ClearDeadline bool
	Context       *model.Context
	Subtasks      []model.Subtask // nil leaves subtasks unchanged
}

// Update applies the patch to the in-memory record, persists the
// snapshot, and — when the task is acknowledged and the client online —
// pushes the same fields remotely in the background. A failed push is
// not retried; local state stands until the next reconciliation.
func (e *Engine) Update(id string, p Patch) error {
	e.mu.Lock()
	i := e.indexLocked(id)
	if i == -1 {
		e.mu.Unlock()
		return ErrNotFound
	}

	t := &e.tasks[i]
	fields := map[string]interface{}{}

	if p.Title != nil && !isBlank(*p.Title) {
		t.Task = model.Capitalize(*p.Title)
		fields["task"] = t.Task
	}
	if p.Description != nil {
		t.Description = *p.Description
		fields["description"] = t.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
		fields["category"] = t.Category
	}
	if p.Importance != nil && *p.Importance >= model.ImportanceLow && *p.Importance <= model.ImportanceHigh {
		t.Importance = *p.Importance
		fields["importance"] = t.Importance
	}
	if p.Deadline != nil {
		t.Deadline = p.Deadline
		fields["deadline"] = p.Deadline
	} else if p.ClearDeadline {
		t.Deadline = nil
		fields["deadline"] = nil
	}
	if p.Context != nil && (*p.Context == model.ContextPersonal || *p.Context == model.ContextWork) {
		t.Context = *p.Context
		fields["context"] = t.Context
	}
	if p.Subtasks != nil {
		t.Subtasks = p.Subtasks
		fields["subtasks"] = t.Subtasks
	}

	e.persistLocked()
	pushable := !t.IsPending && e.online && len(fields) > 0
	e.mu.Unlock()
	e.notify()

	if pushable {
		e.pushUpdate(id, fields)
	}
	return nil
}

// ToggleComplete flips completion, persists, and pushes the flag.
func (e *Engine) ToggleComplete(id string) error {
	e.mu.Lock()
	i := e.indexLocked(id)
	if i == -1 {
		e.mu.Unlock()
		return ErrNotFound
	}
	e.tasks[i].IsCompleted = !e.tasks[i].IsCompleted
	done := e.tasks[i].IsCompleted
	pushable := !e.tasks[i].IsPending && e.online
	e.persistLocked()
	e.mu.Unlock()
	e.notify()

	if pushable {
		e.pushUpdate(id, map[string]interface{}{"is_completed": done})
	}
	return nil
}

// SoftDelete archives a task: removed from the active list, flagged
// is_deleted remotely. Reversible via Restore.
func (e *Engine) SoftDelete(id string) error {
	e.mu.Lock()
	i := e.indexLocked(id)
	if i == -1 {
		e.mu.Unlock()
		return ErrNotFound
	}
	t := e.tasks[i]
	t.IsDeleted = true
	e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
	e.archived = append([]model.Task{t}, e.archived...)
	e.persistLocked()
	pushable := e.online && !model.IsTempID(id)
	e.mu.Unlock()
	e.notify()

	if pushable {
		e.pushUpdate(id, map[string]interface{}{"is_deleted": true})
	}
	return nil
}

// Restore is the single-item inverse of archive: the task returns to
// the head of the active list with is_deleted cleared.
func (e *Engine) Restore(id string) error {
	e.mu.Lock()
	idx := -1
	for j, t := range e.archived {
		if t.ID == id {
			idx = j
			break
		}
	}
	if idx == -1 {
		e.mu.Unlock()
		return ErrNotFound
	}
	t := e.archived[idx]
	t.IsDeleted = false
	e.archived = append(e.archived[:idx], e.archived[idx+1:]...)
	e.tasks = append([]model.Task{t}, e.tasks...)
	e.persistLocked()
	pushable := e.online && !model.IsTempID(id)
	e.mu.Unlock()
	e.notify()

	if pushable {
		e.pushUpdate(id, map[string]interface{}{"is_deleted": false})
	}
	return nil
}

// Purge removes an archived task permanently. Irreversible, no local
// optimistic undo.
func (e *Engine) Purge(id string) error {
	e.mu.Lock()
	idx := -1
	for j, t := range e.archived {
		if t.ID == id {
			idx = j
			break
		}
	}
	if idx == -1 {
		e.mu.Unlock()
		return ErrNotFound
	}
	e.archived = append(e.archived[:idx], e.archived[idx+1:]...)
	pushable := e.online && !model.IsTempID(id)
	e.mu.Unlock()
	e.notify()

	if pushable {
		e.pushes.Add(1)
		go func() {
			defer e.pushes.Done()
			if err := e.remot.Delete(context.Background(), id); err != nil {
				logger.Warn("Remote delete failed", logger.F("id", id), logger.F("error", err))
			}
		}()
	}
	return nil
}

// Active returns the non-completed tasks of the current context through
// the shared filter/sort contract.
func (e *Engine) Active(q model.Query) []model.Task {
	return q.Apply(e.visible(func(t model.Task) bool { return !t.IsCompleted }))
}

// Completed returns the completed tasks of the current context.
func (e *Engine) Completed(q model.Query) []model.Task {
	return q.Apply(e.visible(func(t model.Task) bool { return t.IsCompleted }))
}

// Archived returns the archive view for the current context.
func (e *Engine) Archived(q model.Query) []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Task
	for _, t := range e.archived {
		if t.Context == e.current {
			out = append(out, t)
		}
	}
	return q.Apply(out)
}

// BadgeCount is the number of urgent active tasks in the current
// context, exposed for the notification subsystem.
func (e *Engine) BadgeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	count := 0
	for _, t := range e.tasks {
		if t.Context == e.current && t.Urgent() {
			count++
		}
	}
	return count
}

// Tasks returns a copy of the full in-memory list, pendings included.
func (e *Engine) Tasks() []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Task, len(e.tasks))
	copy(out, e.tasks)
	return out
}

// HasPending reports whether any task still awaits acknowledgment.
func (e *Engine) HasPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tasks {
		if t.IsPending {
			return true
		}
	}
	return false
}

// Quiesce waits for in-flight fire-and-forget pushes. Called before
// process exit so one-shot CLI commands do not drop their writes.
func (e *Engine) Quiesce() {
	e.pushes.Wait()
}

func (e *Engine) visible(keep func(model.Task) bool) []model.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []model.Task
	for _, t := range e.tasks {
		if t.IsDeleted || t.Context != e.current {
			continue
		}
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) pushUpdate(id string, fields map[string]interface{}) {
	e.pushes.Add(1)
	go func() {
		defer e.pushes.Done()
		if err := e.remot.Update(context.Background(), id, fields); err != nil {
			logger.Warn("Remote update failed", logger.F("id", id), logger.F("error", err))
		}
	}()
}

// persistLocked writes the full snapshot. Every mutating operation
// calls it before releasing the lock, keeping cache and list in step.
func (e *Engine) persistLocked() {
	if err := e.store.SaveTasks(e.tasks); err != nil {
		logger.Error("Cache write failed", logger.F("error", err))
	}
}

func (e *Engine) indexLocked(id string) int {
	for i, t := range e.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) removeLocked(id string) {
	if i := e.indexLocked(id); i != -1 {
		e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
	}
}

func (e *Engine) notify() {
	e.mu.Lock()
	fn := e.onChange
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' {
			return false
		}
	}
	return true
}
