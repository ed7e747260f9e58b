package engine

import (
	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
	"github.com/existcore/focal/internal/remote"
)

// Apply folds a realtime event into the list. Events are applied in
// delivery order; applying the same event twice changes nothing, so the
// echo of this client's own writes is harmless.
//
// Every branch ends by re-persisting the snapshot, keeping the cache
// consistent with what a cold start should see.
func (e *Engine) Apply(ev remote.Event) {
	e.mu.Lock()

	switch ev.Type {
	case remote.EventInsert:
		if ev.New == nil {
			e.mu.Unlock()
			return
		}
		// Add only if unknown: our own flush may already have swapped
		// the temp entry for this id.
		if e.indexLocked(ev.New.ID) == -1 {
			e.tasks = append([]model.Task{model.Sanitize(*ev.New)}, e.tasks...)
		}

	case remote.EventUpdate:
		if ev.New == nil {
			e.mu.Unlock()
			return
		}
		if ev.New.IsDeleted {
			// Archival always wins over local completion state.
			e.removeLocked(ev.New.ID)
			break
		}
		if i := e.indexLocked(ev.New.ID); i != -1 {
			// The server's acknowledged state takes precedence.
			e.tasks[i] = model.Sanitize(*ev.New)
		} else {
			// Unknown id: restored from archive on another device.
			e.tasks = append([]model.Task{model.Sanitize(*ev.New)}, e.tasks...)
			e.removeArchivedLocked(ev.New.ID)
		}

	case remote.EventDelete:
		id := ""
		if ev.Old != nil {
			id = ev.Old.ID
		} else if ev.New != nil {
			id = ev.New.ID
		}
		if id == "" {
			e.mu.Unlock()
			return
		}
		// No error if absent.
		e.removeLocked(id)
		e.removeArchivedLocked(id)

	default:
		logger.Debug("Ignoring unknown realtime event", logger.F("type", ev.Type))
		e.mu.Unlock()
		return
	}

	e.persistLocked()
	e.mu.Unlock()
	e.notify()
}

func (e *Engine) removeArchivedLocked(id string) {
	for i, t := range e.archived {
		if t.ID == id {
			e.archived = append(e.archived[:i], e.archived[i+1:]...)
			return
		}
	}
}
