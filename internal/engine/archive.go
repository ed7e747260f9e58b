package engine

import (
	"context"
	"time"

	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
)

// ArchiveCompleted moves every completed task in the given context to
// the archive and issues one batched remote update for the id set.
// Returns the number archived, or ErrNothingToArchive.
func (e *Engine) ArchiveCompleted(ctx model.Context) (int, error) {
	return e.archiveMatching(ctx, func(t model.Task) bool {
		return t.IsCompleted
	})
}

// ArchiveOlderThan archives every task in the given context created
// strictly before now minus ageDays, using calendar-day truncation.
func (e *Engine) ArchiveOlderThan(ctx model.Context, ageDays int) (int, error) {
	now := time.Now()
	return e.archiveMatching(ctx, func(t model.Task) bool {
		return t.OlderThan(now, ageDays)
	})
}

func (e *Engine) archiveMatching(ctx model.Context, match func(model.Task) bool) (int, error) {
	e.mu.Lock()

	var kept, selected []model.Task
	var remoteIDs []string
	for _, t := range e.tasks {
		if t.Context == ctx && match(t) {
			t.IsDeleted = true
			selected = append(selected, t)
			if !model.IsTempID(t.ID) {
				remoteIDs = append(remoteIDs, t.ID)
			}
			continue
		}
		kept = append(kept, t)
	}

	if len(selected) == 0 {
		e.mu.Unlock()
		return 0, ErrNothingToArchive
	}

	e.tasks = kept
	e.archived = append(selected, e.archived...)
	e.persistLocked()
	pushable := e.online && len(remoteIDs) > 0
	e.mu.Unlock()
	e.notify()

	if pushable {
		e.pushes.Add(1)
		go func() {
			defer e.pushes.Done()
			err := e.remot.UpdateMany(context.Background(), remoteIDs, map[string]interface{}{
				"is_deleted": true,
			})
			if err != nil {
				// Local removal already happened; the divergence heals
				// on the next full fetch.
				logger.Warn("Batch archive push failed",
					logger.F("ids", len(remoteIDs)), logger.F("error", err))
			}
		}()
	}

	logger.Info("Archived tasks", logger.F("count", len(selected)), logger.F("context", ctx))
	return len(selected), nil
}
