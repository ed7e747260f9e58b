package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/existcore/focal/internal/cache"
	"github.com/existcore/focal/internal/config"
	"github.com/existcore/focal/internal/engine"
	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
	"github.com/existcore/focal/internal/remote"
)

// session bundles the pieces a one-shot command needs: the cache-backed
// engine, the remote client, and the loaded config.
type session struct {
	eng    *engine.Engine
	cache  *cache.Cache
	client *remote.Client
	cfg    *config.Config
}

// openSession builds the engine over the local cache and the remote
// client, loads the cached snapshot, and probes connectivity once.
// Offline is not an error; commands simply run local-only.
func openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("Failed to load config, using defaults", logger.F("error", err))
		cfg = config.DefaultConfig()
	}

	c, err := cache.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	client, err := remote.NewClient()
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	eng := engine.New(c, client)
	eng.SetContext(model.ParseContext(cfg.Context))
	eng.LoadFromCache()

	if client.IsLoggedIn() && client.Ping() {
		eng.SetOnline(true)
	}

	return &session{eng: eng, cache: c, client: client, cfg: cfg}, nil
}

// refresh pulls the server state and drains the pending queue. No-op
// when offline.
func (s *session) refresh() {
	if !s.eng.Online() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.eng.FlushPending(ctx)
	if err := s.eng.FetchRemote(ctx); err != nil {
		logger.Warn("Refresh failed, showing cached state", logger.F("error", err))
	}
}

// close waits for in-flight pushes before releasing the cache.
func (s *session) close() {
	s.eng.Quiesce()
	_ = s.cache.Close()
}

// findTask resolves an id prefix against the active list, then the
// archive. Ambiguous prefixes are an error.
func findTask(s *session, prefix string) (model.Task, error) {
	var match model.Task
	found := 0
	for _, t := range append(s.eng.Tasks(), s.eng.Archived(model.Query{})...) {
		if strings.HasPrefix(t.ID, prefix) {
			match = t
			found++
		}
	}
	switch found {
	case 0:
		return model.Task{}, fmt.Errorf("task not found: %s", prefix)
	case 1:
		return match, nil
	default:
		return model.Task{}, fmt.Errorf("ambiguous task id: %s matches %d tasks", prefix, found)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
