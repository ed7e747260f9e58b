// Package cache is the durable local store for the task list snapshot.
//
// The whole list is serialized into a single named slot and overwritten
// wholesale on every mutation, so a cold start always sees either the
// previous complete snapshot or the new one, never a partial write.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
	_ "modernc.org/sqlite"
)

// SlotTasks is the snapshot slot holding the current task list.
const SlotTasks = "todo_cache"

// Snapshotter is what the sync engine needs from the cache. Tests
// substitute an in-memory implementation.
type Snapshotter interface {
	SaveTasks(tasks []model.Task) error
	LoadTasks() []model.Task
}

// Cache wraps the SQLite snapshot database
type Cache struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the default cache path (~/.focal/cache.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".focal", "cache.db"), nil
}

// Open opens or creates the snapshot database
func Open(path string) (*Cache, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	c := &Cache{db: db, path: path}
	if err := c.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return c, nil
}

// OpenDefault opens the cache at the default path
func OpenDefault() (*Cache, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Close closes the cache database
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    slot TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`
	if _, err := c.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// SaveTasks overwrites the task snapshot slot with the full list.
func (c *Cache) SaveTasks(tasks []model.Task) error {
	return c.save(SlotTasks, tasks)
}

// LoadTasks reads the last-known task snapshot. A missing or corrupt
// snapshot is an empty list, not an error: the cache is best-effort and
// must never block startup.
func (c *Cache) LoadTasks() []model.Task {
	var payload string
	err := c.db.QueryRow(`SELECT payload FROM snapshots WHERE slot = ?`, SlotTasks).Scan(&payload)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Warn("Cache read failed", logger.F("error", err))
		}
		return []model.Task{}
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(payload), &tasks); err != nil {
		logger.Warn("Cache snapshot corrupt, starting empty", logger.F("error", err))
		return []model.Task{}
	}

	for i := range tasks {
		tasks[i] = model.Sanitize(tasks[i])
	}
	return tasks
}

func (c *Cache) save(slot string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = c.db.Exec(`
INSERT INTO snapshots (slot, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		slot, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
