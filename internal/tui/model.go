package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existcore/focal/internal/config"
	"github.com/existcore/focal/internal/engine"
	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
	"github.com/existcore/focal/internal/netmon"
	"github.com/existcore/focal/internal/remote"
)

// View selects which task list is shown
type View int

const (
	ViewActive View = iota
	ViewCompleted
	ViewArchive
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeFilter
	ModeConfirmDelete
	ModeHelp
)

// RefreshMsg asks the TUI to repaint from engine state. Sent whenever
// the engine changes, including from realtime events.
type RefreshMsg struct{}

// Model is the main TUI model
type Model struct {
	eng    *engine.Engine
	client *remote.Client
	cfg    *config.Config

	listener *remote.Listener
	monitor  *netmon.Monitor

	// UI state
	width  int
	height int
	view   View
	mode   Mode
	cursor int

	// Current query
	sortBy     model.SortKey
	filterText string

	// Input
	input textinput.Model

	message string
}

// NewModel creates a new TUI model wired to the sync engine
func NewModel(eng *engine.Engine, client *remote.Client, cfg *config.Config) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Enter task... (#tag sets category)"
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		eng:    eng,
		client: client,
		cfg:    cfg,
		view:   ViewActive,
		mode:   ModeNormal,
		sortBy: model.SortNewest,
		input:  ti,
	}

	if client.IsLoggedIn() {
		// Connectivity transitions gate the engine and trigger the
		// reconnect flush.
		interval := time.Duration(cfg.PollSeconds) * time.Second
		if interval <= 0 {
			interval = 30 * time.Second
		}
		m.monitor = netmon.New(client, interval)
		m.monitor.Subscribe(func(online bool) {
			eng.SetOnline(online)
			if online {
				logger.Info("Connection restored, flushing queue")
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					eng.FlushPending(ctx)
					_ = eng.FetchRemote(ctx)
				}()
			} else {
				logger.Info("Connection lost, queueing writes locally")
			}
		})
		m.monitor.Start()

		// Realtime events fold straight into the engine; the engine's
		// onChange hook repaints us.
		m.listener = remote.NewListener(client, eng.Apply)
		m.listener.Start()
	} else {
		logger.Debug("Not logged in, running local-only")
	}

	return m
}

// Close stops the background listeners. Called on quit.
func (m *Model) Close() {
	if m.listener != nil {
		m.listener.Stop()
	}
	if m.monitor != nil {
		m.monitor.Stop()
	}
}

// query builds the filter/sort for the current view
func (m *Model) query() model.Query {
	return model.Query{
		Search: m.filterText,
		SortBy: m.sortBy,
	}
}

// visibleTasks returns the tasks of the current view
func (m *Model) visibleTasks() []model.Task {
	switch m.view {
	case ViewCompleted:
		return m.eng.Completed(m.query())
	case ViewArchive:
		return m.eng.Archived(m.query())
	default:
		return m.eng.Active(m.query())
	}
}

// currentTask returns the task under the cursor, or nil
func (m *Model) currentTask() *model.Task {
	tasks := m.visibleTasks()
	if m.cursor >= 0 && m.cursor < len(tasks) {
		return &tasks[m.cursor]
	}
	return nil
}

func (m *Model) clampCursor() {
	n := len(m.visibleTasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
