package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existcore/focal/internal/engine"
	"github.com/existcore/focal/internal/logger"
	"github.com/existcore/focal/internal/model"
)

// fetchedMsg reports the result of a background fetch
type fetchedMsg struct{ err error }

// Init triggers the initial server fetch
func (m Model) Init() tea.Cmd {
	if !m.eng.Online() {
		return nil
	}
	return m.fetchCmd()
}

func (m Model) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		m.eng.FlushPending(ctx)
		err := m.eng.FetchRemote(ctx)
		if err == nil && m.view == ViewArchive {
			err = m.eng.FetchArchive(ctx)
		}
		return fetchedMsg{err: err}
	}
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RefreshMsg:
		m.clampCursor()
		return m, nil

	case fetchedMsg:
		if msg.err != nil {
			m.message = "Refresh failed, showing cached state"
		} else {
			m.message = ""
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAddTask:
			return m.updateAddTask(msg)
		case ModeFilter:
			return m.updateFilter(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		default:
			return m.updateNormal(msg)
		}
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visibleTasks())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Tab):
		m.view = (m.view + 1) % 3
		m.cursor = 0
		if m.view == ViewArchive && m.eng.Online() {
			return m, m.fetchCmd()
		}

	case key.Matches(msg, keys.Add):
		m.mode = ModeAddTask
		m.input.Placeholder = "Enter task... (#tag sets category)"
		m.input.SetValue("")
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.Done):
		if t := m.currentTask(); t != nil && m.view != ViewArchive {
			if err := m.eng.ToggleComplete(t.ID); err != nil {
				logger.Warn("Toggle failed", logger.F("error", err))
			}
			m.clampCursor()
		}

	case key.Matches(msg, keys.Delete):
		if t := m.currentTask(); t != nil && m.view != ViewArchive {
			if m.cfg.ConfirmDelete {
				m.mode = ModeConfirmDelete
				return m, nil
			}
			m.archiveCurrent()
		}

	case key.Matches(msg, keys.Restore):
		if t := m.currentTask(); t != nil && m.view == ViewArchive {
			if err := m.eng.Restore(t.ID); err != nil {
				logger.Warn("Restore failed", logger.F("error", err))
			} else {
				m.message = "Restored: " + t.Task
			}
			m.clampCursor()
		}

	case key.Matches(msg, keys.Purge):
		if t := m.currentTask(); t != nil && m.view == ViewArchive {
			if err := m.eng.Purge(t.ID); err != nil {
				logger.Warn("Purge failed", logger.F("error", err))
			} else {
				m.message = "Permanently deleted: " + t.Task
			}
			m.clampCursor()
		}

	case key.Matches(msg, keys.Sort):
		switch m.sortBy {
		case model.SortNewest:
			m.sortBy = model.SortDeadline
		case model.SortDeadline:
			m.sortBy = model.SortImportance
		default:
			m.sortBy = model.SortNewest
		}
		m.cursor = 0

	case key.Matches(msg, keys.Filter):
		m.mode = ModeFilter
		m.input.Placeholder = "Filter by title..."
		m.input.SetValue(m.filterText)
		m.input.Focus()
		return m, nil

	case key.Matches(msg, keys.Context):
		if m.eng.Context() == model.ContextPersonal {
			m.eng.SetContext(model.ContextWork)
		} else {
			m.eng.SetContext(model.ContextPersonal)
		}
		m.cfg.Context = string(m.eng.Context())
		if err := m.cfg.Save(); err != nil {
			logger.Warn("Failed to save config", logger.F("error", err))
		}
		m.cursor = 0

	case key.Matches(msg, keys.Refresh):
		if m.eng.Online() {
			m.message = "Refreshing..."
			return m, m.fetchCmd()
		}
		m.message = "Offline, showing cached state"

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) archiveCurrent() {
	t := m.currentTask()
	if t == nil {
		return
	}
	if err := m.eng.SoftDelete(t.ID); err != nil {
		logger.Warn("Archive failed", logger.F("error", err))
		return
	}
	m.message = "Archived: " + t.Task
	m.clampCursor()
}

func (m Model) updateAddTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		title := m.input.Value()
		task, err := m.eng.Create(model.Draft{Title: title})
		switch err {
		case nil:
			if task.IsPending && !m.eng.Online() {
				m.message = "Added (offline, will sync): " + task.Task
			} else {
				m.message = "Added: " + task.Task
			}
		case engine.ErrEmptyTitle:
			// Silent no-op, same as submitting an empty form
		default:
			logger.Warn("Create failed", logger.F("error", err))
		}
		m.mode = ModeNormal
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.filterText = ""
		m.mode = ModeNormal
		m.input.Blur()
		m.cursor = 0
		return m, nil

	case msg.Type == tea.KeyEnter:
		m.mode = ModeNormal
		m.input.Blur()
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filterText = m.input.Value()
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.archiveCurrent()
	}
	m.mode = ModeNormal
	return m, nil
}
