package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/existcore/focal/internal/model"
)

// View renders the whole screen
func (m Model) View() string {
	if m.mode == ModeHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderTasks())
	b.WriteString("\n")

	if m.mode == ModeAddTask || m.mode == ModeFilter {
		b.WriteString(ModalStyle.Render(m.input.View()))
		b.WriteString("\n")
	}
	if m.mode == ModeConfirmDelete {
		if t := m.currentTask(); t != nil {
			b.WriteString(ModalStyle.Render(fmt.Sprintf("Archive \"%s\"? [y/N]", t.Task)))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("Focal")

	conn := OfflineStyle.Render("● offline")
	if m.eng.Online() {
		conn = OnlineStyle.Render("● online")
	}

	badge := ""
	if n := m.eng.BadgeCount(); n > 0 {
		badge = OverdueStyle.Render(fmt.Sprintf(" %d urgent", n))
	}

	ctx := TabStyle.Render(string(m.eng.Context()))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, ctx, conn, badge)
}

func (m Model) renderTabs() string {
	labels := []string{"Active", "Completed", "Archive"}
	var tabs []string
	for i, label := range labels {
		if View(i) == m.view {
			tabs = append(tabs, TabActiveStyle.Render(label))
		} else {
			tabs = append(tabs, TabStyle.Render(label))
		}
	}
	sorted := TabStyle.Render("sort: " + string(m.sortBy))
	if m.filterText != "" {
		sorted += TabStyle.Render("  filter: " + m.filterText)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, tabs...) + "  " + sorted
}

func (m Model) renderTasks() string {
	tasks := m.visibleTasks()
	if len(tasks) == 0 {
		empty := "No tasks. Press 'a' to add one."
		if m.view == ViewArchive {
			empty = "Archive is empty."
		}
		if m.filterText != "" {
			empty = "No tasks match the filter."
		}
		return TaskListStyle.Render(HelpStyle.Render(empty))
	}

	var rows []string
	for i, t := range tasks {
		rows = append(rows, m.renderTask(i, t))
	}
	return TaskListStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderTask(i int, t model.Task) string {
	checkbox := "[ ]"
	if t.IsCompleted {
		checkbox = "[x]"
	}

	imp := importanceStyle(t.Importance).Render(fmt.Sprintf("I%d", t.Importance))

	pending := ""
	if t.IsPending {
		pending = PendingStyle.Render(" ⋯")
	}

	due := ""
	if t.Deadline != nil {
		label := t.Deadline.Format("Jan 2")
		if days, ok := t.DaysUntilDeadline(time.Now()); ok {
			switch {
			case days < 0:
				due = "  " + OverdueStyle.Render(label+" (overdue)")
			case days == 0:
				due = "  " + OverdueStyle.Render("today")
			default:
				due = "  " + HelpStyle.Render(label)
			}
		}
	}

	category := ""
	if t.Category != "" {
		category = "  " + HelpStyle.Render("#"+t.Category)
	}

	line := fmt.Sprintf("%s %s %s%s%s%s", checkbox, imp, t.Task, pending, due, category)

	style := TaskItemStyle
	if t.IsCompleted && m.view != ViewArchive {
		style = TaskDoneStyle
	}
	if i == m.cursor {
		style = TaskItemSelectedStyle
	}
	return style.Render(line)
}

func (m Model) renderStatusBar() string {
	hints := "a add · x done · d archive · s sort · / filter · c context · tab view · ? help · q quit"
	if m.view == ViewArchive {
		hints = "u restore · D purge · tab view · ? help · q quit"
	}
	status := hints
	if m.message != "" {
		status = m.message + "   " + hints
	}
	return StatusBarStyle.Width(max(m.width-2, len(hints))).Render(status)
}

func (m Model) renderHelp() string {
	help := `
  Focal — keys

  Navigation
    ↑/k ↓/j    move
    tab        cycle Active / Completed / Archive
    c          switch context (personal/work)

  Tasks
    a          add a task (#tag in the title sets its category)
    x / enter  toggle completion
    d          archive the selected task
    u          restore (archive view)
    D          purge permanently (archive view)

  Views
    s          cycle sort: newest → deadline → importance
    /          filter by title
    r          refresh from the server

  Press any key to return.
`
	return ModalStyle.Render(help)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
