package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Importance colors
	ImportanceHigh   = lipgloss.Color("#FF6B6B") // Red
	ImportanceNormal = lipgloss.Color("#FFE66D") // Yellow
	ImportanceLow    = lipgloss.Color("#4ECDC4") // Teal

	// Status colors
	Completed   = lipgloss.Color("#95E1A3") // Green
	SyncPending = lipgloss.Color("#FFE66D") // Yellow
	Offline     = lipgloss.Color("#6C757D") // Gray
	Overdue     = lipgloss.Color("#FF6B6B") // Red

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1)

	TaskListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	TaskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	PendingStyle = lipgloss.NewStyle().Foreground(SyncPending)
	OverdueStyle = lipgloss.NewStyle().Foreground(Overdue).Bold(true)
	OfflineStyle = lipgloss.NewStyle().Foreground(Offline)
	OnlineStyle  = lipgloss.NewStyle().Foreground(Completed)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// importanceStyle returns the style for an importance level
func importanceStyle(importance int) lipgloss.Style {
	switch importance {
	case 3:
		return lipgloss.NewStyle().Foreground(ImportanceHigh).Bold(true)
	case 1:
		return lipgloss.NewStyle().Foreground(ImportanceLow)
	default:
		return lipgloss.NewStyle().Foreground(ImportanceNormal)
	}
}
