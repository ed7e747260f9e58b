package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/existcore/focal/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List the tasks of the current context.

Examples:
  focal list
  focal list --completed
  focal list --sort deadline --category errand
  focal list --search milk`,
	RunE: runList,
}

var (
	listCompleted bool
	listArchived  bool
	listSort      string
	listSearch    string
	listCategory  string
	listDeadline  string
	listOffline   bool
)

func init() {
	listCmd.Flags().BoolVar(&listCompleted, "completed", false, "Show completed tasks")
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "Show archived tasks")
	listCmd.Flags().StringVar(&listSort, "sort", "newest", "Sort order (newest, deadline, importance)")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Filter by title substring")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category")
	listCmd.Flags().StringVar(&listDeadline, "deadline", "", "Filter by deadline presence (scheduled, anytime)")
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Skip the server fetch, use cached state")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	if !listOffline {
		s.refresh()
	}

	q := model.Query{
		Search:   listSearch,
		Category: listCategory,
		SortBy:   model.ParseSortKey(listSort),
		Deadline: model.ParseDeadlineFilter(listDeadline),
	}

	var tasks []model.Task
	var heading string
	switch {
	case listArchived:
		if err := s.eng.FetchArchive(cmd.Context()); err != nil {
			fmt.Println("⚠️  Could not fetch archive, showing cached state")
		}
		tasks = s.eng.Archived(q)
		heading = "Archived"
	case listCompleted:
		tasks = s.eng.Completed(q)
		heading = "Completed"
	default:
		tasks = s.eng.Active(q)
		heading = "Tasks"
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found. Add one with: focal add \"Your task\"")
		return nil
	}

	status := ""
	if !s.eng.Online() {
		status = "  [offline]"
	}
	fmt.Printf("\n%s — %s%s\n", heading, s.eng.Context(), status)
	fmt.Println(strings.Repeat("─", 64))
	for _, t := range tasks {
		printTask(t)
	}
	fmt.Println()
	return nil
}

func printTask(t model.Task) {
	icon := "[ ]"
	if t.IsCompleted {
		icon = "[x]"
	}

	marker := "  "
	switch {
	case t.IsPending:
		marker = "⋯ " // not yet on the server
	case t.Importance == model.ImportanceHigh:
		marker = "▲ "
	}

	title := t.Task
	if len(title) > 40 {
		title = title[:37] + "..."
	}

	due := ""
	if t.Deadline != nil {
		due = t.Deadline.Format("Jan 2")
		if days, ok := t.DaysUntilDeadline(time.Now()); ok && days < 0 {
			due += " (overdue)"
		}
	}

	category := ""
	if t.Category != "" {
		category = "#" + t.Category
	}

	fmt.Printf("  %s %s%-8s  %-40s  %-14s %s\n",
		icon, marker, shortID(t.ID), title, due, category)
}
