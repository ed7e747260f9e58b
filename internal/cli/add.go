package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/existcore/focal/internal/model"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long: `Add a new task. A #tag in the title becomes the category.

Examples:
  focal add "Buy milk #errand"
  focal add "Quarterly report" -i 3 -d 2026-09-15
  focal add "Call dentist" --context personal`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addImportance int
	addDeadline   string
	addDesc       string
	addContext    string
)

func init() {
	addCmd.Flags().IntVarP(&addImportance, "importance", "i", 2, "Importance (1=low, 2=normal, 3=high)")
	addCmd.Flags().StringVarP(&addDeadline, "deadline", "d", "", "Deadline (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Longer description")
	addCmd.Flags().StringVar(&addContext, "context", "", "Context (personal or work)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	title := strings.Join(args, " ")

	draft := model.Draft{
		Title:       title,
		Description: addDesc,
		Importance:  addImportance,
	}
	if addContext != "" {
		draft.Context = model.ParseContext(addContext)
	}
	if addDeadline != "" {
		due, err := time.ParseInLocation("2006-01-02", addDeadline, time.Local)
		if err != nil {
			return fmt.Errorf("invalid deadline %q, use YYYY-MM-DD", addDeadline)
		}
		draft.Deadline = &due
	}

	task, err := s.eng.Create(draft)
	if err != nil {
		return err
	}

	if s.eng.Online() {
		fmt.Printf("✓ Added: \"%s\"\n", task.Task)
	} else {
		fmt.Printf("✓ Added (offline, will sync): \"%s\"\n", task.Task)
	}
	if task.Category != "" {
		fmt.Printf("  Category: %s\n", task.Category)
	}
	return nil
}
