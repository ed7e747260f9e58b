package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task's completion",
	Long: `Mark a task as completed, or reopen it if already completed.
The id may be abbreviated to any unique prefix.

Examples:
  focal done 4fa2
  focal done 4fa2e917-33c1-4b02-9e1d-8a7c25b0f6d4`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	task, err := findTask(s, args[0])
	if err != nil {
		return err
	}
	if task.IsDeleted {
		return fmt.Errorf("task is archived, restore it first: focal archive restore %s", shortID(task.ID))
	}

	if err := s.eng.ToggleComplete(task.ID); err != nil {
		return err
	}

	if task.IsCompleted {
		fmt.Printf("○ Reopened: \"%s\"\n", task.Task)
	} else {
		fmt.Printf("✓ Completed: \"%s\"\n", task.Task)
	}
	return nil
}
