package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "rm [task-id]",
	Aliases: []string{"delete"},
	Short:   "Archive a task",
	Long: `Move a task to the archive. Archived tasks can be restored with
'focal archive restore' or removed for good with 'focal archive purge'.

Examples:
  focal rm 4fa2
  focal rm 4fa2 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
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
		fmt.Printf("Already archived: \"%s\"\n", task.Task)
		return nil
	}

	if s.cfg.ConfirmDelete && !deleteYes {
		fmt.Printf("Archive \"%s\"? [y/N] ", task.Task)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := s.eng.SoftDelete(task.ID); err != nil {
		return err
	}

	fmt.Printf("🗃  Archived: \"%s\"\n", task.Task)
	return nil
}
