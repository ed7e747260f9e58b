package cli

import (
	"fmt"

	"github.com/existcore/focal/internal/engine"
	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the task archive",
	Long: `Archive tasks in bulk, or restore and purge archived ones.

Commands:
  focal archive completed        # Archive all completed tasks
  focal archive old              # Archive tasks older than the configured age
  focal archive old --days 60
  focal archive restore <id>     # Bring a task back
  focal archive purge <id>       # Remove permanently`,
}

var archiveCompletedCmd = &cobra.Command{
	Use:   "completed",
	Short: "Archive all completed tasks in the current context",
	RunE:  runArchiveCompleted,
}

var archiveOldCmd = &cobra.Command{
	Use:   "old",
	Short: "Archive tasks older than a number of days",
	RunE:  runArchiveOld,
}

var archiveRestoreCmd = &cobra.Command{
	Use:   "restore [task-id]",
	Short: "Restore an archived task",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveRestore,
}

var archivePurgeCmd = &cobra.Command{
	Use:   "purge [task-id]",
	Short: "Permanently delete an archived task",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchivePurge,
}

var archiveOldDays int

func init() {
	archiveCmd.AddCommand(archiveCompletedCmd)
	archiveCmd.AddCommand(archiveOldCmd)
	archiveCmd.AddCommand(archiveRestoreCmd)
	archiveCmd.AddCommand(archivePurgeCmd)

	archiveOldCmd.Flags().IntVar(&archiveOldDays, "days", 0, "Age threshold in days (default from config)")
}

func runArchiveCompleted(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()
	s.refresh()

	n, err := s.eng.ArchiveCompleted(s.eng.Context())
	if err == engine.ErrNothingToArchive {
		fmt.Println("No completed tasks to archive.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("🗃  Archived %d completed task(s)\n", n)
	return nil
}

func runArchiveOld(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()
	s.refresh()

	days := archiveOldDays
	if days <= 0 {
		days = s.cfg.ArchiveAgeDays
	}

	n, err := s.eng.ArchiveOlderThan(s.eng.Context(), days)
	if err == engine.ErrNothingToArchive {
		fmt.Printf("No tasks older than %d days.\n", days)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("🗃  Archived %d task(s) older than %d days\n", n, days)
	return nil
}

func runArchiveRestore(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	// The archive view is server-side; fetch it so prefix lookup works.
	if err := s.eng.FetchArchive(cmd.Context()); err != nil {
		fmt.Println("⚠️  Could not fetch archive, using cached state")
	}

	task, err := findTask(s, args[0])
	if err != nil {
		return err
	}
	if !task.IsDeleted {
		fmt.Printf("Not archived: \"%s\"\n", task.Task)
		return nil
	}

	if err := s.eng.Restore(task.ID); err != nil {
		return err
	}

	fmt.Printf("↩  Restored: \"%s\"\n", task.Task)
	return nil
}

func runArchivePurge(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.eng.FetchArchive(cmd.Context()); err != nil {
		fmt.Println("⚠️  Could not fetch archive, using cached state")
	}

	task, err := findTask(s, args[0])
	if err != nil {
		return err
	}
	if !task.IsDeleted {
		return fmt.Errorf("task is not archived; archive it first: focal rm %s", shortID(task.ID))
	}

	if err := s.eng.Purge(task.ID); err != nil {
		return err
	}

	fmt.Printf("✗ Permanently deleted: \"%s\"\n", task.Task)
	return nil
}
