package cli

import (
	"fmt"

	"github.com/existcore/focal/internal/config"
	"github.com/existcore/focal/internal/model"
	"github.com/spf13/cobra"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage the task context",
	Long: `Show or switch the current context. Tasks live in exactly one
context (personal or work); views only show the current one.

Examples:
  focal context               # Show current context
  focal context set work      # Switch to the work context`,
	RunE: runContextShow,
}

var contextSetCmd = &cobra.Command{
	Use:   "set [personal|work]",
	Short: "Switch the current context",
	Args:  cobra.ExactArgs(1),
	RunE:  runContextSet,
}

func init() {
	contextCmd.AddCommand(contextSetCmd)
}

func runContextShow(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	active := len(s.eng.Active(model.Query{}))
	completed := len(s.eng.Completed(model.Query{}))
	fmt.Printf("Current context: %s (%d active, %d completed)\n",
		s.eng.Context(), active, completed)
	return nil
}

func runContextSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	if name != string(model.ContextPersonal) && name != string(model.ContextWork) {
		return fmt.Errorf("unknown context %q, use personal or work", name)
	}

	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	cfg.Context = name
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Switched to: %s\n", name)
	return nil
}
