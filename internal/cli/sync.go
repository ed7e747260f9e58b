package cli

import (
	"fmt"

	"github.com/existcore/focal/internal/model"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync tasks with the server",
	Long: `Sync your tasks across devices.

Commands:
  focal sync                  # Flush pending writes and pull server state
  focal sync status           # Show sync status
  focal sync server <url>     # Point at a different server`,
	RunE: runSync,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE:  runSyncStatus,
}

var syncServerCmd = &cobra.Command{
	Use:   "server [url]",
	Short: "Show or set the sync server URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSyncServer,
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncServerCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	if !s.client.IsLoggedIn() {
		return fmt.Errorf("not logged in, run: focal auth login")
	}
	if !s.eng.Online() {
		return fmt.Errorf("server unreachable: %s", s.client.ServerURL())
	}

	fmt.Println("🔄 Synchronizing...")
	s.refresh()

	if s.eng.HasPending() {
		fmt.Println("⚠️  Some tasks could not be pushed; they stay queued.")
	}
	fmt.Printf("✓ Sync complete. %d task(s) in %s.\n",
		len(s.eng.Active(model.Query{}))+len(s.eng.Completed(model.Query{})), s.eng.Context())
	return nil
}

func runSyncStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Printf("Server:    %s\n", s.client.ServerURL())
	if s.client.IsLoggedIn() {
		fmt.Printf("User ID:   %s\n", s.client.UserID())
		if s.eng.Online() {
			fmt.Println("Status:    ✓ Online")
		} else {
			fmt.Println("Status:    Offline (changes queue locally)")
		}
	} else {
		fmt.Println("Status:    Not logged in")
	}

	pending := 0
	for _, t := range s.eng.Tasks() {
		if t.IsPending {
			pending++
		}
	}
	fmt.Printf("Pending:   %d unsent task(s)\n", pending)
	return nil
}

func runSyncServer(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	if len(args) == 0 {
		fmt.Printf("Server: %s\n", s.client.ServerURL())
		return nil
	}

	if err := s.client.SetServer(args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Server set to: %s\n", args[0])
	return nil
}
