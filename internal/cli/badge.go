package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/existcore/focal/internal/model"
	"github.com/spf13/cobra"
)

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Print the notification summary as JSON",
	Long: `Print the daily notification payload: the count of urgent tasks
(deadline-bearing or top importance) in the current context, plus a
short summary line. Intended for status bars and notification hooks.

Example:
  focal badge | jq .badgeCount`,
	RunE: runBadge,
}

type badgePayload struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	BadgeCount int    `json:"badgeCount"`
}

func runBadge(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()
	s.refresh()

	count := s.eng.BadgeCount()

	payload := badgePayload{
		Title:      "Focal",
		BadgeCount: count,
	}

	switch count {
	case 0:
		payload.Body = "Nothing urgent today."
	case 1:
		payload.Body = "1 task needs attention."
	default:
		payload.Body = fmt.Sprintf("%d tasks need attention.", count)
	}

	// Lead with the most pressing deadline when there is one.
	deadline := s.eng.Active(model.Query{SortBy: model.SortDeadline, Deadline: model.DeadlineScheduled})
	if len(deadline) > 0 {
		t := deadline[0]
		if days, ok := t.DaysUntilDeadline(time.Now()); ok {
			switch {
			case days < 0:
				payload.Body = fmt.Sprintf("Overdue: %s. %s", t.Task, payload.Body)
			case days == 0:
				payload.Body = fmt.Sprintf("Due today: %s. %s", t.Task, payload.Body)
			case days == 1:
				payload.Body = fmt.Sprintf("Due tomorrow: %s. %s", t.Task, payload.Body)
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
