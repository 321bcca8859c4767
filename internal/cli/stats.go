package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// StatsCmd returns the stats command.
func StatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show grievance statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			stats, err := c.GrievanceService().Stats(NewContext())
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			fmt.Printf("Total grievances: %d\n", stats.Total)
			fmt.Printf("  Open:        %d\n", stats.Open)
			fmt.Printf("  In progress: %d\n", stats.InProgress)
			fmt.Printf("  Escalated:   %d\n", stats.Escalated)
			fmt.Printf("  Resolved:    %d\n", stats.Resolved)
			fmt.Printf("Active: %d\n", stats.Active)
			fmt.Printf("Escalation rate: %.0f%%\n", stats.EscalationRate*100)
			return nil
		},
	}
}
