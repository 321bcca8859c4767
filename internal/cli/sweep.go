package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// SweepCmd returns the sweep command group.
func SweepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the background sweeps",
		Long:  "Run the SLA breach and closure timeout sweeps, once or on a schedule",
	}

	cmd.AddCommand(sweepRunCmd(app))
	cmd.AddCommand(sweepWatchCmd(app))

	return cmd
}

func sweepRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run both sweeps once",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}
			ctx := NewContext()

			result, _ := c.Sweeper().RunEscalationCheck(ctx)
			fmt.Printf("Escalation sweep: %d overdue, %d escalated\n", result.Evaluated, result.Escalated)

			reopened, _ := c.Sweeper().RunClosureTimeoutCheck(ctx)
			fmt.Printf("Closure sweep: %d expired windows cleared\n", reopened)
			return nil
		},
	}
}

func sweepWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the sweeps on their configured schedules until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}
			cfg := c.Config()

			ctx := NewContext()
			if err := c.Sweeper().Start(ctx, cfg.EscalationSchedule, cfg.ClosureSchedule); err != nil {
				return err
			}
			defer c.Sweeper().Stop()

			fmt.Printf("Sweeping (escalation %s, closure %s). Ctrl-C to stop.\n",
				cfg.EscalationSchedule, cfg.ClosureSchedule)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			fmt.Println("Stopping.")
			return nil
		},
	}
}
