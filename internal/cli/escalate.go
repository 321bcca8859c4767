package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/nivaran/internal/ports/primary"
)

// EscalateCmd returns the escalate command group.
func EscalateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalate",
		Short: "Escalate grievances",
		Long:  "Escalate a grievance to the next jurisdiction level or raise its severity",
	}

	cmd.AddCommand(escalateManualCmd(app))
	cmd.AddCommand(escalateSeverityCmd(app))

	return cmd
}

func escalateManualCmd(app *App) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "up [grievance-id]",
		Short: "Escalate a grievance one level up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			g, err := c.EscalationService().ManualEscalate(NewContext(), args[0], notes)
			if err != nil {
				return fmt.Errorf("failed to escalate: %w", err)
			}

			fmt.Printf("Escalated %s to %s (%s)\n", g.ID, g.JurisdictionID, g.JurisdictionLevel)
			fmt.Printf("Authority: %s\n", g.AssignedAuthority)
			fmt.Printf("New SLA deadline: %s\n", g.SLADeadline)
			return nil
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "why this escalation is needed")

	return cmd
}

func escalateSeverityCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "severity [grievance-id] [new-severity]",
		Short: "Change a grievance's severity",
		Long:  "Change a grievance's severity and recompute its SLA deadline; a jump of two or more steps escalates it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			g, err := c.EscalationService().EscalateSeverity(NewContext(), primary.EscalateSeverityRequest{
				GrievanceID: args[0],
				NewSeverity: args[1],
				Reason:      reason,
			})
			if err != nil {
				return fmt.Errorf("failed to change severity: %w", err)
			}

			fmt.Printf("Grievance %s is now %s severity\n", g.ID, g.Severity)
			fmt.Printf("Status: %s\n", formatStatus(g.Status))
			fmt.Printf("SLA deadline: %s\n", g.SLADeadline)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the severity changed")

	return cmd
}
