package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/nivaran/internal/ports/primary"
)

// ClosureCmd returns the closure command group.
func ClosureCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "closure",
		Short: "Manage closure confirmation",
		Long:  "Request closure of a grievance and record follower confirmations",
	}

	cmd.AddCommand(closureRequestCmd(app))
	cmd.AddCommand(closureConfirmCmd(app))
	cmd.AddCommand(closureStatusCmd(app))

	return cmd
}

func closureRequestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "request [grievance-id]",
		Short: "Request closure of a grievance",
		Long:  "Open a confirmation window; grievances with fewer than three followers resolve immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			state, err := c.ClosureService().RequestClosure(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to request closure: %w", err)
			}

			if state.ResolvedImmediately {
				fmt.Printf("Grievance %s %s (only %d followers, no quorum needed)\n",
					state.GrievanceID, color.New(color.FgGreen).Sprint("resolved"), state.Followers)
				return nil
			}

			fmt.Printf("Closure window opened for %s\n", state.GrievanceID)
			fmt.Printf("Followers: %d\n", state.Followers)
			fmt.Printf("Confirmations required: %d\n", state.RequiredConfirmations)
			fmt.Printf("Window closes: %s\n", state.Deadline)
			return nil
		},
	}
}

func closureConfirmCmd(app *App) *cobra.Command {
	var (
		userID  string
		dispute bool
		reason  string
	)

	cmd := &cobra.Command{
		Use:   "confirm [grievance-id]",
		Short: "Record a follower's closure response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			responseType := "confirmed"
			if dispute {
				responseType = "disputed"
			}

			result, err := c.ClosureService().SubmitConfirmation(NewContext(), primary.SubmitConfirmationRequest{
				GrievanceID: args[0],
				UserID:      userID,
				Type:        responseType,
				Reason:      reason,
			})
			if err != nil {
				return fmt.Errorf("failed to record response: %w", err)
			}

			printQuorum(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	cmd.Flags().BoolVar(&dispute, "dispute", false, "dispute the closure instead of confirming")
	cmd.Flags().StringVar(&reason, "reason", "", "why (mainly for disputes)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func closureStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status [grievance-id]",
		Short: "Show the quorum standing of a pending closure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			result, err := c.ClosureService().EvaluateQuorum(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to evaluate quorum: %w", err)
			}

			printQuorum(result)
			return nil
		},
	}
}

func printQuorum(result *primary.QuorumResult) {
	fmt.Printf("Grievance: %s\n", result.GrievanceID)
	fmt.Printf("Confirmed: %d / %d required\n", result.Confirmed, result.RequiredConfirmations)
	fmt.Printf("Disputed: %d\n", result.Disputed)
	if result.Resolved {
		fmt.Printf("Quorum reached, grievance %s\n", color.New(color.FgGreen).Sprint("resolved"))
	} else {
		fmt.Println("Quorum not yet reached.")
	}
}
