package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/nivaran/internal/ports/primary"
)

// GrievanceCmd returns the grievance command group.
func GrievanceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grievance",
		Short: "Manage grievances",
		Long:  "File, inspect and update citizen grievances",
	}

	cmd.AddCommand(grievanceCreateCmd(app))
	cmd.AddCommand(grievanceShowCmd(app))
	cmd.AddCommand(grievanceListCmd(app))
	cmd.AddCommand(grievanceStatusCmd(app))
	cmd.AddCommand(grievanceFollowCmd(app))
	cmd.AddCommand(grievanceFollowersCmd(app))
	cmd.AddCommand(grievanceAuditCmd(app))

	return cmd
}

func grievanceCreateCmd(app *App) *cobra.Command {
	var req primary.CreateGrievanceRequest
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "File a new grievance",
		Long:  "File a new grievance; it is routed to a jurisdiction and assigned an authority and SLA deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			// Coordinates are optional; only pass them through when given.
			if cmd.Flags().Changed("lat") {
				req.Latitude = &lat
			}
			if cmd.Flags().Changed("lon") {
				req.Longitude = &lon
			}

			resp, err := c.GrievanceService().CreateGrievance(NewContext(), req)
			if err != nil {
				return fmt.Errorf("failed to create grievance: %w", err)
			}

			g := resp.Grievance
			fmt.Printf("Created grievance %s\n", color.New(color.FgGreen).Sprint(g.ID))
			fmt.Printf("Jurisdiction: %s (%s)\n", g.JurisdictionID, g.JurisdictionLevel)
			fmt.Printf("Authority: %s\n", g.AssignedAuthority)
			fmt.Printf("SLA deadline: %s\n", g.SLADeadline)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Category, "category", "", "grievance category (required)")
	cmd.Flags().StringVar(&req.Severity, "severity", "medium", "severity: low, medium, high, critical")
	cmd.Flags().StringVar(&req.Description, "description", "", "what is wrong (required)")
	cmd.Flags().StringVar(&req.Pincode, "pincode", "", "location pincode")
	cmd.Flags().StringVar(&req.City, "city", "", "location city")
	cmd.Flags().StringVar(&req.District, "district", "", "location district")
	cmd.Flags().StringVar(&req.State, "state", "", "location state")
	cmd.Flags().Float64Var(&lat, "lat", 0, "location latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "location longitude")
	cmd.Flags().StringVar(&req.SourceIssueID, "source-issue", "", "originating issue reference")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func grievanceShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [grievance-id]",
		Short: "Show grievance details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			g, err := c.GrievanceService().GetGrievance(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("grievance not found: %w", err)
			}

			fmt.Printf("Grievance: %s\n", g.ID)
			fmt.Printf("Category: %s\n", g.Category)
			fmt.Printf("Severity: %s\n", g.Severity)
			fmt.Printf("Status: %s\n", formatStatus(g.Status))
			fmt.Printf("Description: %s\n", g.Description)
			fmt.Printf("Location: %s\n", formatLocation(g))
			fmt.Printf("Jurisdiction: %s (%s)\n", g.JurisdictionID, g.JurisdictionLevel)
			fmt.Printf("Authority: %s\n", g.AssignedAuthority)
			fmt.Printf("SLA deadline: %s\n", g.SLADeadline)
			if g.SourceIssueID != "" {
				fmt.Printf("Source issue: %s\n", g.SourceIssueID)
			}
			if g.PendingClosure {
				fmt.Printf("Closure: pending, %d confirmations required, window closes %s\n",
					g.RequiredConfirmations, g.ClosureDeadline)
			}
			fmt.Printf("Created: %s\n", g.CreatedAt)
			if g.ResolvedAt != "" {
				fmt.Printf("Resolved: %s\n", g.ResolvedAt)
			}
			return nil
		},
	}
}

func grievanceListCmd(app *App) *cobra.Command {
	var filters primary.GrievanceFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List grievances",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			grievances, err := c.GrievanceService().ListGrievances(NewContext(), filters)
			if err != nil {
				return fmt.Errorf("failed to list grievances: %w", err)
			}

			if len(grievances) == 0 {
				fmt.Println("No grievances found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tSEVERITY\tSTATUS\tJURISDICTION\tAUTHORITY\tSLA DEADLINE")
			fmt.Fprintln(w, "--\t--------\t--------\t------\t------------\t---------\t------------")
			for _, g := range grievances {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					g.ID, g.Category, g.Severity, g.Status,
					g.JurisdictionID, g.AssignedAuthority, g.SLADeadline)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&filters.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&filters.Severity, "severity", "", "filter by severity")
	cmd.Flags().StringVar(&filters.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&filters.JurisdictionID, "jurisdiction", "", "filter by jurisdiction")
	cmd.Flags().IntVar(&filters.Limit, "limit", 0, "limit results")

	return cmd
}

func grievanceStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status [grievance-id] [new-status]",
		Short: "Change a grievance's status",
		Long:  "Change a grievance's status (open, in_progress, escalated, resolved); illegal transitions are rejected",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			g, err := c.GrievanceService().UpdateStatus(NewContext(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to update status: %w", err)
			}

			fmt.Printf("Grievance %s is now %s\n", g.ID, formatStatus(g.Status))
			return nil
		},
	}
}

func grievanceFollowCmd(app *App) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "follow [grievance-id]",
		Short: "Follow a grievance",
		Long:  "Register as a follower; followers vote on closure confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			if err := c.GrievanceService().Follow(NewContext(), args[0], userID); err != nil {
				return fmt.Errorf("failed to follow grievance: %w", err)
			}
			fmt.Printf("%s now follows %s\n", userID, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func grievanceFollowersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "followers [grievance-id]",
		Short: "List a grievance's followers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			followers, err := c.GrievanceService().ListFollowers(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list followers: %w", err)
			}

			if len(followers) == 0 {
				fmt.Println("No followers yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "USER\tFOLLOWED")
			fmt.Fprintln(w, "----\t--------")
			for _, f := range followers {
				fmt.Fprintf(w, "%s\t%s\n", f.UserID, f.FollowedAt)
			}
			w.Flush()
			return nil
		},
	}
}

func grievanceAuditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "audit [grievance-id]",
		Short: "Show a grievance's escalation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			entries, err := c.GrievanceService().GetAuditTrail(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load audit trail: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("No escalations recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tREASON\tFROM\tTO\tNOTES")
			fmt.Fprintln(w, "----\t------\t----\t--\t-----")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt, e.Reason, e.PreviousAuthority, e.NewAuthority, e.Notes)
			}
			w.Flush()
			return nil
		},
	}
}

func formatStatus(status string) string {
	switch status {
	case "resolved":
		return color.New(color.FgGreen).Sprint(status)
	case "escalated":
		return color.New(color.FgRed).Sprint(status)
	case "in_progress":
		return color.New(color.FgYellow).Sprint(status)
	default:
		return status
	}
}

func formatLocation(g *primary.Grievance) string {
	parts := []string{}
	for _, p := range []string{g.City, g.District, g.State, g.Pincode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	loc := parts[0]
	for _, p := range parts[1:] {
		loc += ", " + p
	}
	return loc
}
