package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/nivaran/internal/adapters/sqlite"
)

// JurisdictionCmd returns the jurisdiction command group.
func JurisdictionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jurisdiction",
		Short: "Inspect the jurisdiction directory",
	}

	cmd.AddCommand(jurisdictionListCmd(app))
	cmd.AddCommand(jurisdictionShowCmd(app))

	return cmd
}

func jurisdictionListCmd(app *App) *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jurisdictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}
			repo := sqlite.NewJurisdictionRepository(c.DB())
			ctx := NewContext()

			records, err := repo.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list jurisdictions: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLEVEL\tAUTHORITY\tCOVERAGE")
			fmt.Fprintln(w, "--\t----\t-----\t---------\t--------")
			for _, j := range records {
				if level != "" && j.Level != level {
					continue
				}
				coverage := strings.Join(append(append(append([]string{}, j.States...), j.Districts...), j.Cities...), ", ")
				if coverage == "" {
					coverage = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", j.ID, j.Name, j.Level, j.Authority, coverage)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "filter by level (local, district, state, national)")

	return cmd
}

func jurisdictionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [jurisdiction-id]",
		Short: "Show jurisdiction details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}
			repo := sqlite.NewJurisdictionRepository(c.DB())

			j, err := repo.GetByID(NewContext(), args[0])
			if err != nil {
				return fmt.Errorf("jurisdiction not found: %w", err)
			}

			fmt.Printf("Jurisdiction: %s\n", j.ID)
			fmt.Printf("Name: %s\n", j.Name)
			fmt.Printf("Level: %s\n", j.Level)
			fmt.Printf("Authority: %s\n", j.Authority)
			if len(j.States) > 0 {
				fmt.Printf("States: %s\n", strings.Join(j.States, ", "))
			}
			if len(j.Districts) > 0 {
				fmt.Printf("Districts: %s\n", strings.Join(j.Districts, ", "))
			}
			if len(j.Cities) > 0 {
				fmt.Printf("Cities: %s\n", strings.Join(j.Cities, ", "))
			}
			fmt.Printf("Default SLA hours: %d\n", j.DefaultSLAHours)
			return nil
		},
	}
}
