package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/nivaran/internal/db"
)

// InitCmd returns the init command.
func InitCmd(app *App) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the database",
		Long:  "Create the database and schema, optionally seeding the jurisdiction directory and SLA policy table",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Container()
			if err != nil {
				return err
			}

			// Opening the container already applied the schema.
			fmt.Printf("Database ready %s\n", color.New(color.FgGreen).Sprint("✓"))

			if !seed {
				return nil
			}

			seeded, err := db.DirectorySeeded(c.DB())
			if err != nil {
				return fmt.Errorf("failed to inspect directory: %w", err)
			}
			if seeded {
				fmt.Println("Jurisdiction directory already seeded, skipping.")
				return nil
			}

			if err := db.SeedDirectory(c.DB()); err != nil {
				return fmt.Errorf("failed to seed directory: %w", err)
			}
			fmt.Printf("Seeded jurisdiction directory and SLA policies %s\n", color.New(color.FgGreen).Sprint("✓"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "seed the jurisdiction directory and SLA policies")

	return cmd
}
