// Package cli contains the cobra commands for the nivaran tool.
package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/example/nivaran/internal/config"
	"github.com/example/nivaran/internal/version"
	"github.com/example/nivaran/internal/wire"
)

// App resolves the wired service container lazily, after cobra has parsed
// the persistent flags. One App backs one root command invocation.
type App struct {
	configPath string
	dbPath     string

	once      sync.Once
	container *wire.Container
	err       error
}

// Container builds (once) and returns the service container.
func (a *App) Container() (*wire.Container, error) {
	a.once.Do(func() {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			a.err = err
			return
		}
		if a.dbPath != "" {
			cfg.DBPath = a.dbPath
		}
		a.container, a.err = wire.New(cfg)
	})
	return a.container, a.err
}

// NewContext returns the base context for command execution.
func NewContext() context.Context {
	return context.Background()
}

// NewRootCmd builds the nivaran root command with all subcommands.
func NewRootCmd() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:     "nivaran",
		Short:   "Nivaran - citizen grievance routing and escalation",
		Version: version.String(),
		Long: `Nivaran routes citizen grievances to the right jurisdiction, tracks
SLA deadlines, escalates breaches up the jurisdiction hierarchy, and
closes grievances through follower confirmation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "nivaran.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&app.dbPath, "db", "", "path to the database (overrides config)")

	rootCmd.AddCommand(InitCmd(app))
	rootCmd.AddCommand(GrievanceCmd(app))
	rootCmd.AddCommand(EscalateCmd(app))
	rootCmd.AddCommand(ClosureCmd(app))
	rootCmd.AddCommand(JurisdictionCmd(app))
	rootCmd.AddCommand(SweepCmd(app))
	rootCmd.AddCommand(StatsCmd(app))

	return rootCmd
}
