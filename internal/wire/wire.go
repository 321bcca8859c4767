// Package wire is the composition root: it builds the database handle,
// repositories and services for one process. Dependencies are held in an
// explicit container rather than package globals, so tests and embedders
// can build as many isolated instances as they need.
package wire

import (
	"database/sql"
	"fmt"

	"github.com/example/nivaran/internal/adapters/sqlite"
	"github.com/example/nivaran/internal/app"
	"github.com/example/nivaran/internal/config"
	"github.com/example/nivaran/internal/db"
	"github.com/example/nivaran/internal/ports/primary"
	"github.com/example/nivaran/internal/scheduler"
)

// Container holds the wired application graph.
type Container struct {
	cfg      config.Config
	database *sql.DB

	grievanceService  primary.GrievanceService
	escalationService primary.EscalationService
	closureService    primary.ClosureService
	sweeper           *scheduler.Sweeper
}

// New opens the database and wires the full service graph from the
// configuration. The caller owns the container and must Close it.
func New(cfg config.Config) (*Container, error) {
	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	reader := sqlite.NewStore(database)
	uow := sqlite.NewUnitOfWork(database)

	directory := app.NewDirectory(sqlite.NewJurisdictionRepository(database))
	router := app.NewRouter(directory, cfg.RoutingRules())
	slaCalc := app.NewSLACalculator(sqlite.NewSLAPolicyRepository(database), cfg.DefaultSLAHours)

	escalationService := app.NewEscalationService(uow, reader, directory, router, slaCalc)
	closureService := app.NewClosureService(uow, reader)

	return &Container{
		cfg:               cfg,
		database:          database,
		grievanceService:  app.NewGrievanceService(uow, reader, directory, router, slaCalc),
		escalationService: escalationService,
		closureService:    closureService,
		sweeper:           scheduler.NewSweeper(escalationService, closureService),
	}, nil
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config { return c.cfg }

// DB returns the underlying database handle (seed and admin paths).
func (c *Container) DB() *sql.DB { return c.database }

// GrievanceService returns the grievance lifecycle service.
func (c *Container) GrievanceService() primary.GrievanceService { return c.grievanceService }

// EscalationService returns the escalation service.
func (c *Container) EscalationService() primary.EscalationService { return c.escalationService }

// ClosureService returns the closure confirmation service.
func (c *Container) ClosureService() primary.ClosureService { return c.closureService }

// Sweeper returns the background sweep scheduler.
func (c *Container) Sweeper() *scheduler.Sweeper { return c.sweeper }

// Close releases the database handle.
func (c *Container) Close() error {
	return c.database.Close()
}
