package container

import (
	"context"
	"fmt"

	"croprotation/adapters/excel"
	"croprotation/adapters/memory"
	"croprotation/adapters/postgres"
	"croprotation/app"
	"croprotation/internal"
	"croprotation/internal/api"
	"croprotation/internal/config"
	"croprotation/internal/migration"
	"croprotation/internal/ops"
	"croprotation/internal/soil"
	"croprotation/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	CropRepo ports.CropRepository
	PlanRepo ports.PlanRepository

	// Domain services
	Matcher         *soil.Matcher
	CropService     *app.CropService
	RotationService *app.RotationService

	// Transport
	API *api.Server
	Ops *ops.Server

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		logger: internal.DefaultLogger.With("container"),
	}, nil
}

// Init connects storage and builds every component. Without DATABASE_URL the
// container runs on in-memory repositories.
func (c *Container) Init(ctx context.Context) error {
	if c.Config.Database.Enabled() {
		if err := c.initDatabase(ctx); err != nil {
			return err
		}
		c.CropRepo = postgres.NewCropRepository(c.DB)
		c.PlanRepo = postgres.NewPlanRepository(c.DB)
	} else {
		c.logger.Warn("DATABASE_URL not set, running in demo mode with in-memory storage")
		c.CropRepo = memory.NewCropRepository()
		c.PlanRepo = memory.NewPlanRepository()
	}

	c.Matcher = soil.NewMatcher(c.Config.Soil.DefaultHP)
	c.CropService = app.NewCropService(c.CropRepo, c.Matcher)
	c.RotationService = app.NewRotationService(c.CropRepo, c.PlanRepo, c.Config.Rotation)

	c.API = api.NewServer(c.CropService, c.RotationService, c.Matcher, !c.Config.Database.Enabled())
	c.Ops = ops.NewServer(c.healthChecks())

	c.logger.Info("Container initialized (soil threshold %g, default season %s)", c.Matcher.Get(), c.Config.Rotation.DefaultSeason)
	return nil
}

// initDatabase connects to Postgres and applies migrations
func (c *Container) initDatabase(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	migrator := migration.NewRunner()
	if c.Config.Database.Reset {
		c.logger.Warn("DB_RESET set, dropping all tables")
		if err := migrator.Reset(ctx, db); err != nil {
			return fmt.Errorf("database reset failed: %w", err)
		}
	}
	if err := migrator.Run(ctx, db); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	c.logger.Info("Database ready (schema %s)", migrator.Version())
	return nil
}

func (c *Container) healthChecks() map[string]ops.HealthFunc {
	if c.DB == nil {
		return nil
	}
	return map[string]ops.HealthFunc{"database": c.DB.Ping}
}

// SeedCatalog imports a crop catalog file. Existing crops are skipped.
func (c *Container) SeedCatalog(ctx context.Context, path string) (*app.ImportResult, error) {
	if c.CropService == nil {
		return nil, fmt.Errorf("container not initialized")
	}

	crops, rowErrs, err := excel.NewCatalogReader(path).ReadCrops()
	if err != nil {
		return nil, fmt.Errorf("failed to read crop catalog: %w", err)
	}
	for _, rowErr := range rowErrs {
		c.logger.Warn("Catalog %s: %v", path, rowErr)
	}

	result, err := c.CropService.ImportCatalog(ctx, crops)
	if err != nil {
		return result, fmt.Errorf("failed to import crop catalog: %w", err)
	}
	c.logger.Info("Catalog %s: %d created, %d skipped, %d failed",
		path, len(result.Created), len(result.Skipped), len(result.Failed)+len(rowErrs))
	return result, nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
