package migration

import (
	"context"

	"croprotation/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Reset(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

type step struct {
	name string
	sql  string
}

var steps = []step{
	{"crops table", `
		CREATE TABLE IF NOT EXISTS crops (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			scientific_name VARCHAR(200) NOT NULL DEFAULT '',
			family VARCHAR(50) NOT NULL DEFAULT 'Other',
			nutrient_requirement VARCHAR(10) NOT NULL DEFAULT 'medium',
			water_requirement DOUBLE PRECISION NOT NULL DEFAULT 5
				CHECK (water_requirement BETWEEN 0 AND 10),
			season TEXT NOT NULL DEFAULT 'spring,summer',
			growth_duration INTEGER NOT NULL DEFAULT 90
				CHECK (growth_duration BETWEEN 30 AND 365),
			nitrogen_fixer BOOLEAN NOT NULL DEFAULT false,
			soil_type TEXT NOT NULL DEFAULT 'loamy',
			is_active BOOLEAN NOT NULL DEFAULT true,
			acidity INTEGER NOT NULL DEFAULT 0 CHECK (acidity BETWEEN 0 AND 100),
			owner_email VARCHAR(255) NOT NULL DEFAULT '',
			compatibility JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`},
	{"rotation_plans table", `
		CREATE TABLE IF NOT EXISTS rotation_plans (
			id UUID PRIMARY KEY,
			farmer_id UUID NOT NULL,
			field_id VARCHAR(100) NOT NULL,
			field_size DOUBLE PRECISION NOT NULL CHECK (field_size >= 0.1),
			unit VARCHAR(10) NOT NULL DEFAULT 'hectare',
			current_crop_id UUID REFERENCES crops(id) ON DELETE SET NULL,
			soil_test_results JSONB NOT NULL DEFAULT '{}',
			climate JSONB,
			target_season VARCHAR(10) NOT NULL DEFAULT '',
			pest_history BOOLEAN NOT NULL DEFAULT false,
			rotation_strategy VARCHAR(20) NOT NULL DEFAULT 'nutrient',
			rotation_duration INTEGER NOT NULL DEFAULT 3
				CHECK (rotation_duration BETWEEN 1 AND 10),
			status VARCHAR(20) NOT NULL DEFAULT 'draft',
			planned_crops JSONB NOT NULL DEFAULT '[]',
			recommendations JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`},
	{"indexes", `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_crops_name_lower ON crops (LOWER(name));
		CREATE INDEX IF NOT EXISTS idx_crops_family ON crops (family);
		CREATE INDEX IF NOT EXISTS idx_crops_active ON crops (is_active);
		CREATE INDEX IF NOT EXISTS idx_rotation_plans_farmer ON rotation_plans (farmer_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_rotation_plans_status ON rotation_plans (status)
	`},
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.Wrap(err, "failed to create "+s.name)
		}
	}
	return nil
}

// Reset drops every table owned by the service
func (r *MigrationRunner) Reset(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS rotation_plans, crops CASCADE`)
	if err != nil {
		return errors.Wrap(err, "failed to reset schema")
	}
	return nil
}
