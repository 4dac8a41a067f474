package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"croprotation/domain/core"
	"croprotation/domain/crop"
	"croprotation/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const cropColumns = `id, name, scientific_name, family, nutrient_requirement, water_requirement,
	season, growth_duration, nitrogen_fixer, soil_type, is_active, acidity, owner_email,
	compatibility, created_at, updated_at`

// cropRow mirrors the crops table. Seasons and soil types are stored as
// comma-delimited text.
type cropRow struct {
	ID                  string    `db:"id"`
	Name                string    `db:"name"`
	ScientificName      string    `db:"scientific_name"`
	Family              string    `db:"family"`
	NutrientRequirement string    `db:"nutrient_requirement"`
	WaterRequirement    float64   `db:"water_requirement"`
	Season              string    `db:"season"`
	GrowthDuration      int       `db:"growth_duration"`
	NitrogenFixer       bool      `db:"nitrogen_fixer"`
	SoilType            string    `db:"soil_type"`
	IsActive            bool      `db:"is_active"`
	Acidity             int       `db:"acidity"`
	OwnerEmail          string    `db:"owner_email"`
	Compatibility       []byte    `db:"compatibility"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func newCropRow(c *crop.Crop) (*cropRow, error) {
	compatibility := c.Compatibility
	if compatibility == nil {
		compatibility = []crop.Compatibility{}
	}
	compatibilityJSON, err := json.Marshal(compatibility)
	if err != nil {
		return nil, err
	}
	return &cropRow{
		ID:                  c.ID.String(),
		Name:                c.Name,
		ScientificName:      c.ScientificName,
		Family:              string(c.Family),
		NutrientRequirement: string(c.NutrientRequirement),
		WaterRequirement:    c.WaterRequirement,
		Season:              crop.JoinSeasons(c.Season),
		GrowthDuration:      c.GrowthDuration,
		NitrogenFixer:       c.NitrogenFixer,
		SoilType:            strings.Join(c.SoilTypes, ","),
		IsActive:            c.IsActive,
		Acidity:             c.Acidity,
		OwnerEmail:          c.OwnerEmail,
		Compatibility:       compatibilityJSON,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}, nil
}

func (row *cropRow) toDomain() (*crop.Crop, error) {
	c := &crop.Crop{
		ID:                  core.ID(row.ID),
		Name:                row.Name,
		ScientificName:      row.ScientificName,
		Family:              crop.Family(row.Family),
		NutrientRequirement: crop.NutrientRequirement(row.NutrientRequirement),
		WaterRequirement:    row.WaterRequirement,
		Season:              crop.ParseSeasons(row.Season),
		GrowthDuration:      row.GrowthDuration,
		NitrogenFixer:       row.NitrogenFixer,
		SoilTypes:           splitList(row.SoilType),
		IsActive:            row.IsActive,
		Acidity:             row.Acidity,
		OwnerEmail:          row.OwnerEmail,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	if len(row.Compatibility) > 0 {
		if err := json.Unmarshal(row.Compatibility, &c.Compatibility); err != nil {
			return nil, fmt.Errorf("decode compatibility for crop %s: %w", row.ID, err)
		}
	}
	return c, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CropRepositoryImpl implements ports.CropRepository for PostgreSQL
type CropRepositoryImpl struct {
	db *sqlx.DB
}

// NewCropRepository creates a new PostgreSQL crop repository
func NewCropRepository(db *sqlx.DB) ports.CropRepository {
	return &CropRepositoryImpl{db: db}
}

func (r *CropRepositoryImpl) selectCrops(ctx context.Context, query string, args ...interface{}) ([]*crop.Crop, error) {
	var rows []cropRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	crops := make([]*crop.Crop, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		crops = append(crops, c)
	}
	return crops, nil
}

func (r *CropRepositoryImpl) getOne(ctx context.Context, key, query string, args ...interface{}) (*crop.Crop, error) {
	var row cropRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrCropNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// List returns crops passing the filter, ordered by name
func (r *CropRepositoryImpl) List(ctx context.Context, filter ports.CropFilter) ([]*crop.Crop, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.Family != "" {
		args = append(args, string(filter.Family))
		conditions = append(conditions, fmt.Sprintf("family = $%d", len(args)))
	}
	if filter.NutrientRequirement != "" {
		args = append(args, string(filter.NutrientRequirement))
		conditions = append(conditions, fmt.Sprintf("nutrient_requirement = $%d", len(args)))
	}
	if filter.Season != "" {
		args = append(args, string(filter.Season))
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(string_to_array(season, ','))", len(args)))
	}

	query := "SELECT " + cropColumns + " FROM crops"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name ASC"

	return r.selectCrops(ctx, query, args...)
}

// Get retrieves a crop by ID
func (r *CropRepositoryImpl) Get(ctx context.Context, id core.ID) (*crop.Crop, error) {
	return r.getOne(ctx, id.String(), "SELECT "+cropColumns+" FROM crops WHERE id = $1", id.String())
}

// GetByName retrieves a crop by case-insensitive name
func (r *CropRepositoryImpl) GetByName(ctx context.Context, name string) (*crop.Crop, error) {
	name = strings.TrimSpace(name)
	return r.getOne(ctx, name, "SELECT "+cropColumns+" FROM crops WHERE LOWER(name) = LOWER($1)", name)
}

// Create stores a new crop
func (r *CropRepositoryImpl) Create(ctx context.Context, c *crop.Crop) error {
	if c.ID.IsEmpty() {
		c.ID = core.NewID()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	row, err := newCropRow(c)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO crops (`+cropColumns+`)
		VALUES (:id, :name, :scientific_name, :family, :nutrient_requirement, :water_requirement,
			:season, :growth_duration, :nitrogen_fixer, :soil_type, :is_active, :acidity, :owner_email,
			:compatibility, :created_at, :updated_at)
	`, row)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", core.ErrDuplicateCrop, c.Name)
	}
	return err
}

// Update replaces a stored crop
func (r *CropRepositoryImpl) Update(ctx context.Context, c *crop.Crop) error {
	c.UpdatedAt = time.Now()
	row, err := newCropRow(c)
	if err != nil {
		return err
	}

	result, err := r.db.NamedExecContext(ctx, `
		UPDATE crops SET
			name = :name, scientific_name = :scientific_name, family = :family,
			nutrient_requirement = :nutrient_requirement, water_requirement = :water_requirement,
			season = :season, growth_duration = :growth_duration, nitrogen_fixer = :nitrogen_fixer,
			soil_type = :soil_type, is_active = :is_active, acidity = :acidity,
			owner_email = :owner_email, compatibility = :compatibility, updated_at = :updated_at
		WHERE id = :id
	`, row)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", core.ErrDuplicateCrop, c.Name)
	}
	if err != nil {
		return err
	}
	return requireAffected(result, core.ErrCropNotFound, c.ID)
}

// Deactivate soft-deletes a crop
func (r *CropRepositoryImpl) Deactivate(ctx context.Context, id core.ID) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE crops SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1
	`, id.String())
	if err != nil {
		return err
	}
	return requireAffected(result, core.ErrCropNotFound, id)
}

// Search matches active crops by name or scientific name
func (r *CropRepositoryImpl) Search(ctx context.Context, term string, limit int) ([]*crop.Crop, error) {
	pattern := "%" + strings.TrimSpace(term) + "%"
	query := "SELECT " + cropColumns + ` FROM crops
		WHERE is_active = TRUE AND (name ILIKE $1 OR scientific_name ILIKE $1)
		ORDER BY name ASC`
	args := []interface{}{pattern}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	return r.selectCrops(ctx, query, args...)
}

func requireAffected(result sql.Result, notFound error, id core.ID) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
