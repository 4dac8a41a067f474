package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"croprotation/domain/core"
	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
	"croprotation/ports"

	"github.com/jmoiron/sqlx"
)

const planColumns = `id, farmer_id, field_id, field_size, unit, current_crop_id, soil_test_results,
	climate, target_season, pest_history, rotation_strategy, rotation_duration, status,
	planned_crops, recommendations, created_at, updated_at`

// planRow mirrors the rotation_plans table; nested values are stored as JSONB
type planRow struct {
	ID               string         `db:"id"`
	FarmerID         string         `db:"farmer_id"`
	FieldID          string         `db:"field_id"`
	FieldSize        float64        `db:"field_size"`
	Unit             string         `db:"unit"`
	CurrentCropID    sql.NullString `db:"current_crop_id"`
	SoilTestResults  []byte         `db:"soil_test_results"`
	Climate          []byte         `db:"climate"`
	TargetSeason     string         `db:"target_season"`
	PestHistory      bool           `db:"pest_history"`
	Strategy         string         `db:"rotation_strategy"`
	RotationDuration int            `db:"rotation_duration"`
	Status           string         `db:"status"`
	PlannedCrops     []byte         `db:"planned_crops"`
	Recommendations  []byte         `db:"recommendations"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func newPlanRow(p *domainRotation.Plan) (*planRow, error) {
	soilJSON, err := json.Marshal(p.SoilTestResults)
	if err != nil {
		return nil, err
	}
	climateJSON, err := json.Marshal(p.Climate)
	if err != nil {
		return nil, err
	}
	planned := p.PlannedCrops
	if planned == nil {
		planned = []domainRotation.PlannedCrop{}
	}
	plannedJSON, err := json.Marshal(planned)
	if err != nil {
		return nil, err
	}
	recs := p.Recommendations
	if recs == nil {
		recs = []domainRotation.Recommendation{}
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return nil, err
	}

	row := &planRow{
		ID:               p.ID.String(),
		FarmerID:         p.FarmerID.String(),
		FieldID:          p.FieldID,
		FieldSize:        p.FieldSize,
		Unit:             string(p.Unit),
		SoilTestResults:  soilJSON,
		Climate:          climateJSON,
		TargetSeason:     string(p.TargetSeason),
		PestHistory:      p.PestHistory,
		Strategy:         string(p.Strategy),
		RotationDuration: p.RotationDuration,
		Status:           string(p.Status),
		PlannedCrops:     plannedJSON,
		Recommendations:  recsJSON,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.CurrentCropID != nil {
		row.CurrentCropID = sql.NullString{String: p.CurrentCropID.String(), Valid: true}
	}
	return row, nil
}

func (row *planRow) toDomain() (*domainRotation.Plan, error) {
	p := &domainRotation.Plan{
		ID:               core.ID(row.ID),
		FarmerID:         core.ID(row.FarmerID),
		FieldID:          row.FieldID,
		FieldSize:        row.FieldSize,
		Unit:             domainRotation.FieldUnit(row.Unit),
		TargetSeason:     crop.Season(row.TargetSeason),
		PestHistory:      row.PestHistory,
		Strategy:         domainRotation.StrategyKey(row.Strategy),
		RotationDuration: row.RotationDuration,
		Status:           domainRotation.PlanStatus(row.Status),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.CurrentCropID.Valid {
		id := core.ID(row.CurrentCropID.String)
		p.CurrentCropID = &id
	}

	fields := []struct {
		name string
		raw  []byte
		dst  interface{}
	}{
		{"soil_test_results", row.SoilTestResults, &p.SoilTestResults},
		{"climate", row.Climate, &p.Climate},
		{"planned_crops", row.PlannedCrops, &p.PlannedCrops},
		{"recommendations", row.Recommendations, &p.Recommendations},
	}
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s for plan %s: %w", f.name, row.ID, err)
		}
	}
	return p, nil
}

// PlanRepositoryImpl implements ports.PlanRepository for PostgreSQL
type PlanRepositoryImpl struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new PostgreSQL plan repository
func NewPlanRepository(db *sqlx.DB) ports.PlanRepository {
	return &PlanRepositoryImpl{db: db}
}

// Create stores a new plan
func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *domainRotation.Plan) error {
	if plan.ID.IsEmpty() {
		plan.ID = core.NewID()
	}
	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	row, err := newPlanRow(plan)
	if err != nil {
		return err
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO rotation_plans (`+planColumns+`)
		VALUES (:id, :farmer_id, :field_id, :field_size, :unit, :current_crop_id, :soil_test_results,
			:climate, :target_season, :pest_history, :rotation_strategy, :rotation_duration, :status,
			:planned_crops, :recommendations, :created_at, :updated_at)
	`, row)
	return err
}

// Get retrieves a plan by ID
func (r *PlanRepositoryImpl) Get(ctx context.Context, id core.ID) (*domainRotation.Plan, error) {
	var row planRow
	err := r.db.GetContext(ctx, &row, "SELECT "+planColumns+" FROM rotation_plans WHERE id = $1", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrPlanNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

// ListByFarmer returns a farmer's plans, newest first
func (r *PlanRepositoryImpl) ListByFarmer(ctx context.Context, farmerID core.ID, filter ports.PlanFilter) ([]*domainRotation.Plan, error) {
	query := "SELECT " + planColumns + " FROM rotation_plans WHERE farmer_id = $1"
	args := []interface{}{farmerID.String()}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.FieldID != "" {
		args = append(args, filter.FieldID)
		query += fmt.Sprintf(" AND field_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []planRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	plans := make([]*domainRotation.Plan, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Update replaces a stored plan
func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *domainRotation.Plan) error {
	plan.UpdatedAt = time.Now()
	row, err := newPlanRow(plan)
	if err != nil {
		return err
	}

	result, err := r.db.NamedExecContext(ctx, `
		UPDATE rotation_plans SET
			field_id = :field_id, field_size = :field_size, unit = :unit,
			current_crop_id = :current_crop_id, soil_test_results = :soil_test_results,
			climate = :climate, target_season = :target_season, pest_history = :pest_history,
			rotation_strategy = :rotation_strategy, rotation_duration = :rotation_duration,
			status = :status, planned_crops = :planned_crops, recommendations = :recommendations,
			updated_at = :updated_at
		WHERE id = :id
	`, row)
	if err != nil {
		return err
	}
	return requireAffected(result, core.ErrPlanNotFound, plan.ID)
}

// SetStatus changes only the lifecycle status of a plan
func (r *PlanRepositoryImpl) SetStatus(ctx context.Context, id core.ID, status domainRotation.PlanStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rotation_plans SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id.String(), string(status))
	if err != nil {
		return err
	}
	return requireAffected(result, core.ErrPlanNotFound, id)
}
