package app

import (
	"context"
	"fmt"

	"croprotation/domain/core"
	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
	"croprotation/internal"
	"croprotation/internal/config"
	appErrors "croprotation/internal/errors"
	"croprotation/internal/rotation"
	"croprotation/ports"
)

// Caller is the authenticated identity a request acts for
type Caller struct {
	ID    core.ID
	Admin bool
}

// CanAccess reports whether the caller may read or change the plan
func (c Caller) CanAccess(plan *domainRotation.Plan) bool {
	return c.Admin || (!c.ID.IsEmpty() && plan.FarmerID == c.ID)
}

// PlanUpdate carries the fields of a partial plan update; nil fields are left
// unchanged
type PlanUpdate struct {
	FieldID          *string                         `json:"field_id"`
	FieldSize        *float64                        `json:"field_size"`
	Unit             *domainRotation.FieldUnit       `json:"unit"`
	CurrentCropID    *core.ID                        `json:"current_crop_id"`
	SoilTestResults  *domainRotation.SoilTestResults `json:"soil_test_results"`
	Climate          *domainRotation.Climate         `json:"climate"`
	TargetSeason     *crop.Season                    `json:"target_season"`
	PestHistory      *bool                           `json:"pest_history"`
	Strategy         *domainRotation.StrategyKey     `json:"rotation_strategy"`
	RotationDuration *int                            `json:"rotation_duration"`
	Status           *domainRotation.PlanStatus      `json:"status"`
}

// affectsScoring reports whether applying the update changes any strategy input
func (u PlanUpdate) affectsScoring() bool {
	return u.Strategy != nil || u.SoilTestResults != nil || u.Climate != nil ||
		u.TargetSeason != nil || u.PestHistory != nil || u.CurrentCropID != nil ||
		u.FieldSize != nil
}

func (u PlanUpdate) apply(plan *domainRotation.Plan) {
	if u.FieldID != nil {
		plan.FieldID = *u.FieldID
	}
	if u.FieldSize != nil {
		plan.FieldSize = *u.FieldSize
	}
	if u.Unit != nil {
		plan.Unit = *u.Unit
	}
	if u.CurrentCropID != nil {
		if u.CurrentCropID.IsEmpty() {
			plan.CurrentCropID = nil
		} else {
			id := *u.CurrentCropID
			plan.CurrentCropID = &id
		}
	}
	if u.SoilTestResults != nil {
		plan.SoilTestResults = *u.SoilTestResults
	}
	if u.Climate != nil {
		climate := *u.Climate
		plan.Climate = &climate
	}
	if u.TargetSeason != nil {
		plan.TargetSeason = *u.TargetSeason
	}
	if u.PestHistory != nil {
		plan.PestHistory = *u.PestHistory
	}
	if u.Strategy != nil {
		plan.Strategy = *u.Strategy
	}
	if u.RotationDuration != nil {
		plan.RotationDuration = *u.RotationDuration
	}
	if u.Status != nil {
		plan.Status = *u.Status
	}
}

// RotationService manages rotation plans and runs the recommendation engine
// over them
type RotationService struct {
	crops    ports.CropRepository
	plans    ports.PlanRepository
	defaults config.RotationConfig
	logger   *internal.Logger
}

func NewRotationService(crops ports.CropRepository, plans ports.PlanRepository, defaults config.RotationConfig) *RotationService {
	return &RotationService{
		crops:    crops,
		plans:    plans,
		defaults: defaults,
		logger:   internal.DefaultLogger.With("rotation"),
	}
}

// Strategies lists the registered strategies
func (s *RotationService) Strategies() []rotation.Info {
	return rotation.Infos()
}

// CreatePlan stores a new plan for the caller and generates its first
// recommendations
func (s *RotationService) CreatePlan(ctx context.Context, caller Caller, plan *domainRotation.Plan) (*domainRotation.Plan, error) {
	if caller.ID.IsEmpty() {
		return nil, appErrors.Unauthorized("caller identity is required")
	}

	plan.ID = ""
	plan.FarmerID = caller.ID
	plan.Recommendations = nil
	plan.Normalize()
	for i := range plan.PlannedCrops {
		plan.PlannedCrops[i].Order = i + 1
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCropRefs(ctx, plan); err != nil {
		return nil, err
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, "failed to create rotation plan")
	}
	s.logger.Info("Created rotation plan %s for farmer %s (strategy %s)", plan.ID, plan.FarmerID, plan.Strategy)

	if _, err := s.regenerate(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// checkCropRefs verifies that the current crop and every planned crop are
// well-formed and exist. IDs are rewritten in canonical form.
func (s *RotationService) checkCropRefs(ctx context.Context, plan *domainRotation.Plan) error {
	if plan.CurrentCropID != nil {
		id, err := parseCropRef("current_crop_id", *plan.CurrentCropID)
		if err != nil {
			return err
		}
		plan.CurrentCropID = &id
		if _, err := s.crops.Get(ctx, id); err != nil {
			return appErrors.Wrap(err, "current crop not found")
		}
	}
	for i, pc := range plan.PlannedCrops {
		id, err := parseCropRef("planned_crops.crop_id", pc.CropID)
		if err != nil {
			return err
		}
		plan.PlannedCrops[i].CropID = id
		if _, err := s.crops.Get(ctx, id); err != nil {
			return appErrors.Wrap(err, "planned crop not found")
		}
	}
	return nil
}

// parseCropRef rejects crop references that are not UUIDs
func parseCropRef(field string, id core.ID) (core.ID, error) {
	parsed, err := core.ParseID(id.String())
	if err != nil {
		return "", core.NewValidationError(core.ErrInvalidPlan, field, "must be a valid UUID")
	}
	return parsed, nil
}

// GetPlan returns a plan the caller may access
func (s *RotationService) GetPlan(ctx context.Context, caller Caller, id core.ID) (*domainRotation.Plan, error) {
	plan, err := s.plans.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to fetch rotation plan")
	}
	if !caller.CanAccess(plan) {
		return nil, fmt.Errorf("%w: rotation plan %s", core.ErrForbidden, id)
	}
	return plan, nil
}

// ListPlans returns a farmer's plans, newest first. An empty farmerID lists
// the caller's own plans; other farmers' plans require admin.
func (s *RotationService) ListPlans(ctx context.Context, caller Caller, farmerID core.ID, filter ports.PlanFilter) ([]*domainRotation.Plan, error) {
	if farmerID.IsEmpty() {
		farmerID = caller.ID
	}
	if farmerID.IsEmpty() {
		return nil, appErrors.Unauthorized("caller identity is required")
	}
	if farmerID != caller.ID && !caller.Admin {
		return nil, fmt.Errorf("%w: plans of farmer %s", core.ErrForbidden, farmerID)
	}
	if filter.Status != "" && !domainRotation.ValidPlanStatus(filter.Status) {
		return nil, core.NewValidationError(core.ErrInvalidPlan, "status", "is not a known status")
	}

	plans, err := s.plans.ListByFarmer(ctx, farmerID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to fetch rotation plans")
	}
	return plans, nil
}

// UpdatePlan applies a partial update. Recommendations are regenerated when a
// scoring input changes.
func (s *RotationService) UpdatePlan(ctx context.Context, caller Caller, id core.ID, update PlanUpdate) (*domainRotation.Plan, error) {
	plan, err := s.GetPlan(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	update.apply(plan)
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if update.CurrentCropID != nil && plan.CurrentCropID != nil {
		refs := &domainRotation.Plan{CurrentCropID: plan.CurrentCropID}
		if err := s.checkCropRefs(ctx, refs); err != nil {
			return nil, err
		}
		plan.CurrentCropID = refs.CurrentCropID
	}

	if update.affectsScoring() {
		if _, err := s.regenerate(ctx, plan); err != nil {
			return nil, err
		}
		return plan, nil
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, "failed to update rotation plan")
	}
	return plan, nil
}

// AddCrop appends a crop to the plan's rotation sequence
func (s *RotationService) AddCrop(ctx context.Context, caller Caller, planID core.ID, planned domainRotation.PlannedCrop) (*domainRotation.Plan, error) {
	if planned.Season != "" && !crop.ValidSeason(planned.Season) {
		return nil, core.NewValidationError(core.ErrInvalidPlan, "season", "is not a known season")
	}
	cropID, err := parseCropRef("crop_id", planned.CropID)
	if err != nil {
		return nil, err
	}
	planned.CropID = cropID
	if _, err := s.crops.Get(ctx, cropID); err != nil {
		return nil, appErrors.Wrap(err, "failed to add crop to rotation")
	}

	plan, err := s.GetPlan(ctx, caller, planID)
	if err != nil {
		return nil, err
	}

	planned.Order = len(plan.PlannedCrops) + 1
	plan.PlannedCrops = append(plan.PlannedCrops, planned)
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, "failed to add crop to rotation")
	}
	return plan, nil
}

// ArchivePlan marks a plan archived
func (s *RotationService) ArchivePlan(ctx context.Context, caller Caller, id core.ID) error {
	if _, err := s.GetPlan(ctx, caller, id); err != nil {
		return err
	}
	if err := s.plans.SetStatus(ctx, id, domainRotation.PlanArchived); err != nil {
		return appErrors.Wrap(err, "failed to archive rotation plan")
	}
	s.logger.Info("Archived rotation plan %s", id)
	return nil
}

// GenerateRecommendations reruns the plan's strategy and stores the top
// recommendations on the plan
func (s *RotationService) GenerateRecommendations(ctx context.Context, caller Caller, id core.ID) ([]domainRotation.Recommendation, error) {
	plan, err := s.GetPlan(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.regenerate(ctx, plan)
}

func (s *RotationService) regenerate(ctx context.Context, plan *domainRotation.Plan) ([]domainRotation.Recommendation, error) {
	planCtx, err := s.BuildContext(ctx, plan)
	if err != nil {
		return nil, err
	}

	// each call owns its strategy context
	rc := rotation.NewContext(nil)
	if err := rc.UseKey(plan.Strategy.Executable()); err != nil {
		return nil, err
	}
	scored, err := rc.ExecuteRotation(planCtx)
	if err != nil {
		return nil, err
	}

	plan.Recommendations = rotation.Aggregate(scored, plan.FieldSize)
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, "failed to store recommendations")
	}
	s.logger.Debug("Plan %s: %d recommendations from %d candidates", plan.ID, len(plan.Recommendations), len(planCtx.AvailableCrops))
	return plan.Recommendations, nil
}

// CompareStrategies runs every registered strategy over the plan without
// storing anything
func (s *RotationService) CompareStrategies(ctx context.Context, caller Caller, id core.ID) ([]rotation.Comparison, error) {
	plan, err := s.GetPlan(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	planCtx, err := s.BuildContext(ctx, plan)
	if err != nil {
		return nil, err
	}
	return rotation.Compare(ctx, planCtx)
}

// BuildContext assembles the strategy input for a plan: the active catalog,
// the resolved current crop, and season and climate with configured
// fallbacks
func (s *RotationService) BuildContext(ctx context.Context, plan *domainRotation.Plan) (domainRotation.PlanContext, error) {
	active, err := s.crops.List(ctx, ports.CropFilter{})
	if err != nil {
		return domainRotation.PlanContext{}, appErrors.Wrap(err, "failed to load candidate crops")
	}
	pool := make([]crop.Crop, len(active))
	for i, c := range active {
		pool[i] = *c
	}

	planCtx := domainRotation.PlanContext{
		SoilTestResults: plan.SoilTestResults,
		Climate:         s.climateFor(plan),
		TargetSeason:    s.seasonFor(plan),
		PestHistory:     plan.PestHistory,
		AvailableCrops:  pool,
		FieldSize:       plan.FieldSize,
	}
	if plan.CurrentCropID != nil {
		current, err := s.crops.Get(ctx, *plan.CurrentCropID)
		if err != nil {
			return domainRotation.PlanContext{}, appErrors.Wrap(err, "current crop not found")
		}
		planCtx.CurrentCrop = current
	}
	return planCtx, nil
}

func (s *RotationService) seasonFor(plan *domainRotation.Plan) crop.Season {
	if plan.TargetSeason != "" {
		return plan.TargetSeason
	}
	if len(plan.PlannedCrops) > 0 && plan.PlannedCrops[0].Season != "" {
		return plan.PlannedCrops[0].Season
	}
	return s.defaults.DefaultSeason
}

func (s *RotationService) climateFor(plan *domainRotation.Plan) domainRotation.Climate {
	if plan.Climate == nil {
		return domainRotation.Climate{Rainfall: s.defaults.DefaultRainfall, TempRange: s.defaults.DefaultTempRange}
	}
	climate := *plan.Climate
	if climate.TempRange == "" {
		climate.TempRange = s.defaults.DefaultTempRange
	}
	return climate
}
