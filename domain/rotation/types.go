package rotation

import (
	"math"
	"time"

	"croprotation/domain/core"
	"croprotation/domain/crop"
)

// StrategyKey selects a scoring strategy
type StrategyKey string

const (
	StrategyNutrient StrategyKey = "nutrient"
	StrategyPest     StrategyKey = "pest"
	StrategySeasonal StrategyKey = "seasonal"
	StrategyMixed    StrategyKey = "mixed"
)

// ValidStrategyKey reports whether a plan may carry the key
func ValidStrategyKey(k StrategyKey) bool {
	switch k {
	case StrategyNutrient, StrategyPest, StrategySeasonal, StrategyMixed:
		return true
	}
	return false
}

// Executable maps a plan's strategy key to the strategy that scores it.
// Mixed and unset plans are scored by nutrient balance.
func (k StrategyKey) Executable() StrategyKey {
	switch k {
	case StrategyPest, StrategySeasonal:
		return k
	default:
		return StrategyNutrient
	}
}

// TempRange is a coarse temperature band
type TempRange string

const (
	TempCool     TempRange = "cool"
	TempModerate TempRange = "moderate"
	TempWarm     TempRange = "warm"
)

// ValidTempRange reports whether t is cool, moderate or warm
func ValidTempRange(t TempRange) bool {
	return t == TempCool || t == TempModerate || t == TempWarm
}

// SoilTestResults holds laboratory measurements. A nil field means the
// measurement was not taken.
type SoilTestResults struct {
	Nitrogen      *float64 `json:"nitrogen,omitempty"`       // 0-100
	Phosphorus    *float64 `json:"phosphorus,omitempty"`     // 0-100
	Potassium     *float64 `json:"potassium,omitempty"`      // 0-100
	PH            *float64 `json:"ph,omitempty"`             // 0-14
	OrganicMatter *float64 `json:"organic_matter,omitempty"` // 0-100
}

// Validate checks every present measurement against its range
func (s SoilTestResults) Validate() error {
	checks := []struct {
		field string
		value *float64
		max   float64
	}{
		{"nitrogen", s.Nitrogen, 100},
		{"phosphorus", s.Phosphorus, 100},
		{"potassium", s.Potassium, 100},
		{"ph", s.PH, 14},
		{"organic_matter", s.OrganicMatter, 100},
	}
	for _, c := range checks {
		if c.value != nil && (!isFinite(*c.value) || *c.value < 0 || *c.value > c.max) {
			return core.NewValidationError(core.ErrInvalidPlan, "soil_test_results."+c.field, "out of range")
		}
	}
	return nil
}

// Climate describes expected conditions for the target season
type Climate struct {
	Rainfall  float64   `json:"rainfall"` // mm per season
	TempRange TempRange `json:"temp_range"`
}

// PlanContext is the full input of one strategy run
type PlanContext struct {
	CurrentCrop     *crop.Crop
	SoilTestResults SoilTestResults
	Climate         Climate
	TargetSeason    crop.Season
	PestHistory     bool
	AvailableCrops  []crop.Crop
	FieldSize       float64
}

// ScoredCrop is one strategy output entry
type ScoredCrop struct {
	Crop   crop.Crop `json:"crop"`
	Score  float64   `json:"score"`
	Reason string    `json:"reason"`
}

// Recommendation is a retained, yield-enriched strategy result
type Recommendation struct {
	CropID        core.ID `json:"crop_id"`
	CropName      string  `json:"crop_name"`
	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
	ExpectedYield float64 `json:"expected_yield"`
}

// PlanStatus is the lifecycle state of a rotation plan
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanArchived  PlanStatus = "archived"
)

// ValidPlanStatus reports whether s is a known status
func ValidPlanStatus(s PlanStatus) bool {
	switch s {
	case PlanDraft, PlanActive, PlanCompleted, PlanArchived:
		return true
	}
	return false
}

// FieldUnit is the unit of FieldSize
type FieldUnit string

const (
	UnitAcre    FieldUnit = "acre"
	UnitHectare FieldUnit = "hectare"
)

// PlannedCrop is a crop scheduled in a rotation sequence
type PlannedCrop struct {
	CropID core.ID     `json:"crop_id"`
	Season crop.Season `json:"season,omitempty"`
	Year   int         `json:"year,omitempty"`
	Order  int         `json:"order"`
}

// Plan is a persisted field rotation plan
type Plan struct {
	ID               core.ID          `json:"id"`
	FarmerID         core.ID          `json:"farmer_id"`
	FieldID          string           `json:"field_id"`
	FieldSize        float64          `json:"field_size"`
	Unit             FieldUnit        `json:"unit"`
	CurrentCropID    *core.ID         `json:"current_crop_id,omitempty"`
	SoilTestResults  SoilTestResults  `json:"soil_test_results"`
	Climate          *Climate         `json:"climate,omitempty"`
	TargetSeason     crop.Season      `json:"target_season,omitempty"`
	PestHistory      bool             `json:"pest_history"`
	Strategy         StrategyKey      `json:"rotation_strategy"`
	RotationDuration int              `json:"rotation_duration"`
	Status           PlanStatus       `json:"status"`
	PlannedCrops     []PlannedCrop    `json:"planned_crops"`
	Recommendations  []Recommendation `json:"recommendations"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Plan bounds
const (
	MinFieldSize            = 0.1
	MinRotationDuration     = 1
	MaxRotationDuration     = 10
	DefaultRotationDuration = 3
)

// Normalize fills defaults for unset fields
func (p *Plan) Normalize() {
	if p.Unit == "" {
		p.Unit = UnitHectare
	}
	if p.Strategy == "" {
		p.Strategy = StrategyNutrient
	}
	if p.RotationDuration == 0 {
		p.RotationDuration = DefaultRotationDuration
	}
	if p.Status == "" {
		p.Status = PlanDraft
	}
}

// Validate checks plan fields against their bounds
func (p *Plan) Validate() error {
	if p.FieldID == "" {
		return core.NewValidationError(core.ErrInvalidPlan, "field_id", "is required")
	}
	if !isFinite(p.FieldSize) || p.FieldSize < MinFieldSize {
		return core.NewValidationError(core.ErrInvalidPlan, "field_size", "must be at least 0.1")
	}
	if p.Unit != UnitAcre && p.Unit != UnitHectare {
		return core.NewValidationError(core.ErrInvalidPlan, "unit", "must be acre or hectare")
	}
	if !ValidStrategyKey(p.Strategy) {
		return core.NewValidationError(core.ErrInvalidPlan, "rotation_strategy", "must be nutrient, pest, seasonal or mixed")
	}
	if p.RotationDuration < MinRotationDuration || p.RotationDuration > MaxRotationDuration {
		return core.NewValidationError(core.ErrInvalidPlan, "rotation_duration", "must be between 1 and 10")
	}
	if !ValidPlanStatus(p.Status) {
		return core.NewValidationError(core.ErrInvalidPlan, "status", "is not a known status")
	}
	if p.TargetSeason != "" && !crop.ValidSeason(p.TargetSeason) {
		return core.NewValidationError(core.ErrInvalidPlan, "target_season", "is not a known season")
	}
	if p.Climate != nil {
		if !isFinite(p.Climate.Rainfall) || p.Climate.Rainfall < 0 {
			return core.NewValidationError(core.ErrInvalidPlan, "climate.rainfall", "must not be negative")
		}
		if p.Climate.TempRange != "" && !ValidTempRange(p.Climate.TempRange) {
			return core.NewValidationError(core.ErrInvalidPlan, "climate.temp_range", "must be cool, moderate or warm")
		}
	}
	return p.SoilTestResults.Validate()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
