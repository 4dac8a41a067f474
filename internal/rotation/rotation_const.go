package rotation

// rotation_const.go
//
// Scoring thresholds and weights for the rotation strategies. Scores are only
// comparable within a single strategy run.

import (
	"croprotation/domain/crop"
)

// ============================================================================
// 1. NUTRIENT - soil deficiency flags and weights
// ============================================================================

const (
	// Deficiency thresholds on the 0-100 soil test scale
	NITROGEN_DEFICIENT_BELOW       = 30.0
	PHOSPHORUS_DEFICIENT_BELOW     = 20.0
	POTASSIUM_DEFICIENT_BELOW      = 25.0
	ORGANIC_MATTER_DEFICIENT_BELOW = 3.0

	NUTRIENT_SAME_FAMILY_PENALTY   = 3.0
	NUTRIENT_LOW_DEMAND_BONUS      = 2.0
	NUTRIENT_PHOSPHORUS_BONUS      = 1.0
	NUTRIENT_NITROGEN_FIXER_BONUS  = 2.0
	COMPATIBILITY_NEUTRAL_SCORE    = 5.0
	REASON_NITROGEN_FIXER_NEEDED   = "Nitrogen fixing crop needed"
	REASON_GOOD_NUTRIENT_MATCH     = "Good nutrient match"
	REASON_MODERATE_NUTRIENT_MATCH = "Moderate match"
)

// ============================================================================
// 2. PEST - family carryover and habit disruption
// ============================================================================

const (
	PEST_BASE_SCORE            = 10.0
	PEST_SAME_FAMILY_PENALTY   = 8.0
	PEST_PRONE_FAMILY_PENALTY  = 4.0
	PEST_FAMILY_CHANGE_BONUS   = 3.0
	PEST_HABIT_CHANGE_BONUS    = 2.0
	PEST_SCORE_FLOOR           = 0.0
	PEST_BAND_EXCELLENT        = 8.0
	PEST_BAND_GOOD             = 6.0
	PEST_BAND_MODERATE         = 4.0
	REASON_PEST_EXCELLENT      = "Excellent pest cycle disruption"
	REASON_PEST_GOOD           = "Good pest management choice"
	REASON_PEST_MODERATE       = "Moderate pest control"
	REASON_PEST_CONSIDER_OTHER = "Consider alternative for better pest control"
)

// PEST_PRONE_FAMILIES carry pests across seasons when pest history exists
var PEST_PRONE_FAMILIES = []crop.Family{crop.FamilySolanaceae, crop.FamilyBrassicaceae}

// ============================================================================
// 3. SEASONAL - season fit, climate, maturity and water
// ============================================================================

const (
	SEASON_MATCH_BONUS           = 5.0
	CLIMATE_MATCH_BONUS          = 2.0
	SEASON_LENGTH_DAYS           = 90
	MATURES_IN_SEASON_BONUS      = 2.0
	LATE_MATURITY_PENALTY        = 1.0
	WATER_MATCH_BONUS            = 3.0
	EXCELLENT_SEASONAL_ABOVE     = 7.0
	REASON_SEASONAL_EXCELLENT    = "Excellent seasonal match"
	REASON_SEASONAL_UNKNOWN      = "Seasonal suitability unknown"
	WATER_LOW_MAX_REQUIREMENT    = 3.0
	WATER_MEDIUM_MAX_REQUIREMENT = 7.0
)

// WaterBand is a coarse water demand class
type WaterBand string

const (
	WaterLow    WaterBand = "low"
	WaterMedium WaterBand = "medium"
	WaterHigh   WaterBand = "high"
)

// rainfallRange is an ideal seasonal rainfall interval in mm. Hi is exclusive
// unless inclusiveHi is set.
type rainfallRange struct {
	lo, hi      float64
	inclusiveHi bool
}

func (r rainfallRange) contains(mm float64) bool {
	if mm < r.lo {
		return false
	}
	if r.inclusiveHi {
		return mm <= r.hi
	}
	return mm < r.hi
}

// IDEAL_RAINFALL maps each water band to its ideal rainfall interval
var IDEAL_RAINFALL = map[WaterBand]rainfallRange{
	WaterLow:    {lo: 0, hi: 300},
	WaterMedium: {lo: 300, hi: 600},
	WaterHigh:   {lo: 600, hi: 1000, inclusiveHi: true},
}

// ============================================================================
// 4. AGGREGATION - truncation and yield
// ============================================================================

const (
	// TOP_RECOMMENDATIONS is how many ranked entries survive aggregation
	TOP_RECOMMENDATIONS = 5

	// DEFAULT_YIELD_MULTIPLIER applies to unrecognized nutrient requirements
	DEFAULT_YIELD_MULTIPLIER = 3.0
)

// YIELD_MULTIPLIERS is expected yield per unit of field size
var YIELD_MULTIPLIERS = map[crop.NutrientRequirement]float64{
	crop.NutrientLow:    2,
	crop.NutrientMedium: 4,
	crop.NutrientHigh:   6,
}
