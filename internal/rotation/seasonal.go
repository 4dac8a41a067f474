package rotation

import (
	"fmt"
	"strings"

	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
)

// SeasonalStrategy matches crops to seasonal conditions and climate
type SeasonalStrategy struct{}

func (s *SeasonalStrategy) Name() string { return "SeasonalStrategy" }

func (s *SeasonalStrategy) Description() string {
	return "Focuses on matching crops to seasonal conditions and climate"
}

// CalculateRotation scores each candidate against the target season and climate
func (s *SeasonalStrategy) CalculateRotation(plan domainRotation.PlanContext) []domainRotation.ScoredCrop {
	scored := make([]domainRotation.ScoredCrop, 0, len(plan.AvailableCrops))

	for _, candidate := range plan.AvailableCrops {
		score := 0.0
		inSeason := candidate.GrowsIn(plan.TargetSeason)

		if inSeason {
			score += SEASON_MATCH_BONUS
		}

		score += climateSuitability(candidate, plan.Climate)
		score += growthDurationFit(candidate)

		if WaterBandFor(candidate.WaterRequirement).idealRainfall().contains(plan.Climate.Rainfall) {
			score += WATER_MATCH_BONUS
		}

		scored = append(scored, domainRotation.ScoredCrop{
			Crop:   candidate,
			Score:  score,
			Reason: seasonalReason(inSeason, score, plan.TargetSeason),
		})
	}

	return rank(scored)
}

// climateSuitability only knows that grasses do well in moderate temperatures
func climateSuitability(c crop.Crop, climate domainRotation.Climate) float64 {
	if c.Family == crop.FamilyPoaceae && climate.TempRange == domainRotation.TempModerate {
		return CLIMATE_MATCH_BONUS
	}
	return 0
}

// growthDurationFit checks the crop matures within the fixed season length
func growthDurationFit(c crop.Crop) float64 {
	if c.GrowthDuration <= SEASON_LENGTH_DAYS {
		return MATURES_IN_SEASON_BONUS
	}
	return -LATE_MATURITY_PENALTY
}

// WaterBandFor classifies a 0-10 water requirement
func WaterBandFor(requirement float64) WaterBand {
	switch {
	case requirement <= WATER_LOW_MAX_REQUIREMENT:
		return WaterLow
	case requirement <= WATER_MEDIUM_MAX_REQUIREMENT:
		return WaterMedium
	default:
		return WaterHigh
	}
}

func (b WaterBand) idealRainfall() rainfallRange {
	return IDEAL_RAINFALL[b]
}

func seasonalReason(inSeason bool, score float64, season crop.Season) string {
	var reasons []string
	if inSeason {
		reasons = append(reasons, fmt.Sprintf("Suitable for %s", season))
	}
	if score > EXCELLENT_SEASONAL_ABOVE {
		reasons = append(reasons, REASON_SEASONAL_EXCELLENT)
	}
	if len(reasons) == 0 {
		return REASON_SEASONAL_UNKNOWN
	}
	return strings.Join(reasons, ", ")
}
