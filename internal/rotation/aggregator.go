package rotation

import (
	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
)

// YieldMultiplier is the expected yield per unit of field size for a nutrient
// requirement
func YieldMultiplier(req crop.NutrientRequirement) float64 {
	if m, ok := YIELD_MULTIPLIERS[req]; ok {
		return m
	}
	return DEFAULT_YIELD_MULTIPLIER
}

// ExpectedYield estimates the harvest of a crop over the field
func ExpectedYield(c crop.Crop, fieldSize float64) float64 {
	return fieldSize * YieldMultiplier(c.NutrientRequirement)
}

// Aggregate keeps the first TOP_RECOMMENDATIONS entries of an already ranked
// strategy output and attaches expected yield. The input order is kept as is.
func Aggregate(scored []domainRotation.ScoredCrop, fieldSize float64) []domainRotation.Recommendation {
	n := min(len(scored), TOP_RECOMMENDATIONS)
	out := make([]domainRotation.Recommendation, 0, n)
	for _, s := range scored[:n] {
		out = append(out, domainRotation.Recommendation{
			CropID:        s.Crop.ID,
			CropName:      s.Crop.Name,
			Score:         s.Score,
			Reason:        s.Reason,
			ExpectedYield: ExpectedYield(s.Crop, fieldSize),
		})
	}
	return out
}
