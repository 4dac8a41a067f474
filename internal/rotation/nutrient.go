package rotation

import (
	"strings"

	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
)

// NutrientBasedStrategy balances soil nutrients through crop sequencing
type NutrientBasedStrategy struct{}

// Deficiencies are the soil flags derived from a soil test.
// Potassium is tracked but does not influence any score yet.
type Deficiencies struct {
	Nitrogen      bool `json:"nitrogen"`
	Phosphorus    bool `json:"phosphorus"`
	Potassium     bool `json:"potassium"`
	OrganicMatter bool `json:"organic_matter"`
}

// AnalyzeSoil thresholds soil test results into deficiency flags. A missing
// measurement is never deficient.
func AnalyzeSoil(results domainRotation.SoilTestResults) Deficiencies {
	return Deficiencies{
		Nitrogen:      below(results.Nitrogen, NITROGEN_DEFICIENT_BELOW),
		Phosphorus:    below(results.Phosphorus, PHOSPHORUS_DEFICIENT_BELOW),
		Potassium:     below(results.Potassium, POTASSIUM_DEFICIENT_BELOW),
		OrganicMatter: below(results.OrganicMatter, ORGANIC_MATTER_DEFICIENT_BELOW),
	}
}

func below(v *float64, threshold float64) bool {
	return v != nil && *v < threshold
}

func (s *NutrientBasedStrategy) Name() string { return "NutrientBasedStrategy" }

func (s *NutrientBasedStrategy) Description() string {
	return "Focuses on balancing soil nutrients through strategic crop sequencing"
}

// CalculateRotation scores each candidate against the soil deficiencies
func (s *NutrientBasedStrategy) CalculateRotation(plan domainRotation.PlanContext) []domainRotation.ScoredCrop {
	deficiencies := AnalyzeSoil(plan.SoilTestResults)
	scored := make([]domainRotation.ScoredCrop, 0, len(plan.AvailableCrops))

	for _, candidate := range plan.AvailableCrops {
		score := 0.0

		if plan.CurrentCrop != nil && candidate.Family == plan.CurrentCrop.Family {
			score -= NUTRIENT_SAME_FAMILY_PENALTY
		}

		score += matchNutrientNeeds(candidate, deficiencies)

		if deficiencies.Nitrogen && candidate.NitrogenFixer {
			score += NUTRIENT_NITROGEN_FIXER_BONUS
		}

		score += compatibilityBonus(plan.CurrentCrop, candidate)

		scored = append(scored, domainRotation.ScoredCrop{
			Crop:   candidate,
			Score:  score,
			Reason: nutrientReason(candidate, score, deficiencies),
		})
	}

	return rank(scored)
}

func matchNutrientNeeds(c crop.Crop, d Deficiencies) float64 {
	score := 0.0
	if d.Nitrogen && c.NutrientRequirement == crop.NutrientLow {
		score += NUTRIENT_LOW_DEMAND_BONUS
	}
	if d.Phosphorus && c.NutrientRequirement != crop.NutrientHigh {
		score += NUTRIENT_PHOSPHORUS_BONUS
	}
	return score
}

// compatibilityBonus centres the 0-10 affinity score on neutral
func compatibilityBonus(current *crop.Crop, next crop.Crop) float64 {
	if current == nil {
		return 0
	}
	entry, ok := next.CompatibilityWith(current.ID)
	if !ok {
		return 0
	}
	return entry.Score - COMPATIBILITY_NEUTRAL_SCORE
}

func nutrientReason(c crop.Crop, score float64, d Deficiencies) string {
	var reasons []string
	if c.NitrogenFixer && d.Nitrogen {
		reasons = append(reasons, REASON_NITROGEN_FIXER_NEEDED)
	}
	if score > 0 {
		reasons = append(reasons, REASON_GOOD_NUTRIENT_MATCH)
	}
	if len(reasons) == 0 {
		return REASON_MODERATE_NUTRIENT_MATCH
	}
	return strings.Join(reasons, ", ")
}
