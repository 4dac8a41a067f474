package rotation

import (
	"math"
	"slices"

	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
)

// PestManagementStrategy breaks pest and disease cycles through crop diversity
type PestManagementStrategy struct{}

func (s *PestManagementStrategy) Name() string { return "PestManagementStrategy" }

func (s *PestManagementStrategy) Description() string {
	return "Focuses on breaking pest and disease cycles through crop diversity"
}

// CalculateRotation scores each candidate by how well it disrupts pest carryover.
// Scores never drop below PEST_SCORE_FLOOR.
func (s *PestManagementStrategy) CalculateRotation(plan domainRotation.PlanContext) []domainRotation.ScoredCrop {
	scored := make([]domainRotation.ScoredCrop, 0, len(plan.AvailableCrops))

	for _, candidate := range plan.AvailableCrops {
		score := PEST_BASE_SCORE
		current := plan.CurrentCrop

		if current != nil && candidate.Family == current.Family {
			score -= PEST_SAME_FAMILY_PENALTY
		}

		if plan.PestHistory && isPestProne(candidate.Family) {
			score -= PEST_PRONE_FAMILY_PENALTY
		}

		if current != nil && candidate.Family != current.Family {
			score += PEST_FAMILY_CHANGE_BONUS
		}

		score += habitChangeBonus(current, candidate)

		score = math.Max(PEST_SCORE_FLOOR, score)
		scored = append(scored, domainRotation.ScoredCrop{
			Crop:   candidate,
			Score:  score,
			Reason: pestReason(score),
		})
	}

	return rank(scored)
}

func isPestProne(family crop.Family) bool {
	return slices.Contains(PEST_PRONE_FAMILIES, family)
}

// habitChangeBonus rewards a different growth habit, which disrupts pest cycles
func habitChangeBonus(current *crop.Crop, next crop.Crop) float64 {
	if current == nil {
		return 0
	}
	if current.Type() != next.Type() {
		return PEST_HABIT_CHANGE_BONUS
	}
	return 0
}

func pestReason(score float64) string {
	switch {
	case score >= PEST_BAND_EXCELLENT:
		return REASON_PEST_EXCELLENT
	case score >= PEST_BAND_GOOD:
		return REASON_PEST_GOOD
	case score >= PEST_BAND_MODERATE:
		return REASON_PEST_MODERATE
	default:
		return REASON_PEST_CONSIDER_OTHER
	}
}
