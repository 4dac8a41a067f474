package rotation

import (
	"cmp"
	"slices"

	domainRotation "croprotation/domain/rotation"
)

// Strategy is the contract every rotation scoring algorithm satisfies.
// CalculateRotation must score every candidate exactly once and return the
// results ordered by score descending, keeping candidate order on ties.
type Strategy interface {
	CalculateRotation(plan domainRotation.PlanContext) []domainRotation.ScoredCrop
	Name() string
	Description() string
}

// Info describes a registered strategy for listing
type Info struct {
	Key         domainRotation.StrategyKey `json:"key"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
}

// rank sorts scored crops by score descending. The sort is stable so equal
// scores keep the order of the candidate pool.
func rank(scored []domainRotation.ScoredCrop) []domainRotation.ScoredCrop {
	slices.SortStableFunc(scored, func(a, b domainRotation.ScoredCrop) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return scored
}
