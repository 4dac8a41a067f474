package rotation

import (
	"fmt"
	"testing"

	"croprotation/domain/core"
	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYieldMultiplier(t *testing.T) {
	tests := []struct {
		req  crop.NutrientRequirement
		want float64
	}{
		{crop.NutrientLow, 2},
		{crop.NutrientMedium, 4},
		{crop.NutrientHigh, 6},
		{"", 3},
		{"extreme", 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.req), func(t *testing.T) {
			assert.Equal(t, tt.want, YieldMultiplier(tt.req))
		})
	}
}

func TestAggregate_TruncatesWithoutResorting(t *testing.T) {
	// Deliberately out of score order: aggregation must not reorder.
	scores := []float64{1, 9, 3, 7, 5, 8, 2}
	scored := make([]domainRotation.ScoredCrop, len(scores))
	for i, s := range scores {
		scored[i] = domainRotation.ScoredCrop{
			Crop:   crop.Crop{ID: core.ID(fmt.Sprintf("c%d", i)), Name: fmt.Sprintf("crop-%d", i), NutrientRequirement: crop.NutrientMedium},
			Score:  s,
			Reason: "r",
		}
	}

	recs := Aggregate(scored, 2.5)

	require.Len(t, recs, TOP_RECOMMENDATIONS)
	for i, rec := range recs {
		assert.Equal(t, scored[i].Crop.ID, rec.CropID)
		assert.Equal(t, scored[i].Crop.Name, rec.CropName)
		assert.Equal(t, scores[i], rec.Score)
		assert.Equal(t, 10.0, rec.ExpectedYield)
	}
}

func TestAggregate_ShortAndEmptyInput(t *testing.T) {
	scored := []domainRotation.ScoredCrop{
		{Crop: crop.Crop{ID: "a", NutrientRequirement: crop.NutrientLow}, Score: 4},
		{Crop: crop.Crop{ID: "b", NutrientRequirement: crop.NutrientHigh}, Score: 2},
	}

	recs := Aggregate(scored, 10)
	require.Len(t, recs, 2)
	assert.Equal(t, 20.0, recs[0].ExpectedYield)
	assert.Equal(t, 60.0, recs[1].ExpectedYield)

	assert.Empty(t, Aggregate(nil, 10))
}

func TestAggregate_Idempotent(t *testing.T) {
	scored := (&NutrientBasedStrategy{}).CalculateRotation(domainRotation.PlanContext{
		SoilTestResults: domainRotation.SoilTestResults{Nitrogen: f64(12)},
		AvailableCrops: []crop.Crop{
			{ID: "1", Name: "Pea", NutrientRequirement: crop.NutrientLow, NitrogenFixer: true},
			{ID: "2", Name: "Corn", NutrientRequirement: crop.NutrientHigh},
			{ID: "3", Name: "Beet", NutrientRequirement: crop.NutrientMedium},
		},
	})

	first := Aggregate(scored, 3.2)
	second := Aggregate(scored, 3.2)

	assert.Equal(t, first, second)
}
