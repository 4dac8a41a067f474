package rotation

import (
	"context"
	"testing"

	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	summary, err := Summarize([]domainRotation.ScoredCrop{{Score: 15}, {Score: 5}, {Score: 0}, {Score: 10}})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Count)
	assert.InDelta(t, 7.5, summary.Mean, 1e-9)
	assert.InDelta(t, 7.5, summary.Median, 1e-9)
	assert.InDelta(t, 5.5901699, summary.StdDev, 1e-6)
	assert.Equal(t, 0.0, summary.Min)
	assert.Equal(t, 15.0, summary.Max)

	empty, err := Summarize(nil)
	require.NoError(t, err)
	assert.Equal(t, ScoreSummary{}, empty)
}

func TestCompare_RunsEveryStrategy(t *testing.T) {
	plan := domainRotation.PlanContext{
		CurrentCrop:  &crop.Crop{ID: "cur", Family: crop.FamilySolanaceae, NutrientRequirement: crop.NutrientHigh},
		PestHistory:  true,
		TargetSeason: crop.SeasonSummer,
		Climate:      domainRotation.Climate{Rainfall: 500, TempRange: domainRotation.TempModerate},
		FieldSize:    2,
		AvailableCrops: []crop.Crop{
			{ID: "1", Name: "Tomato", Family: crop.FamilySolanaceae, NutrientRequirement: crop.NutrientHigh, Season: []crop.Season{crop.SeasonSummer}, GrowthDuration: 80, WaterRequirement: 6},
			{ID: "2", Name: "Corn", Family: crop.FamilyPoaceae, NutrientRequirement: crop.NutrientMedium, Season: []crop.Season{crop.SeasonSummer}, GrowthDuration: 100, WaterRequirement: 6},
		},
	}

	results, err := Compare(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, domainRotation.StrategyNutrient, results[0].Strategy.Key)
	assert.Equal(t, domainRotation.StrategyPest, results[1].Strategy.Key)
	assert.Equal(t, domainRotation.StrategySeasonal, results[2].Strategy.Key)

	pest := results[1]
	require.Len(t, pest.Recommendations, 2)
	assert.Equal(t, "Corn", pest.Recommendations[0].CropName)
	assert.Equal(t, 8.0, pest.Recommendations[0].ExpectedYield)
	assert.Equal(t, 2, pest.Summary.Count)
	assert.Equal(t, 15.0, pest.Summary.Max)
	assert.Equal(t, 0.0, pest.Summary.Min)
}

func TestCompare_EmptyPool(t *testing.T) {
	results, err := Compare(context.Background(), domainRotation.PlanContext{FieldSize: 1})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Empty(t, r.Recommendations)
		assert.Equal(t, ScoreSummary{}, r.Summary)
	}
}

func TestCompare_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compare(ctx, domainRotation.PlanContext{})
	assert.ErrorIs(t, err, context.Canceled)
}
