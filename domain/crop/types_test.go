package crop

import (
	"errors"
	"math"
	"testing"

	"croprotation/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestCropType(t *testing.T) {
	tests := []struct {
		name string
		crop Crop
		want Type
	}{
		{"fixer wins over high demand", Crop{NitrogenFixer: true, NutrientRequirement: NutrientHigh}, TypeNitrogenFixer},
		{"fixer with low demand", Crop{NitrogenFixer: true, NutrientRequirement: NutrientLow}, TypeNitrogenFixer},
		{"high demand", Crop{NutrientRequirement: NutrientHigh}, TypeHeavyFeeder},
		{"low demand", Crop{NutrientRequirement: NutrientLow}, TypeLightFeeder},
		{"medium demand", Crop{NutrientRequirement: NutrientMedium}, TypeModerateFeeder},
		{"unset demand", Crop{}, TypeModerateFeeder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.crop.Type())
		})
	}
}

func validCrop() Crop {
	return Crop{
		Name:                "Corn",
		Family:              FamilyPoaceae,
		NutrientRequirement: NutrientHigh,
		WaterRequirement:    6,
		Season:              []Season{SeasonSpring, SeasonSummer},
		GrowthDuration:      120,
		Acidity:             40,
	}
}

func TestCropValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Crop)
		field  string
	}{
		{"valid", func(c *Crop) {}, ""},
		{"zero water is valid", func(c *Crop) { c.WaterRequirement = 0 }, ""},
		{"water at upper bound", func(c *Crop) { c.WaterRequirement = 10 }, ""},
		{"growth at bounds", func(c *Crop) { c.GrowthDuration = 30 }, ""},
		{"acidity at bounds", func(c *Crop) { c.Acidity = 100 }, ""},
		{"missing name", func(c *Crop) { c.Name = "" }, "name"},
		{"unknown family", func(c *Crop) { c.Family = "Rosaceae" }, "family"},
		{"unknown nutrient", func(c *Crop) { c.NutrientRequirement = "extreme" }, "nutrient_requirement"},
		{"negative water", func(c *Crop) { c.WaterRequirement = -0.5 }, "water_requirement"},
		{"water above range", func(c *Crop) { c.WaterRequirement = 10.5 }, "water_requirement"},
		{"NaN water", func(c *Crop) { c.WaterRequirement = math.NaN() }, "water_requirement"},
		{"infinite water", func(c *Crop) { c.WaterRequirement = math.Inf(1) }, "water_requirement"},
		{"unknown season", func(c *Crop) { c.Season = []Season{"monsoon"} }, "season"},
		{"growth too short", func(c *Crop) { c.GrowthDuration = 29 }, "growth_duration"},
		{"growth too long", func(c *Crop) { c.GrowthDuration = 366 }, "growth_duration"},
		{"negative acidity", func(c *Crop) { c.Acidity = -1 }, "acidity"},
		{"acidity above range", func(c *Crop) { c.Acidity = 101 }, "acidity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCrop()
			tt.mutate(&c)

			err := c.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, core.ErrInvalidCrop))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestCropNormalize(t *testing.T) {
	c := Crop{Name: "  Pea  "}
	c.Normalize()

	assert.Equal(t, "Pea", c.Name)
	assert.Equal(t, FamilyOther, c.Family)
	assert.Equal(t, NutrientMedium, c.NutrientRequirement)
	assert.Equal(t, []Season{SeasonSpring, SeasonSummer}, c.Season)
	assert.Equal(t, 90, c.GrowthDuration)
	assert.Equal(t, []string{"loamy"}, c.SoilTypes)
	assert.Equal(t, 0.0, c.WaterRequirement)
	assert.NoError(t, c.Validate())
}

func TestSeasonsRoundTrip(t *testing.T) {
	tests := []struct {
		raw    string
		want   []Season
		joined string
	}{
		{"spring,summer", []Season{SeasonSpring, SeasonSummer}, "spring,summer"},
		{" Autumn , WINTER ", []Season{SeasonAutumn, SeasonWinter}, "autumn,winter"},
		{"summer,,", []Season{SeasonSummer}, "summer"},
		{"", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseSeasons(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.joined, JoinSeasons(got))
			assert.Equal(t, got, ParseSeasons(JoinSeasons(got)))
		})
	}
}

func TestGrowsInAndCompatibility(t *testing.T) {
	c := validCrop()
	c.Compatibility = []Compatibility{{CropID: "soy", Score: 8}}

	assert.True(t, c.GrowsIn(SeasonSummer))
	assert.False(t, c.GrowsIn(SeasonWinter))

	entry, ok := c.CompatibilityWith("soy")
	assert.True(t, ok)
	assert.Equal(t, 8.0, entry.Score)

	_, ok = c.CompatibilityWith("wheat")
	assert.False(t, ok)
}
