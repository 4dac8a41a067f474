package crop

import (
	"math"
	"slices"
	"strings"
	"time"

	"croprotation/domain/core"
)

// Family is the taxonomic grouping used to penalize repeated planting
type Family string

const (
	FamilyPoaceae       Family = "Poaceae"
	FamilyFabaceae      Family = "Fabaceae"
	FamilySolanaceae    Family = "Solanaceae"
	FamilyBrassicaceae  Family = "Brassicaceae"
	FamilyCucurbitaceae Family = "Cucurbitaceae"
	FamilyAsteraceae    Family = "Asteraceae"
	FamilyOther         Family = "Other"
)

// Families lists every accepted family in catalog order
var Families = []Family{
	FamilyPoaceae,
	FamilyFabaceae,
	FamilySolanaceae,
	FamilyBrassicaceae,
	FamilyCucurbitaceae,
	FamilyAsteraceae,
	FamilyOther,
}

// NutrientRequirement is how heavily a crop draws on soil nutrients
type NutrientRequirement string

const (
	NutrientLow    NutrientRequirement = "low"
	NutrientMedium NutrientRequirement = "medium"
	NutrientHigh   NutrientRequirement = "high"
)

// Season is a growing season
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// Seasons lists every accepted season in calendar order
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}

// Type is the growth habit derived from nutrient demand and nitrogen fixing
type Type string

const (
	TypeNitrogenFixer  Type = "nitrogen-fixer"
	TypeHeavyFeeder    Type = "heavy-feeder"
	TypeLightFeeder    Type = "light-feeder"
	TypeModerateFeeder Type = "moderate-feeder"
)

// Catalog bounds
const (
	MinWaterRequirement = 0
	MaxWaterRequirement = 10
	MinGrowthDuration   = 30
	MaxGrowthDuration   = 365
	MinAcidity          = 0
	MaxAcidity          = 100
)

// Compatibility is a pairwise affinity towards a preceding crop.
// Score is on a 0-10 scale where 5 is neutral.
type Compatibility struct {
	CropID core.ID `json:"crop_id"`
	Score  float64 `json:"score"`
}

// Crop is a catalog entry consumed read-only by the rotation engine
type Crop struct {
	ID                  core.ID             `json:"id"`
	Name                string              `json:"name"`
	ScientificName      string              `json:"scientific_name,omitempty"`
	Family              Family              `json:"family"`
	NutrientRequirement NutrientRequirement `json:"nutrient_requirement"`
	WaterRequirement    float64             `json:"water_requirement"` // 0-10 scale
	Season              []Season            `json:"season"`
	GrowthDuration      int                 `json:"growth_duration"` // days
	NitrogenFixer       bool                `json:"nitrogen_fixer"`
	SoilTypes           []string            `json:"soil_types,omitempty"`
	IsActive            bool                `json:"is_active"`
	Acidity             int                 `json:"acidity"`
	OwnerEmail          string              `json:"owner_email,omitempty"`
	Compatibility       []Compatibility     `json:"compatibility,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// Type derives the growth habit of the crop
func (c *Crop) Type() Type {
	if c.NitrogenFixer {
		return TypeNitrogenFixer
	}
	switch c.NutrientRequirement {
	case NutrientHigh:
		return TypeHeavyFeeder
	case NutrientLow:
		return TypeLightFeeder
	default:
		return TypeModerateFeeder
	}
}

// GrowsIn reports whether the crop can be planted in the given season
func (c *Crop) GrowsIn(season Season) bool {
	return slices.Contains(c.Season, season)
}

// CompatibilityWith returns the affinity entry for a preceding crop, if any
func (c *Crop) CompatibilityWith(previous core.ID) (Compatibility, bool) {
	for _, entry := range c.Compatibility {
		if entry.CropID == previous {
			return entry, true
		}
	}
	return Compatibility{}, false
}

// Normalize trims the name and fills catalog defaults for unset fields
func (c *Crop) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.ScientificName = strings.TrimSpace(c.ScientificName)
	if c.Family == "" {
		c.Family = FamilyOther
	}
	if c.NutrientRequirement == "" {
		c.NutrientRequirement = NutrientMedium
	}
	if len(c.Season) == 0 {
		c.Season = []Season{SeasonSpring, SeasonSummer}
	}
	if c.GrowthDuration == 0 {
		c.GrowthDuration = 90
	}
	if len(c.SoilTypes) == 0 {
		c.SoilTypes = []string{"loamy"}
	}
}

// Validate checks enum membership and numeric ranges
func (c *Crop) Validate() error {
	if c.Name == "" {
		return core.NewValidationError(core.ErrInvalidCrop, "name", "is required")
	}
	if !slices.Contains(Families, c.Family) {
		return core.NewValidationError(core.ErrInvalidCrop, "family", "is not a known crop family")
	}
	if !ValidNutrientRequirement(c.NutrientRequirement) {
		return core.NewValidationError(core.ErrInvalidCrop, "nutrient_requirement", "must be low, medium or high")
	}
	if math.IsNaN(c.WaterRequirement) || math.IsInf(c.WaterRequirement, 0) ||
		c.WaterRequirement < MinWaterRequirement || c.WaterRequirement > MaxWaterRequirement {
		return core.NewValidationError(core.ErrInvalidCrop, "water_requirement", "must be between 0 and 10")
	}
	for _, s := range c.Season {
		if !ValidSeason(s) {
			return core.NewValidationError(core.ErrInvalidCrop, "season", "contains unknown season "+string(s))
		}
	}
	if c.GrowthDuration < MinGrowthDuration || c.GrowthDuration > MaxGrowthDuration {
		return core.NewValidationError(core.ErrInvalidCrop, "growth_duration", "must be between 30 and 365 days")
	}
	if c.Acidity < MinAcidity || c.Acidity > MaxAcidity {
		return core.NewValidationError(core.ErrInvalidCrop, "acidity", "must be between 0 and 100")
	}
	return nil
}

// ValidSeason reports whether s is one of the four seasons
func ValidSeason(s Season) bool {
	return slices.Contains(Seasons, s)
}

// ValidNutrientRequirement reports whether n is low, medium or high
func ValidNutrientRequirement(n NutrientRequirement) bool {
	return n == NutrientLow || n == NutrientMedium || n == NutrientHigh
}

// ParseSeasons splits a comma-delimited season list, dropping blanks
func ParseSeasons(raw string) []Season {
	var seasons []Season
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			seasons = append(seasons, Season(part))
		}
	}
	return seasons
}

// JoinSeasons renders seasons as a comma-delimited list
func JoinSeasons(seasons []Season) string {
	parts := make([]string, len(seasons))
	for i, s := range seasons {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
