package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"croprotation/domain/core"
	"croprotation/domain/crop"
	"croprotation/internal"
	appErrors "croprotation/internal/errors"
	"croprotation/internal/soil"
	"croprotation/ports"
)

const (
	SEARCH_LIMIT            = 10
	MIN_COMPATIBILITY_SCORE = 6.0
)

// CropService manages the crop catalog
type CropService struct {
	crops   ports.CropRepository
	matcher *soil.Matcher
	logger  *internal.Logger
}

func NewCropService(crops ports.CropRepository, matcher *soil.Matcher) *CropService {
	return &CropService{
		crops:   crops,
		matcher: matcher,
		logger:  internal.DefaultLogger.With("crops"),
	}
}

// ListCrops returns active crops matching the filter, ordered by name
func (s *CropService) ListCrops(ctx context.Context, filter ports.CropFilter) ([]*crop.Crop, error) {
	if filter.Family != "" && !slices.Contains(crop.Families, filter.Family) {
		return nil, core.NewValidationError(core.ErrInvalidCrop, "family", "is not a known crop family")
	}
	if filter.NutrientRequirement != "" && !crop.ValidNutrientRequirement(filter.NutrientRequirement) {
		return nil, core.NewValidationError(core.ErrInvalidCrop, "nutrient_requirement", "must be low, medium or high")
	}
	if filter.Season != "" && !crop.ValidSeason(filter.Season) {
		return nil, core.NewValidationError(core.ErrInvalidCrop, "season", "is not a known season")
	}

	crops, err := s.crops.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to fetch crops")
	}
	return crops, nil
}

// GetCrop returns a crop by ID
func (s *CropService) GetCrop(ctx context.Context, id core.ID) (*crop.Crop, error) {
	c, err := s.crops.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to fetch crop")
	}
	return c, nil
}

// CreateCrop normalizes, validates and stores a new active crop
func (s *CropService) CreateCrop(ctx context.Context, c *crop.Crop) (*crop.Crop, error) {
	c.ID = ""
	c.IsActive = true
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.crops.GetByName(ctx, c.Name); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrDuplicateCrop, c.Name)
	} else if err != nil && !core.IsNotFoundError(err) {
		return nil, appErrors.Wrap(err, "failed to create crop")
	}

	if err := s.crops.Create(ctx, c); err != nil {
		return nil, appErrors.Wrap(err, "failed to create crop")
	}
	s.logger.Info("Created crop %s (%s)", c.Name, c.ID)
	return c, nil
}

// UpdateCrop replaces the editable fields of a crop. Activity state and
// ownership are kept from the stored record.
func (s *CropService) UpdateCrop(ctx context.Context, id core.ID, c *crop.Crop) (*crop.Crop, error) {
	existing, err := s.crops.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to update crop")
	}

	c.ID = existing.ID
	c.IsActive = existing.IsActive
	c.CreatedAt = existing.CreatedAt
	if c.OwnerEmail == "" {
		c.OwnerEmail = existing.OwnerEmail
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.crops.Update(ctx, c); err != nil {
		return nil, appErrors.Wrap(err, "failed to update crop")
	}
	return c, nil
}

// DeleteCrop soft-deletes a crop
func (s *CropService) DeleteCrop(ctx context.Context, id core.ID) error {
	if err := s.crops.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, "failed to delete crop")
	}
	s.logger.Info("Deactivated crop %s", id)
	return nil
}

// CropsByFamily returns the active crops of one family
func (s *CropService) CropsByFamily(ctx context.Context, family crop.Family) ([]*crop.Crop, error) {
	for _, f := range crop.Families {
		if strings.EqualFold(string(f), string(family)) {
			return s.ListCrops(ctx, ports.CropFilter{Family: f})
		}
	}
	return nil, core.NewValidationError(core.ErrInvalidCrop, "family", "is not a known crop family")
}

// SearchCrops matches active crops by name or scientific name
func (s *CropService) SearchCrops(ctx context.Context, term string) ([]*crop.Crop, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, core.NewValidationError(core.ErrInvalidCrop, "q", "search term is required")
	}
	crops, err := s.crops.Search(ctx, term, SEARCH_LIMIT)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to search crops")
	}
	return crops, nil
}

// CompatibleCrops lists active crops that follow the given crop well: crops
// whose compatibility entry for it scores at least MIN_COMPATIBILITY_SCORE,
// and, after a heavy feeder, nitrogen fixers of another family.
func (s *CropService) CompatibleCrops(ctx context.Context, id core.ID) ([]*crop.Crop, error) {
	base, err := s.crops.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get compatible crops")
	}
	candidates, err := s.crops.List(ctx, ports.CropFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to get compatible crops")
	}

	heavyFeeder := base.Type() == crop.TypeHeavyFeeder
	var result []*crop.Crop
	for _, c := range candidates {
		if c.ID == base.ID {
			continue
		}
		if entry, ok := c.CompatibilityWith(base.ID); ok && entry.Score >= MIN_COMPATIBILITY_SCORE {
			result = append(result, c)
			continue
		}
		if heavyFeeder && c.NitrogenFixer && c.Family != base.Family {
			result = append(result, c)
		}
	}
	slices.SortFunc(result, func(a, b *crop.Crop) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return result, nil
}

// SoilMatch checks a crop's acidity against the current soil threshold
func (s *CropService) SoilMatch(ctx context.Context, id core.ID) (soil.Result, error) {
	c, err := s.crops.Get(ctx, id)
	if err != nil {
		return soil.Result{}, appErrors.Wrap(err, "failed to match crop to soil")
	}
	return s.matcher.CheckCrop(*c), nil
}

// ImportResult summarizes a catalog import
type ImportResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
	Failed  []string `json:"failed"`
}

// ImportCatalog creates every crop not already in the catalog. Existing names
// are skipped; invalid rows are reported and do not stop the import.
func (s *CropService) ImportCatalog(ctx context.Context, crops []crop.Crop) (*ImportResult, error) {
	result := &ImportResult{}
	for i := range crops {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		c := crops[i]
		_, err := s.CreateCrop(ctx, &c)
		switch {
		case err == nil:
			result.Created = append(result.Created, c.Name)
		case errors.Is(err, core.ErrDuplicateCrop):
			result.Skipped = append(result.Skipped, c.Name)
		case core.IsValidationError(err):
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", c.Name, err))
		default:
			return result, err
		}
	}

	s.logger.Info("Catalog import: %d created, %d skipped, %d failed",
		len(result.Created), len(result.Skipped), len(result.Failed))
	return result, nil
}
