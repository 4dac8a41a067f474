package ports

import (
	"context"

	"croprotation/domain/core"
	"croprotation/domain/crop"
)

// CropFilter narrows a crop listing. Zero values match everything.
type CropFilter struct {
	Family              crop.Family
	NutrientRequirement crop.NutrientRequirement
	Season              crop.Season
	IncludeInactive     bool
}

// Matches reports whether c passes the filter
func (f CropFilter) Matches(c *crop.Crop) bool {
	if !f.IncludeInactive && !c.IsActive {
		return false
	}
	if f.Family != "" && c.Family != f.Family {
		return false
	}
	if f.NutrientRequirement != "" && c.NutrientRequirement != f.NutrientRequirement {
		return false
	}
	if f.Season != "" && !c.GrowsIn(f.Season) {
		return false
	}
	return true
}

// CropRepository defines the interface for crop catalog operations
type CropRepository interface {
	// List returns crops passing the filter, ordered by name
	List(ctx context.Context, filter CropFilter) ([]*crop.Crop, error)

	// Get retrieves a crop by ID, returning core.ErrCropNotFound when absent
	Get(ctx context.Context, id core.ID) (*crop.Crop, error)

	// GetByName retrieves a crop by case-insensitive name
	GetByName(ctx context.Context, name string) (*crop.Crop, error)

	// Create stores a new crop, returning core.ErrDuplicateCrop on a name clash
	Create(ctx context.Context, c *crop.Crop) error

	// Update replaces a stored crop
	Update(ctx context.Context, c *crop.Crop) error

	// Deactivate soft-deletes a crop
	Deactivate(ctx context.Context, id core.ID) error

	// Search matches active crops by name or scientific name
	Search(ctx context.Context, term string, limit int) ([]*crop.Crop, error)
}
