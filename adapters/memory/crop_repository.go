package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"croprotation/domain/core"
	"croprotation/domain/crop"
	"croprotation/ports"
)

// CropRepository is an in-memory crop catalog used in demo mode and tests
type CropRepository struct {
	mu    sync.RWMutex
	crops map[core.ID]*crop.Crop
}

// NewCropRepository creates an empty in-memory crop catalog
func NewCropRepository() *CropRepository {
	return &CropRepository{
		crops: make(map[core.ID]*crop.Crop),
	}
}

var _ ports.CropRepository = (*CropRepository)(nil)

func cloneCrop(c *crop.Crop) *crop.Crop {
	out := *c
	out.Season = slices.Clone(c.Season)
	out.SoilTypes = slices.Clone(c.SoilTypes)
	out.Compatibility = slices.Clone(c.Compatibility)
	return &out
}

func byName(a, b *crop.Crop) int {
	return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

func (r *CropRepository) List(ctx context.Context, filter ports.CropFilter) ([]*crop.Crop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*crop.Crop, 0, len(r.crops))
	for _, c := range r.crops {
		if filter.Matches(c) {
			result = append(result, cloneCrop(c))
		}
	}
	slices.SortFunc(result, byName)
	return result, nil
}

func (r *CropRepository) Get(ctx context.Context, id core.ID) (*crop.Crop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.crops[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrCropNotFound, id)
	}
	return cloneCrop(c), nil
}

func (r *CropRepository) GetByName(ctx context.Context, name string) (*crop.Crop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c := r.findByName(name); c != nil {
		return cloneCrop(c), nil
	}
	return nil, fmt.Errorf("%w: %s", core.ErrCropNotFound, name)
}

// findByName expects the caller to hold the lock
func (r *CropRepository) findByName(name string) *crop.Crop {
	name = strings.TrimSpace(name)
	for _, c := range r.crops {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (r *CropRepository) Create(ctx context.Context, c *crop.Crop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByName(c.Name) != nil {
		return fmt.Errorf("%w: %s", core.ErrDuplicateCrop, c.Name)
	}
	if c.ID.IsEmpty() {
		c.ID = core.NewID()
	}
	if _, exists := r.crops[c.ID]; exists {
		return fmt.Errorf("%w: id %s", core.ErrDuplicateCrop, c.ID)
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.crops[c.ID] = cloneCrop(c)
	return nil
}

func (r *CropRepository) Update(ctx context.Context, c *crop.Crop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.crops[c.ID]
	if !exists {
		return fmt.Errorf("%w: %s", core.ErrCropNotFound, c.ID)
	}
	if other := r.findByName(c.Name); other != nil && other.ID != c.ID {
		return fmt.Errorf("%w: %s", core.ErrDuplicateCrop, c.Name)
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	r.crops[c.ID] = cloneCrop(c)
	return nil
}

func (r *CropRepository) Deactivate(ctx context.Context, id core.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.crops[id]
	if !exists {
		return fmt.Errorf("%w: %s", core.ErrCropNotFound, id)
	}
	c.IsActive = false
	c.UpdatedAt = time.Now()
	return nil
}

func (r *CropRepository) Search(ctx context.Context, term string, limit int) ([]*crop.Crop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term = strings.ToLower(strings.TrimSpace(term))
	var result []*crop.Crop
	for _, c := range r.crops {
		if !c.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.ScientificName), term) {
			result = append(result, cloneCrop(c))
		}
	}
	slices.SortFunc(result, byName)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
