package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"croprotation/domain/core"
	domainRotation "croprotation/domain/rotation"
	"croprotation/ports"
)

// PlanRepository is an in-memory plan store used in demo mode and tests
type PlanRepository struct {
	mu    sync.RWMutex
	plans map[core.ID]*domainRotation.Plan
}

// NewPlanRepository creates an empty in-memory plan store
func NewPlanRepository() *PlanRepository {
	return &PlanRepository{
		plans: make(map[core.ID]*domainRotation.Plan),
	}
}

var _ ports.PlanRepository = (*PlanRepository)(nil)

func clonePlan(p *domainRotation.Plan) *domainRotation.Plan {
	out := *p
	if p.CurrentCropID != nil {
		id := *p.CurrentCropID
		out.CurrentCropID = &id
	}
	if p.Climate != nil {
		climate := *p.Climate
		out.Climate = &climate
	}
	out.SoilTestResults = cloneSoil(p.SoilTestResults)
	out.PlannedCrops = slices.Clone(p.PlannedCrops)
	out.Recommendations = slices.Clone(p.Recommendations)
	return &out
}

func cloneSoil(s domainRotation.SoilTestResults) domainRotation.SoilTestResults {
	dup := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		c := *v
		return &c
	}
	return domainRotation.SoilTestResults{
		Nitrogen:      dup(s.Nitrogen),
		Phosphorus:    dup(s.Phosphorus),
		Potassium:     dup(s.Potassium),
		PH:            dup(s.PH),
		OrganicMatter: dup(s.OrganicMatter),
	}
}

func (r *PlanRepository) Create(ctx context.Context, plan *domainRotation.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if plan.ID.IsEmpty() {
		plan.ID = core.NewID()
	}
	if _, exists := r.plans[plan.ID]; exists {
		return fmt.Errorf("plan with ID %s already exists", plan.ID)
	}

	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r *PlanRepository) Get(ctx context.Context, id core.ID) (*domainRotation.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, exists := r.plans[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrPlanNotFound, id)
	}
	return clonePlan(plan), nil
}

func (r *PlanRepository) ListByFarmer(ctx context.Context, farmerID core.ID, filter ports.PlanFilter) ([]*domainRotation.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domainRotation.Plan
	for _, plan := range r.plans {
		if plan.FarmerID != farmerID {
			continue
		}
		if filter.Status != "" && plan.Status != filter.Status {
			continue
		}
		if filter.FieldID != "" && plan.FieldID != filter.FieldID {
			continue
		}
		result = append(result, clonePlan(plan))
	}

	slices.SortFunc(result, func(a, b *domainRotation.Plan) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *domainRotation.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.plans[plan.ID]
	if !exists {
		return fmt.Errorf("%w: %s", core.ErrPlanNotFound, plan.ID)
	}

	plan.CreatedAt = existing.CreatedAt
	plan.UpdatedAt = time.Now()
	r.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r *PlanRepository) SetStatus(ctx context.Context, id core.ID, status domainRotation.PlanStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, exists := r.plans[id]
	if !exists {
		return fmt.Errorf("%w: %s", core.ErrPlanNotFound, id)
	}
	plan.Status = status
	plan.UpdatedAt = time.Now()
	return nil
}
