package ports

import (
	"context"

	"croprotation/domain/core"
	domainRotation "croprotation/domain/rotation"
)

// PlanFilter narrows a farmer's plan listing
type PlanFilter struct {
	Status  domainRotation.PlanStatus
	FieldID string
	Limit   int
}

// PlanRepository defines the interface for rotation plan persistence
type PlanRepository interface {
	// Create stores a new plan
	Create(ctx context.Context, plan *domainRotation.Plan) error

	// Get retrieves a plan by ID, returning core.ErrPlanNotFound when absent
	Get(ctx context.Context, id core.ID) (*domainRotation.Plan, error)

	// ListByFarmer returns a farmer's plans, newest first
	ListByFarmer(ctx context.Context, farmerID core.ID, filter PlanFilter) ([]*domainRotation.Plan, error)

	// Update replaces a stored plan
	Update(ctx context.Context, plan *domainRotation.Plan) error

	// SetStatus changes only the lifecycle status of a plan
	SetStatus(ctx context.Context, id core.ID, status domainRotation.PlanStatus) error
}
