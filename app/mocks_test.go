package app

import (
	"context"

	"croprotation/domain/core"
	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
	"croprotation/ports"

	"github.com/stretchr/testify/mock"
)

// MockCropRepository is a mock implementation of ports.CropRepository
type MockCropRepository struct {
	mock.Mock
}

func (m *MockCropRepository) List(ctx context.Context, filter ports.CropFilter) ([]*crop.Crop, error) {
	args := m.Called(ctx, filter)
	crops, _ := args.Get(0).([]*crop.Crop)
	return crops, args.Error(1)
}

func (m *MockCropRepository) Get(ctx context.Context, id core.ID) (*crop.Crop, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*crop.Crop)
	return c, args.Error(1)
}

func (m *MockCropRepository) GetByName(ctx context.Context, name string) (*crop.Crop, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(*crop.Crop)
	return c, args.Error(1)
}

func (m *MockCropRepository) Create(ctx context.Context, c *crop.Crop) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCropRepository) Update(ctx context.Context, c *crop.Crop) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCropRepository) Deactivate(ctx context.Context, id core.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCropRepository) Search(ctx context.Context, term string, limit int) ([]*crop.Crop, error) {
	args := m.Called(ctx, term, limit)
	crops, _ := args.Get(0).([]*crop.Crop)
	return crops, args.Error(1)
}

// MockPlanRepository is a mock implementation of ports.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *domainRotation.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) Get(ctx context.Context, id core.ID) (*domainRotation.Plan, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domainRotation.Plan)
	return p, args.Error(1)
}

func (m *MockPlanRepository) ListByFarmer(ctx context.Context, farmerID core.ID, filter ports.PlanFilter) ([]*domainRotation.Plan, error) {
	args := m.Called(ctx, farmerID, filter)
	plans, _ := args.Get(0).([]*domainRotation.Plan)
	return plans, args.Error(1)
}

func (m *MockPlanRepository) Update(ctx context.Context, plan *domainRotation.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) SetStatus(ctx context.Context, id core.ID, status domainRotation.PlanStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
