package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
)

type MockUnitDefaultsRepositoryInterface struct {
	mock.Mock
}

func (m *MockUnitDefaultsRepositoryInterface) GetActive(ctx context.Context) (*model.UnitDefaultsConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnitDefaultsConfig), args.Error(1)
}

func (m *MockUnitDefaultsRepositoryInterface) Create(ctx context.Context, units calculator.UnitDefaults, createdBy string) (*model.UnitDefaultsConfig, error) {
	args := m.Called(ctx, units, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnitDefaultsConfig), args.Error(1)
}

func (m *MockUnitDefaultsRepositoryInterface) Update(ctx context.Context, id string, units calculator.UnitDefaults, updatedBy string) (*model.UnitDefaultsConfig, error) {
	args := m.Called(ctx, id, units, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnitDefaultsConfig), args.Error(1)
}

func (m *MockUnitDefaultsRepositoryInterface) List(ctx context.Context, limit int) ([]model.UnitDefaultsConfig, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UnitDefaultsConfig), args.Error(1)
}
