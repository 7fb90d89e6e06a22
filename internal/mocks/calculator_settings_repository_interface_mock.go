package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
)

type MockCalculatorSettingsRepositoryInterface struct {
	mock.Mock
}

func (m *MockCalculatorSettingsRepositoryInterface) Get(ctx context.Context, productID string) (calculator.Record, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(calculator.Record), args.Error(1)
}

func (m *MockCalculatorSettingsRepositoryInterface) Save(ctx context.Context, productID string, rec calculator.Record) error {
	args := m.Called(ctx, productID, rec)
	return args.Error(0)
}
