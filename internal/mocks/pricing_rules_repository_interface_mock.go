package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/measure-pricing-service/internal/pricing"
)

type MockPricingRulesRepositoryInterface struct {
	mock.Mock
}

func (m *MockPricingRulesRepositoryInterface) Get(ctx context.Context, productID string) (pricing.Rules, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pricing.Rules), args.Error(1)
}

func (m *MockPricingRulesRepositoryInterface) Save(ctx context.Context, productID string, rules pricing.Rules) error {
	args := m.Called(ctx, productID, rules)
	return args.Error(0)
}
