package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/measure-pricing-service/internal/service"
)

type MockPricingService struct {
	mock.Mock
}

// NewMockPricingService creates a mock whose expectations are asserted when
// the test ends.
func NewMockPricingService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPricingService {
	m := &MockPricingService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPricingService) Convert(value float64, from, to string) (service.Conversion, error) {
	args := m.Called(value, from, to)
	return args.Get(0).(service.Conversion), args.Error(1)
}

func (m *MockPricingService) Total(ctx context.Context, productID string, inputs map[string]string) (*service.TotalResult, error) {
	args := m.Called(ctx, productID, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TotalResult), args.Error(1)
}

func (m *MockPricingService) Price(ctx context.Context, req service.PriceRequest) (*service.PriceQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PriceQuote), args.Error(1)
}

func (m *MockPricingService) Quantity(ctx context.Context, productID, variationID string, inputs map[string]string) (*service.QuantityResult, error) {
	args := m.Called(ctx, productID, variationID, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuantityResult), args.Error(1)
}

func (m *MockPricingService) Measurement(ctx context.Context, productID, variationID, calculatorType string) (*service.ProductMeasurement, error) {
	args := m.Called(ctx, productID, variationID, calculatorType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProductMeasurement), args.Error(1)
}

func (m *MockPricingService) PriceSummary(ctx context.Context, productID string) (*service.PriceSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PriceSummary), args.Error(1)
}

func (m *MockPricingService) Reorder(ctx context.Context, quoteID, requestID string) (*service.PriceQuote, error) {
	args := m.Called(ctx, quoteID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PriceQuote), args.Error(1)
}

var _ service.PricingService = (*MockPricingService)(nil)
