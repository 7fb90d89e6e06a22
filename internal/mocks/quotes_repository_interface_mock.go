package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/measure-pricing-service/internal/domain/model"
)

type MockQuotesRepositoryInterface struct {
	mock.Mock
}

func (m *MockQuotesRepositoryInterface) Create(ctx context.Context, quote *model.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuotesRepositoryInterface) Get(ctx context.Context, id string) (*model.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *MockQuotesRepositoryInterface) Query(ctx context.Context, opts model.QuoteQueryOptions) ([]*model.Quote, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quote), args.Error(1)
}

func (m *MockQuotesRepositoryInterface) Count(ctx context.Context, opts model.QuoteQueryOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}
