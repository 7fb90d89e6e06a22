package service

import (
	"context"
	"errors"

	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/metrics"
	"github.com/guttosm/measure-pricing-service/internal/repository"
)

// ErrQuoteNotFound is returned when a quote id matches nothing.
var ErrQuoteNotFound = errors.New("quote not found")

// QuotesService stores and retrieves priced quotes.
type QuotesService interface {
	Create(ctx context.Context, quote *model.Quote) error
	Get(ctx context.Context, id string) (*model.Quote, error)
	Query(ctx context.Context, opts model.QuoteQueryOptions) ([]*model.Quote, error)
	Count(ctx context.Context, opts model.QuoteQueryOptions) (int64, error)
}

// QuotesServiceImpl implements QuotesService.
type QuotesServiceImpl struct {
	repo repository.QuotesRepositoryInterface
}

// NewQuotesService creates a quotes service. A nil repository makes every
// call fail with ErrRepositoryNotConfigured.
func NewQuotesService(repo repository.QuotesRepositoryInterface) *QuotesServiceImpl {
	return &QuotesServiceImpl{repo: repo}
}

// Create stores a quote. The repository assigns the id and creation time
// when they are unset.
func (s *QuotesServiceImpl) Create(ctx context.Context, quote *model.Quote) error {
	if s.repo == nil {
		metrics.RecordQuote("skipped")
		return ErrRepositoryNotConfigured
	}
	if err := s.repo.Create(ctx, quote); err != nil {
		metrics.RecordQuote("failed")
		return err
	}
	metrics.RecordQuote("stored")
	return nil
}

// Get returns the quote or ErrQuoteNotFound.
func (s *QuotesServiceImpl) Get(ctx context.Context, id string) (*model.Quote, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, ErrQuoteNotFound
	}
	return quote, nil
}

func (s *QuotesServiceImpl) Query(ctx context.Context, opts model.QuoteQueryOptions) ([]*model.Quote, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.repo.Query(ctx, opts)
}

func (s *QuotesServiceImpl) Count(ctx context.Context, opts model.QuoteQueryOptions) (int64, error) {
	if s.repo == nil {
		return 0, ErrRepositoryNotConfigured
	}
	return s.repo.Count(ctx, opts)
}
