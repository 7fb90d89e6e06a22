package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuotesRepository provides methods for quote operations.
type QuotesRepository struct {
	collection *mongo.Collection
}

// NewQuotesRepository creates a new quotes repository.
func NewQuotesRepository(db *MongoDB) *QuotesRepository {
	return &QuotesRepository{
		collection: db.Quotes,
	}
}

// prepareQuote fills the id and creation time when unset.
func prepareQuote(q *model.Quote) {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
}

// Create inserts a new quote.
func (r *QuotesRepository) Create(ctx context.Context, quote *model.Quote) error {
	prepareQuote(quote)
	_, err := r.collection.InsertOne(ctx, newQuoteDocument(quote))
	return err
}

// Get returns the quote, or nil when it does not exist.
func (r *QuotesRepository) Get(ctx context.Context, id string) (*model.Quote, error) {
	var doc QuoteDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func quoteFilter(opts model.QuoteQueryOptions) bson.M {
	filter := bson.M{}

	if opts.ProductID != "" {
		filter["product_id"] = opts.ProductID
	}
	if opts.RequestID != "" {
		filter["request_id"] = opts.RequestID
	}
	if opts.StartTime != nil || opts.EndTime != nil {
		timeFilter := bson.M{}
		if opts.StartTime != nil {
			timeFilter["$gte"] = primitive.NewDateTimeFromTime(*opts.StartTime)
		}
		if opts.EndTime != nil {
			timeFilter["$lte"] = primitive.NewDateTimeFromTime(*opts.EndTime)
		}
		filter["created_at"] = timeFilter
	}

	return filter
}

// Query returns quotes matching the filter, newest first.
func (r *QuotesRepository) Query(ctx context.Context, opts model.QuoteQueryOptions) ([]*model.Quote, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		findOptions.SetLimit(int64(opts.Limit))
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(int64(opts.Skip))
	}

	cursor, err := r.collection.Find(ctx, quoteFilter(opts), findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []QuoteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	quotes := make([]*model.Quote, 0, len(docs))
	for _, d := range docs {
		quotes = append(quotes, d.model())
	}
	return quotes, nil
}

// Count returns the number of quotes matching the filter.
func (r *QuotesRepository) Count(ctx context.Context, opts model.QuoteQueryOptions) (int64, error) {
	return r.collection.CountDocuments(ctx, quoteFilter(opts))
}
