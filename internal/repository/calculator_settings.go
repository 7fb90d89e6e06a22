package repository

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CalculatorSettingsRepository stores raw settings records keyed by product id.
type CalculatorSettingsRepository struct {
	collection *mongo.Collection
}

// NewCalculatorSettingsRepository creates a new settings repository.
func NewCalculatorSettingsRepository(db *MongoDB) *CalculatorSettingsRepository {
	return &CalculatorSettingsRepository{collection: db.CalculatorSettings}
}

type settingsDocument struct {
	ProductID string    `bson:"_id"`
	Record    bson.M    `bson:"record"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Get returns the stored record, or nil when the product has none.
func (r *CalculatorSettingsRepository) Get(ctx context.Context, productID string) (calculator.Record, error) {
	var doc settingsDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return calculator.Record(normalizeMap(doc.Record)), nil
}

// Save replaces the product's record.
func (r *CalculatorSettingsRepository) Save(ctx context.Context, productID string, rec calculator.Record) error {
	doc := settingsDocument{
		ProductID: productID,
		Record:    bson.M(rec),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": productID}, doc, options.Replace().SetUpsert(true))
	return err
}
