package repository

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/measure-pricing-service/internal/pricing"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PricingRulesRepository stores each product's rule list as one document so
// a save replaces the list atomically and keeps its order.
type PricingRulesRepository struct {
	collection *mongo.Collection
}

// NewPricingRulesRepository creates a new pricing rules repository.
func NewPricingRulesRepository(db *MongoDB) *PricingRulesRepository {
	return &PricingRulesRepository{collection: db.PricingRules}
}

type rulesDocument struct {
	ProductID string         `bson:"_id"`
	Rules     []ruleDocument `bson:"rules"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// Get returns the product's rules; an empty list when none are stored.
func (r *PricingRulesRepository) Get(ctx context.Context, productID string) (pricing.Rules, error) {
	var doc rulesDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return pricing.Rules{}, nil
	}
	if err != nil {
		return nil, err
	}
	return rulesFromDocuments(doc.Rules), nil
}

// Save replaces the product's rule list.
func (r *PricingRulesRepository) Save(ctx context.Context, productID string, rules pricing.Rules) error {
	doc := rulesDocument{
		ProductID: productID,
		Rules:     newRuleDocuments(rules),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": productID}, doc, options.Replace().SetUpsert(true))
	return err
}
