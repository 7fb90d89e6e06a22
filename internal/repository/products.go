package repository

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductsRepository stores products in MongoDB.
type ProductsRepository struct {
	collection *mongo.Collection
}

// NewProductsRepository creates a new products repository.
func NewProductsRepository(db *MongoDB) *ProductsRepository {
	return &ProductsRepository{collection: db.Products}
}

// Get returns the product, or nil when it does not exist.
func (r *ProductsRepository) Get(ctx context.Context, id string) (*model.Product, error) {
	var doc ProductDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// Save upserts the product and stamps UpdatedAt.
func (r *ProductsRepository) Save(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": product.ID},
		newProductDocument(product),
		options.Replace().SetUpsert(true),
	)
	return err
}

// List returns products, most recently updated first.
func (r *ProductsRepository) List(ctx context.Context, limit int) ([]model.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []ProductDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, *d.model())
	}
	return products, nil
}
