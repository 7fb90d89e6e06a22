package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UnitDefaultsDocument represents a unit defaults configuration document.
type UnitDefaultsDocument struct {
	ID        primitive.ObjectID      `bson:"_id,omitempty"`
	Units     calculator.UnitDefaults `bson:"units"`
	Active    bool                    `bson:"active"`
	Version   int                     `bson:"version"`
	CreatedAt time.Time               `bson:"created_at"`
	UpdatedAt time.Time               `bson:"updated_at"`
	CreatedBy string                  `bson:"created_by,omitempty"`
	UpdatedBy string                  `bson:"updated_by,omitempty"`
}

func (d UnitDefaultsDocument) model() model.UnitDefaultsConfig {
	return model.UnitDefaultsConfig{
		ID:        d.ID.Hex(),
		Units:     d.Units,
		Active:    d.Active,
		Version:   d.Version,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		CreatedBy: d.CreatedBy,
		UpdatedBy: d.UpdatedBy,
	}
}

// UnitDefaultsRepository provides methods for unit defaults operations.
type UnitDefaultsRepository struct {
	collection *mongo.Collection
}

// NewUnitDefaultsRepository creates a new unit defaults repository.
func NewUnitDefaultsRepository(db *MongoDB) *UnitDefaultsRepository {
	return &UnitDefaultsRepository{
		collection: db.UnitDefaults,
	}
}

// GetActive returns the active unit defaults configuration.
func (r *UnitDefaultsRepository) GetActive(ctx context.Context) (*model.UnitDefaultsConfig, error) {
	var doc UnitDefaultsDocument
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"active": true}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg := doc.model()
	return &cfg, nil
}

// Create stores a new active configuration and then deactivates every
// other active one. Between the two writes GetActive already resolves to the
// new document because it reads the newest active entry.
func (r *UnitDefaultsRepository) Create(ctx context.Context, units calculator.UnitDefaults, createdBy string) (*model.UnitDefaultsConfig, error) {
	now := time.Now().UTC()
	doc := UnitDefaultsDocument{
		ID:        primitive.NewObjectID(),
		Units:     units,
		Active:    true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, err
	}

	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{"active": true, "_id": bson.M{"$ne": doc.ID}},
		bson.M{"$set": bson.M{"active": false, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("deactivate previous unit defaults: %w", err)
	}

	cfg := doc.model()
	return &cfg, nil
}

// Update corrects the units of an existing configuration in place. The
// version is kept; only Create starts a new one.
func (r *UnitDefaultsRepository) Update(ctx context.Context, id string, units calculator.UnitDefaults, updatedBy string) (*model.UnitDefaultsConfig, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{
		"units":      units,
		"updated_at": time.Now().UTC(),
	}
	if updatedBy != "" {
		set["updated_by"] = updatedBy
	}

	var doc UnitDefaultsDocument
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg := doc.model()
	return &cfg, nil
}

// List returns configurations, newest first.
func (r *UnitDefaultsRepository) List(ctx context.Context, limit int) ([]model.UnitDefaultsConfig, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
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

	var docs []UnitDefaultsDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	configs := make([]model.UnitDefaultsConfig, 0, len(docs))
	for _, d := range docs {
		configs = append(configs, d.model())
	}
	return configs, nil
}
