// Package repository stores products, calculator settings, pricing rules,
// unit defaults and quotes in MongoDB or SQLite.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	productsCollection     = "products"
	settingsCollection     = "calculator_settings"
	pricingRulesCollection = "pricing_rules"
	unitDefaultsCollection = "unit_defaults"
	quotesCollection       = "quotes"

	quotesTTLIndex = "created_at_1"
)

// MongoConfig tunes the client connection pool.
type MongoConfig struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	// SocketTimeout bounds a single read or write; pricing lookups are small.
	SocketTimeout     time.Duration
	EnableCompression bool
}

// DefaultMongoConfig suits a read-mostly pricing workload: catalog reads are
// cached, so few connections stay open.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		MaxPoolSize:            30,
		MinPoolSize:            2,
		MaxConnIdleTime:        5 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          15 * time.Second,
		EnableCompression:      true,
	}
}

// MongoDB holds the client and one handle per collection.
type MongoDB struct {
	Client             *mongo.Client
	Database           *mongo.Database
	Products           *mongo.Collection
	CalculatorSettings *mongo.Collection
	PricingRules       *mongo.Collection
	UnitDefaults       *mongo.Collection
	Quotes             *mongo.Collection
}

// NewMongoDB connects with DefaultMongoConfig.
func NewMongoDB(uri, databaseName string) (*MongoDB, error) {
	return NewMongoDBWithConfig(uri, databaseName, DefaultMongoConfig())
}

// NewMongoDBWithConfig connects, pings the server and ensures indexes. The
// client is disconnected again when any step fails.
func NewMongoDBWithConfig(uri, databaseName string, cfg MongoConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ServerSelectionTimeout).
		SetSocketTimeout(cfg.SocketTimeout).
		SetRetryReads(true).
		SetRetryWrites(true)
	if cfg.EnableCompression {
		opts.SetCompressors([]string{"zstd", "snappy", "zlib"})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	db := client.Database(databaseName)
	m := &MongoDB{
		Client:             client,
		Database:           db,
		Products:           db.Collection(productsCollection),
		CalculatorSettings: db.Collection(settingsCollection),
		PricingRules:       db.Collection(pricingRulesCollection),
		UnitDefaults:       db.Collection(unitDefaultsCollection),
		Quotes:             db.Collection(quotesCollection),
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return m, nil
}

// ensureIndexes creates the secondary indexes. Products, settings and rules
// are keyed by product id through _id and need none. The quotes TTL index
// is left to SetQuotesTTL.
func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		m.UnitDefaults: {
			{Keys: bson.D{{Key: "active", Value: 1}}},
		},
		m.Quotes: {
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "request_id", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", coll.Name(), err)
		}
	}
	return nil
}

// SetQuotesTTL replaces the index that expires quotes ttl after creation.
// A non-positive ttl keeps quotes forever.
func (m *MongoDB) SetQuotesTTL(ctx context.Context, ttl time.Duration) error {
	// Missing index on first start.
	_, _ = m.Quotes.Indexes().DropOne(ctx, quotesTTLIndex)
	if ttl <= 0 {
		return nil
	}

	_, err := m.Quotes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
	})
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Name == "IndexOptionsConflict" {
		return nil
	}
	return err
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the primary within two seconds.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, nil)
}
