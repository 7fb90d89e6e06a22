package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteMaxOpenConns = 1

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS calculator_settings (
		product_id TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pricing_rules (
		product_id TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS unit_defaults (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		payload BLOB NOT NULL,
		active INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_unit_defaults_active ON unit_defaults(active)`,
	`CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		request_id TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quotes_product ON quotes(product_id, created_at)`,
}

// SQLiteStore keeps every collaborator in one embedded database, each
// document as a JSON payload. It serves the same interfaces as the MongoDB
// repositories.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "measure-pricing.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single long-lived connection keeps ":memory:" databases alive and
	// serialises writers.
	db.SetMaxOpenConns(sqliteMaxOpenConns)
	db.SetMaxIdleConns(sqliteMaxOpenConns)

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HealthCheck pings the database.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Products() *SQLiteProducts         { return &SQLiteProducts{db: s.db} }
func (s *SQLiteStore) Settings() *SQLiteSettings         { return &SQLiteSettings{db: s.db} }
func (s *SQLiteStore) PricingRules() *SQLitePricingRules { return &SQLitePricingRules{db: s.db} }
func (s *SQLiteStore) UnitDefaults() *SQLiteUnitDefaults { return &SQLiteUnitDefaults{db: s.db} }
func (s *SQLiteStore) Quotes() *SQLiteQuotes             { return &SQLiteQuotes{db: s.db} }

// loadJSON decodes the single payload selected by query into dst. It reports
// false when no row matches.
func loadJSON(ctx context.Context, db *sql.DB, dst any, query string, args ...any) (bool, error) {
	var payload []byte
	err := db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode payload: %w", err)
	}
	return true, nil
}

// SQLiteProducts implements ProductsRepositoryInterface.
type SQLiteProducts struct{ db *sql.DB }

func (r *SQLiteProducts) Get(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	found, err := loadJSON(ctx, r.db, &p, `SELECT payload FROM products WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteProducts) Save(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(product)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO products(id, payload, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		product.ID, payload, product.UpdatedAt.UnixNano())
	return err
}

func (r *SQLiteProducts) List(ctx context.Context, limit int) ([]model.Product, error) {
	query := `SELECT payload FROM products ORDER BY updated_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []model.Product{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var p model.Product
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SQLiteSettings implements CalculatorSettingsRepositoryInterface.
type SQLiteSettings struct{ db *sql.DB }

func (r *SQLiteSettings) Get(ctx context.Context, productID string) (calculator.Record, error) {
	var rec calculator.Record
	found, err := loadJSON(ctx, r.db, &rec, `SELECT payload FROM calculator_settings WHERE product_id = ?`, productID)
	if err != nil || !found {
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteSettings) Save(ctx context.Context, productID string, rec calculator.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO calculator_settings(product_id, payload, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		productID, payload, time.Now().UnixNano())
	return err
}

// SQLitePricingRules implements PricingRulesRepositoryInterface.
type SQLitePricingRules struct{ db *sql.DB }

func (r *SQLitePricingRules) Get(ctx context.Context, productID string) (pricing.Rules, error) {
	rules := pricing.Rules{}
	if _, err := loadJSON(ctx, r.db, &rules, `SELECT payload FROM pricing_rules WHERE product_id = ?`, productID); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *SQLitePricingRules) Save(ctx context.Context, productID string, rules pricing.Rules) error {
	if rules == nil {
		rules = pricing.Rules{}
	}
	payload, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO pricing_rules(product_id, payload, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		productID, payload, time.Now().UnixNano())
	return err
}

// SQLiteUnitDefaults implements UnitDefaultsRepositoryInterface. The row id
// is the configuration id.
type SQLiteUnitDefaults struct{ db *sql.DB }

func (r *SQLiteUnitDefaults) scan(row interface{ Scan(...any) error }) (model.UnitDefaultsConfig, error) {
	var (
		id      int64
		payload []byte
		active  bool
	)
	if err := row.Scan(&id, &payload, &active); err != nil {
		return model.UnitDefaultsConfig{}, err
	}
	var cfg model.UnitDefaultsConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return model.UnitDefaultsConfig{}, fmt.Errorf("decode unit defaults: %w", err)
	}
	cfg.ID = strconv.FormatInt(id, 10)
	cfg.Active = active
	return cfg, nil
}

func (r *SQLiteUnitDefaults) GetActive(ctx context.Context) (*model.UnitDefaultsConfig, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, payload, active FROM unit_defaults WHERE active = 1 ORDER BY id DESC LIMIT 1`)
	cfg, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *SQLiteUnitDefaults) Create(ctx context.Context, units calculator.UnitDefaults, createdBy string) (_ *model.UnitDefaultsConfig, retErr error) {
	now := time.Now().UTC()
	cfg := model.UnitDefaultsConfig{
		Units:     units,
		Active:    true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `UPDATE unit_defaults SET active = 0 WHERE active = 1`); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO unit_defaults(payload, active, created_at) VALUES(?, 1, ?)`, payload, now.UnixNano())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	cfg.ID = strconv.FormatInt(id, 10)
	return &cfg, nil
}

func (r *SQLiteUnitDefaults) Update(ctx context.Context, id string, units calculator.UnitDefaults, updatedBy string) (*model.UnitDefaultsConfig, error) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}

	cfg, err := r.scan(r.db.QueryRowContext(ctx, `SELECT id, payload, active FROM unit_defaults WHERE id = ?`, rowID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.Units = units
	cfg.UpdatedAt = time.Now().UTC()
	if updatedBy != "" {
		cfg.UpdatedBy = updatedBy
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE unit_defaults SET payload = ? WHERE id = ?`, payload, rowID); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *SQLiteUnitDefaults) List(ctx context.Context, limit int) ([]model.UnitDefaultsConfig, error) {
	query := `SELECT id, payload, active FROM unit_defaults ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	configs := []model.UnitDefaultsConfig{}
	for rows.Next() {
		cfg, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// SQLiteQuotes implements QuotesRepositoryInterface.
type SQLiteQuotes struct{ db *sql.DB }

func (r *SQLiteQuotes) Create(ctx context.Context, quote *model.Quote) error {
	prepareQuote(quote)
	payload, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO quotes(id, product_id, request_id, created_at, payload) VALUES(?, ?, ?, ?, ?)`,
		quote.ID, quote.ProductID, quote.RequestID, quote.CreatedAt.UnixNano(), payload)
	return err
}

func (r *SQLiteQuotes) Get(ctx context.Context, id string) (*model.Quote, error) {
	var q model.Quote
	found, err := loadJSON(ctx, r.db, &q, `SELECT payload FROM quotes WHERE id = ?`, id)
	if err != nil || !found {
		return nil, err
	}
	return &q, nil
}

func quoteWhere(opts model.QuoteQueryOptions) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if opts.ProductID != "" {
		clauses = append(clauses, "product_id = ?")
		args = append(args, opts.ProductID)
	}
	if opts.RequestID != "" {
		clauses = append(clauses, "request_id = ?")
		args = append(args, opts.RequestID)
	}
	if opts.StartTime != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, opts.StartTime.UnixNano())
	}
	if opts.EndTime != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, opts.EndTime.UnixNano())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SQLiteQuotes) Query(ctx context.Context, opts model.QuoteQueryOptions) ([]*model.Quote, error) {
	where, args := quoteWhere(opts)
	query := `SELECT payload FROM quotes` + where + ` ORDER BY created_at DESC`
	if opts.Limit > 0 || opts.Skip > 0 {
		limit := opts.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, opts.Skip)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	quotes := []*model.Quote{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		q := &model.Quote{}
		if err := json.Unmarshal(payload, q); err != nil {
			return nil, fmt.Errorf("decode quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (r *SQLiteQuotes) Count(ctx context.Context, opts model.QuoteQueryOptions) (int64, error) {
	where, args := quoteWhere(opts)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`+where, args...).Scan(&n)
	return n, err
}

// PurgeQuotes deletes quotes created before cutoff, the SQLite counterpart
// of the MongoDB TTL index.
func (r *SQLiteQuotes) PurgeQuotes(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE created_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
