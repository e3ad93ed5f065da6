package sink

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pricetracker/internal/scraper"
	"pricetracker/logger"

	apperrors "pricetracker/pkg/errors"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT,
	image_url TEXT,
	dockers_sku TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS prices (
	id BIGSERIAL PRIMARY KEY,
	product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	retailer TEXT NOT NULL,
	price NUMERIC(10,2) NOT NULL,
	original_price NUMERIC(10,2),
	url TEXT,
	in_stock BOOLEAN NOT NULL DEFAULT true,
	scraped_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_prices_product_scraped ON prices (product_id, scraped_at);

CREATE TABLE IF NOT EXISTS price_alerts (
	id BIGSERIAL PRIMARY KEY,
	user_email TEXT NOT NULL,
	product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	target_price NUMERIC(10,2) NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// querier is the slice of the pgx pool API the sink needs; tests inject a
// mock implementation
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSink upserts products by SKU and appends one observation row per
// record. Observation history is never rewritten.
type PostgresSink struct {
	db       querier
	pool     *pgxpool.Pool
	retailer string
	log      *logger.Logger
}

// PriceAlert is a subscriber threshold row managed by an external caller
type PriceAlert struct {
	ID          int64
	UserEmail   string
	ProductID   int64
	TargetPrice decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
}

// NewPostgresSink connects a sink to the database
func NewPostgresSink(ctx context.Context, databaseURL, retailer string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, apperrors.NewPersist("postgres", "failed to create connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.NewPersist("postgres", "failed to ping database", err)
	}
	return &PostgresSink{
		db:       pool,
		pool:     pool,
		retailer: retailer,
		log:      logger.ForSink("postgres"),
	}, nil
}

// Close releases the connection pool
func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the relational schema when it does not exist yet
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaDDL); err != nil {
		return apperrors.NewPersist("postgres", "failed to ensure schema", err)
	}
	return nil
}

// Name identifies the sink
func (s *PostgresSink) Name() string {
	return "postgres"
}

// Persist upserts each record's product and appends a price observation.
// A failure for one record is logged and skipped so the rest of the batch
// still lands.
func (s *PostgresSink) Persist(ctx context.Context, records []scraper.ProductRecord) (Result, error) {
	var result Result

	for _, record := range records {
		productID, err := s.upsertProduct(ctx, record)
		if err != nil {
			result.Failures++
			s.log.Warn().Err(err).Str("sku", record.SKU).Msg("Failed to upsert product")
			continue
		}
		if err := s.insertObservation(ctx, productID, record); err != nil {
			result.Failures++
			s.log.Warn().Err(err).Str("sku", record.SKU).Msg("Failed to insert observation")
			continue
		}
		result.Persisted++
	}

	return result, nil
}

// upsertProduct inserts the product or refreshes its mutable attributes,
// keyed by SKU. Last write wins for name/category/image drift.
func (s *PostgresSink) upsertProduct(ctx context.Context, record scraper.ProductRecord) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO products (name, category, image_url, dockers_sku)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (dockers_sku) DO UPDATE
		SET name = EXCLUDED.name,
		    category = EXCLUDED.category,
		    image_url = EXCLUDED.image_url,
		    updated_at = now()
		RETURNING id
	`, record.Name, record.Category, record.ImageURL, record.SKU).Scan(&id)
	return id, err
}

// insertObservation appends one immutable price row
func (s *PostgresSink) insertObservation(ctx context.Context, productID int64, record scraper.ProductRecord) error {
	var original any
	if record.OriginalPrice != nil {
		original = record.OriginalPrice.StringFixed(2)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO prices (product_id, retailer, price, original_price, url, in_stock, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, productID, s.retailer, record.Price.StringFixed(2), original, record.URL, record.InStock, record.ScrapedAt)
	return err
}

// CreateAlert registers a subscriber threshold for a product identified by
// SKU. The scraper never evaluates alerts itself; an external collaborator
// compares observations against these rows.
func (s *PostgresSink) CreateAlert(ctx context.Context, userEmail, sku string, targetPrice decimal.Decimal) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO price_alerts (user_email, product_id, target_price)
		SELECT $1, id, $2 FROM products WHERE dockers_sku = $3
		RETURNING id
	`, userEmail, targetPrice.StringFixed(2), sku).Scan(&id)
	if err != nil {
		return 0, apperrors.NewPersist("postgres", "failed to create alert for "+sku, err)
	}
	return id, nil
}

// DeactivateAlert switches an alert off without deleting it
func (s *PostgresSink) DeactivateAlert(ctx context.Context, alertID int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE price_alerts SET is_active = false, updated_at = now() WHERE id = $1
	`, alertID)
	if err != nil {
		return apperrors.NewPersist("postgres", "failed to deactivate alert", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewPersist("postgres", "alert not found", nil)
	}
	return nil
}

// ActiveAlerts lists the active alerts for a product SKU
func (s *PostgresSink) ActiveAlerts(ctx context.Context, sku string) ([]PriceAlert, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.user_email, a.product_id, a.target_price::text, a.is_active, a.created_at
		FROM price_alerts a
		JOIN products p ON p.id = a.product_id
		WHERE p.dockers_sku = $1 AND a.is_active
		ORDER BY a.id
	`, sku)
	if err != nil {
		return nil, apperrors.NewPersist("postgres", "failed to list alerts", err)
	}
	defer rows.Close()

	var alerts []PriceAlert
	for rows.Next() {
		var alert PriceAlert
		var target string
		if err := rows.Scan(&alert.ID, &alert.UserEmail, &alert.ProductID, &target, &alert.IsActive, &alert.CreatedAt); err != nil {
			return nil, apperrors.NewPersist("postgres", "failed to scan alert row", err)
		}
		alert.TargetPrice, err = decimal.NewFromString(target)
		if err != nil {
			return nil, apperrors.NewPersist("postgres", "invalid target price in alert row", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersist("postgres", "failed to read alert rows", err)
	}
	return alerts, nil
}
