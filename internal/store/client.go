// Package store persists processed label records and picklist documents to
// PostgreSQL and serves the exact-match queries the reprint path needs.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Client struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	config map[string]string
}

func NewClient(config map[string]string, logger *zap.Logger) (*Client, error) {
	dsn := buildConnectionString(config)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Client{
		pool:   pool,
		logger: logger,
		config: config,
	}, nil
}

func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return c.pool.Query(ctx, sql, args...)
}

func (c *Client) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := c.pool.Exec(ctx, sql, args...)
	return err
}

// EnsureSchema creates the engine's tables when they do not exist yet. The
// label table is append-only; rows are never updated.
func (c *Client) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS processed_labels (
			id BIGSERIAL PRIMARY KEY,
			source_document TEXT NOT NULL,
			page_index INTEGER NOT NULL,
			order_key TEXT NOT NULL DEFAULT '',
			tracking_key TEXT NOT NULL DEFAULT '',
			raw_sku TEXT NOT NULL DEFAULT '',
			canonical_sku TEXT NOT NULL DEFAULT '',
			quantity TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			crop_x DOUBLE PRECISION NOT NULL DEFAULT 0,
			crop_y DOUBLE PRECISION NOT NULL DEFAULT 0,
			crop_width DOUBLE PRECISION NOT NULL DEFAULT 0,
			crop_height DOUBLE PRECISION NOT NULL DEFAULT 0,
			run_id TEXT NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL,
			processed_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processed_labels_tracking
			ON processed_labels (tracking_key, processed_date)`,
		`CREATE INDEX IF NOT EXISTS idx_processed_labels_order
			ON processed_labels (order_key, processed_date)`,
		`CREATE TABLE IF NOT EXISTS picklists (
			picklist_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			items JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_picklists_created
			ON picklists (created_at)`,
	}

	for _, statement := range statements {
		if err := c.Exec(ctx, statement); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	c.logger.Info("Store schema ensured")
	return nil
}

func buildConnectionString(config map[string]string) string {
	host := config["host"]
	port := config["port"]
	database := config["database"]
	username := config["username"]
	password := config["password"]
	sslmode := config["sslmode"]

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		username, password, host, port, database, sslmode)

	if connectTimeout := config["connect_timeout"]; connectTimeout != "" {
		if duration, err := time.ParseDuration(connectTimeout); err == nil {
			dsn += fmt.Sprintf("&connect_timeout=%d", int(duration.Seconds()))
		}
	}

	return dsn
}
