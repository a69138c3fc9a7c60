package productstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/evidentbank/router/internal/circuitbreaker"
	ometrics "github.com/evidentbank/router/internal/metrics"
	"github.com/evidentbank/router/internal/router"
	"github.com/evidentbank/router/internal/tracing"
)

// Store is the Postgres-backed, read-only product catalog the router
// consults for db_count and list/get evidence. It satisfies
// router.ProductStore.
type Store struct {
	db     *sqlx.DB
	wrap   *circuitbreaker.DatabaseWrapper
	logger *zap.Logger
}

// New opens a pooled, read-only connection to the product catalog and
// verifies it with a ping before returning.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	cfg.applyDefaults()

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open product store: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.IdleConnections)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	wrap := circuitbreaker.NewDatabaseWrapper(db.DB, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrap.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping product store: %w", err)
	}

	logger.Info("product store connected",
		zap.String("host", cfg.Host), zap.String("database", cfg.Database),
		zap.Int("max_connections", cfg.MaxConnections))

	return &Store{db: db, wrap: wrap, logger: logger}, nil
}

// Wrapper exposes the circuit-breaker-wrapped connection for health checks.
func (s *Store) Wrapper() *circuitbreaker.DatabaseWrapper { return s.wrap }

// DB exposes the raw *sql.DB for health checks that need it directly.
func (s *Store) DB() *sql.DB { return s.db.DB }

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

type productRow struct {
	Bank     string `db:"bank"`
	Category string `db:"category"`
	Name     string `db:"name"`
	Details  string `db:"details"`
}

// Count returns the number of catalog rows matching the given bank/category/
// product-name filter, treating an empty string as "no filter" on that
// column. The router calls Count only when at least one of bank or
// category is non-empty; it never calls Count with an entirely empty
// scope.
func (s *Store) Count(ctx context.Context, bank, category, productName string) (int, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "productstore.Count")
	defer span.End()

	query := `SELECT COUNT(*) FROM products WHERE
		($1 = '' OR bank = $1) AND
		($2 = '' OR category = $2) AND
		($3 = '' OR name = $3)`

	var n int
	if err := s.db.GetContext(ctx, &n, query, bank, category, productName); err != nil {
		ometrics.RecordDBQueryMetrics("count", "error", time.Since(start).Seconds())
		return 0, fmt.Errorf("count products: %w", err)
	}
	ometrics.RecordDBQueryMetrics("count", "ok", time.Since(start).Seconds())
	return n, nil
}

// List returns every catalog row matching bank/category, both optional.
func (s *Store) List(ctx context.Context, bank, category string) ([]router.ProductRecord, error) {
	query := `SELECT bank, category, name, details FROM products WHERE
		($1 = '' OR bank = $1) AND
		($2 = '' OR category = $2)
		ORDER BY name`

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, query, bank, category); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]router.ProductRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, router.ProductRecord{Bank: r.Bank, Category: r.Category, Name: r.Name, Details: r.Details})
	}
	return out, nil
}

// Get returns the single catalog row for (bank, name), or nil if none
// matches.
func (s *Store) Get(ctx context.Context, bank, name string) (*router.ProductRecord, error) {
	query := `SELECT bank, category, name, details FROM products WHERE bank = $1 AND name = $2`

	var row productRow
	err := s.db.GetContext(ctx, &row, query, bank, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &router.ProductRecord{Bank: row.Bank, Category: row.Category, Name: row.Name, Details: row.Details}, nil
}

// DistinctBanks returns every distinct bank name in the catalog, used by
// the entity registry to rebuild its alias table.
func (s *Store) DistinctBanks(ctx context.Context) ([]string, error) {
	var banks []string
	if err := s.db.SelectContext(ctx, &banks, `SELECT DISTINCT bank FROM products ORDER BY bank`); err != nil {
		return nil, fmt.Errorf("distinct banks: %w", err)
	}
	return banks, nil
}

// DistinctCategories returns every distinct category in the catalog.
func (s *Store) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := s.db.SelectContext(ctx, &categories, `SELECT DISTINCT category FROM products ORDER BY category`); err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	return categories, nil
}

// DistinctProductNames returns every (name, bank) pair in the catalog.
func (s *Store) DistinctProductNames(ctx context.Context) ([]router.ProductAlias, error) {
	var rows []struct {
		Name string `db:"name"`
		Bank string `db:"bank"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT DISTINCT name, bank FROM products ORDER BY name`); err != nil {
		return nil, fmt.Errorf("distinct product names: %w", err)
	}
	out := make([]router.ProductAlias, 0, len(rows))
	for _, r := range rows {
		out = append(out, router.ProductAlias{Name: r.Name, Bank: r.Bank})
	}
	return out, nil
}
