// Package postgres provides a Postgres-backed offer store for shared
// deployments where several crawlers feed one database.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praclabs/workinator/internal/offers"
)

const schema = `
CREATE TABLE IF NOT EXISTS offers (
	fingerprint     TEXT PRIMARY KEY,
	company         TEXT NOT NULL DEFAULT '',
	position        TEXT NOT NULL,
	city            TEXT NOT NULL DEFAULT '',
	salary          TEXT NOT NULL DEFAULT '',
	source_url      TEXT NOT NULL,
	posted_at       TEXT NOT NULL DEFAULT '',
	added_at        TIMESTAMPTZ NOT NULL,
	search_city     TEXT NOT NULL DEFAULT '',
	search_distance INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_offers_added_at ON offers (added_at DESC);
CREATE INDEX IF NOT EXISTS idx_offers_company ON offers (company);
CREATE INDEX IF NOT EXISTS idx_offers_position ON offers (position);
CREATE INDEX IF NOT EXISTS idx_offers_city ON offers (city);
`

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store writes offers into Postgres.
type Store struct {
	pool pool
}

// NewStore connects to Postgres using the provided config and ensures the
// offers table exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := p.Exec(ctx, schema); err != nil {
		p.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{pool: p}, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily for
// testing).
func NewStoreWithPool(p pool) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: p}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

// storeFailure marks an error as a backend IO failure so callers can
// distinguish it from validation problems via errors.As.
func storeFailure(err error) error {
	return &offers.StoreError{Kind: offers.StoreIOFailure, Err: err}
}

// InsertIfAbsent inserts the offer unless the fingerprint already exists.
func (s *Store) InsertIfAbsent(ctx context.Context, offer offers.Offer) (bool, error) {
	if offer.Fingerprint == "" {
		return false, fmt.Errorf("offer fingerprint is required")
	}
	tag, err := s.pool.Exec(ctx, `
INSERT INTO offers (
	fingerprint, company, position, city, salary,
	source_url, posted_at, added_at, search_city, search_distance
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (fingerprint) DO NOTHING`,
		offer.Fingerprint,
		offer.Company,
		offer.Position,
		offer.City,
		offer.Salary,
		offer.SourceURL,
		offer.PostedAt,
		offer.AddedAt,
		offer.SearchCity,
		offer.SearchDistance,
	)
	if err != nil {
		return false, storeFailure(fmt.Errorf("insert offer %s: %w", offer.Fingerprint, err))
	}
	return tag.RowsAffected() > 0, nil
}

// Query returns offers matching the filters, newest first.
func (s *Store) Query(ctx context.Context, f offers.Filters) ([]offers.Offer, error) {
	var (
		conds []string
		args  []any
	)
	addILike := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+value+"%")
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}
	addILike("company", f.Company)
	addILike("position", f.Position)
	addILike("city", f.City)
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("added_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("added_at <= $%d", len(args)))
	}

	query := `SELECT fingerprint, company, position, city, salary,
	source_url, posted_at, added_at, search_city, search_distance FROM offers`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY added_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeFailure(fmt.Errorf("query offers: %w", err))
	}
	defer rows.Close()

	var out []offers.Offer
	for rows.Next() {
		var o offers.Offer
		if err := rows.Scan(
			&o.Fingerprint, &o.Company, &o.Position, &o.City, &o.Salary,
			&o.SourceURL, &o.PostedAt, &o.AddedAt, &o.SearchCity, &o.SearchDistance,
		); err != nil {
			return nil, storeFailure(fmt.Errorf("scan offer: %w", err))
		}
		o.AddedAt = o.AddedAt.UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure(fmt.Errorf("iterate offers: %w", err))
	}
	return out, nil
}
