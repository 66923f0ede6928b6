// Package sqlite provides the default single-file offer store.
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

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
	added_at        INTEGER NOT NULL,
	search_city     TEXT NOT NULL DEFAULT '',
	search_distance INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_offers_added_at ON offers (added_at DESC);
CREATE INDEX IF NOT EXISTS idx_offers_company ON offers (company);
CREATE INDEX IF NOT EXISTS idx_offers_position ON offers (position);
CREATE INDEX IF NOT EXISTS idx_offers_city ON offers (city);
`

// Store persists offers in a local SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store.path is required")
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The driver serializes writes; a single connection avoids SQLITE_BUSY
	// without a retry loop.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// storeFailure marks an error as a backend IO failure so callers can
// distinguish it from validation problems via errors.As.
func storeFailure(err error) error {
	return &offers.StoreError{Kind: offers.StoreIOFailure, Err: err}
}

// row is the flat database representation of an offer. added_at is stored as
// unix nanoseconds so ordering survives the round trip exactly.
type row struct {
	Fingerprint    string `db:"fingerprint"`
	Company        string `db:"company"`
	Position       string `db:"position"`
	City           string `db:"city"`
	Salary         string `db:"salary"`
	SourceURL      string `db:"source_url"`
	PostedAt       string `db:"posted_at"`
	AddedAt        int64  `db:"added_at"`
	SearchCity     string `db:"search_city"`
	SearchDistance int    `db:"search_distance"`
}

func toRow(o offers.Offer) row {
	return row{
		Fingerprint:    o.Fingerprint,
		Company:        o.Company,
		Position:       o.Position,
		City:           o.City,
		Salary:         o.Salary,
		SourceURL:      o.SourceURL,
		PostedAt:       o.PostedAt,
		AddedAt:        o.AddedAt.UnixNano(),
		SearchCity:     o.SearchCity,
		SearchDistance: o.SearchDistance,
	}
}

func (r row) toDomain() offers.Offer {
	return offers.Offer{
		Fingerprint:    r.Fingerprint,
		Company:        r.Company,
		Position:       r.Position,
		City:           r.City,
		Salary:         r.Salary,
		SourceURL:      r.SourceURL,
		PostedAt:       r.PostedAt,
		AddedAt:        time.Unix(0, r.AddedAt).UTC(),
		SearchCity:     r.SearchCity,
		SearchDistance: r.SearchDistance,
	}
}

// InsertIfAbsent writes the offer unless its fingerprint already exists. The
// conflict clause makes the check-and-insert a single atomic statement.
func (s *Store) InsertIfAbsent(ctx context.Context, offer offers.Offer) (bool, error) {
	if offer.Fingerprint == "" {
		return false, fmt.Errorf("offer fingerprint is required")
	}
	res, err := s.db.NamedExecContext(ctx, `
INSERT INTO offers (
	fingerprint, company, position, city, salary,
	source_url, posted_at, added_at, search_city, search_distance
) VALUES (
	:fingerprint, :company, :position, :city, :salary,
	:source_url, :posted_at, :added_at, :search_city, :search_distance
) ON CONFLICT(fingerprint) DO NOTHING`, toRow(offer))
	if err != nil {
		return false, storeFailure(fmt.Errorf("insert offer %s: %w", offer.Fingerprint, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeFailure(fmt.Errorf("insert offer %s: %w", offer.Fingerprint, err))
	}
	return affected > 0, nil
}

// Query returns offers matching the filters, newest first.
func (s *Store) Query(ctx context.Context, f offers.Filters) ([]offers.Offer, error) {
	var (
		conds []string
		args  []any
	)
	addLike := func(column, value string) {
		if value == "" {
			return
		}
		conds = append(conds, fmt.Sprintf("lower(%s) LIKE ?", column))
		args = append(args, "%"+strings.ToLower(value)+"%")
	}
	addLike("company", f.Company)
	addLike("position", f.Position)
	addLike("city", f.City)
	if !f.From.IsZero() {
		conds = append(conds, "added_at >= ?")
		args = append(args, f.From.UnixNano())
	}
	if !f.To.IsZero() {
		conds = append(conds, "added_at <= ?")
		args = append(args, f.To.UnixNano())
	}

	query := "SELECT * FROM offers"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY added_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		if f.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, f.Offset)
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storeFailure(fmt.Errorf("query offers: %w", err))
	}
	out := make([]offers.Offer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
