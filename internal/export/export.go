// Package export reads stored offers back out, as Go values for the API and
// as CSV for spreadsheets.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/praclabs/workinator/internal/offers"
)

// csvHeader is the fixed column order of CSV exports.
var csvHeader = []string{
	"fingerprint", "company", "position", "city", "salary",
	"source_url", "posted_at", "added_at", "search_city", "search_distance",
}

// Service is the read-side facade over the offer store.
type Service struct {
	store offers.Store
}

// NewService wraps the store.
func NewService(store offers.Store) *Service {
	return &Service{store: store}
}

// Offers returns stored offers matching the filters, newest first.
func (s *Service) Offers(ctx context.Context, f offers.Filters) ([]offers.Offer, error) {
	return s.store.Query(ctx, f)
}

// WriteCSV streams matching offers to w as CSV with a fixed header row.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, f offers.Filters) (int, error) {
	matched, err := s.store.Query(ctx, f)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for i, o := range matched {
		record := []string{
			o.Fingerprint,
			o.Company,
			o.Position,
			o.City,
			o.Salary,
			o.SourceURL,
			o.PostedAt,
			o.AddedAt.UTC().Format(time.RFC3339),
			o.SearchCity,
			strconv.Itoa(o.SearchDistance),
		}
		if err := cw.Write(record); err != nil {
			return i, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(matched), fmt.Errorf("flush csv: %w", err)
	}
	return len(matched), nil
}
