// Package offers defines the core types and interfaces for the job-offer
// ingestion pipeline: fetching listing pages, parsing them into offer rows,
// deduplicating against the store, and querying stored offers.
package offers

import "time"

// Offer is the canonical stored record for a single job posting.
// Fingerprint is the unique identity; AddedAt is assigned by the store at
// first insertion and never updated afterwards.
type Offer struct {
	Fingerprint    string    `db:"fingerprint" json:"fingerprint"`
	Company        string    `db:"company" json:"company"`
	Position       string    `db:"position" json:"position"`
	City           string    `db:"city" json:"city"`
	Salary         string    `db:"salary" json:"salary,omitempty"`
	SourceURL      string    `db:"source_url" json:"source_url"`
	PostedAt       string    `db:"posted_at" json:"posted_at,omitempty"`
	AddedAt        time.Time `db:"added_at" json:"added_at"`
	SearchCity     string    `db:"search_city" json:"search_city,omitempty"`
	SearchDistance int       `db:"search_distance" json:"search_distance,omitempty"`
}

// RawOffer is one parsed listing row before identity assignment. Position and
// SourceURL are guaranteed non-empty by the parser; everything else is
// best-effort.
type RawOffer struct {
	Company   string
	Position  string
	City      string
	Salary    string
	PostedAt  string
	SourceURL string
}

// SearchQuery captures the user-supplied search criteria for one crawl run.
// Only the (City, Distance) projection is persisted, as provenance on each
// discovered offer.
type SearchQuery struct {
	Keywords  []string
	City      string
	Distance  int
	MaxOffers int
}

// ListingPage is the structured result of parsing one listing page.
type ListingPage struct {
	Rows []RawOffer

	// Skipped counts rows dropped for missing a required field.
	Skipped int

	// MaxPage is the pagination ceiling reported by the page, 0 when the
	// marker is absent.
	MaxPage int
}

// HasNext reports whether the page advertises listing pages beyond current.
func (p ListingPage) HasNext(current int) bool {
	return p.MaxPage > current
}

// TerminationReason explains why a crawl run stopped.
type TerminationReason string

// Crawl termination reasons reported in CrawlResult.
const (
	TerminationTargetReached TerminationReason = "target_reached"
	TerminationNoNextPage    TerminationReason = "no_next_page"
	TerminationEmptyPage     TerminationReason = "empty_page"
	TerminationFetchFailed   TerminationReason = "fetch_failed"
	TerminationStoreFailed   TerminationReason = "store_failed"
	TerminationCanceled      TerminationReason = "canceled"
)

// CrawlResult aggregates the counters for one crawl run. A partially failed
// run still reports everything ingested before the failure.
type CrawlResult struct {
	RunID             string            `json:"run_id"`
	Inserted          int               `json:"inserted"`
	DuplicatesSkipped int               `json:"duplicates_skipped"`
	ParseSkips        int               `json:"parse_skips"`
	PagesFetched      int               `json:"pages_fetched"`
	Reason            TerminationReason `json:"termination_reason"`
}

// Filters is an optional conjunction over stored offers. String filters are
// case-insensitive substring matches; zero values mean "no constraint".
type Filters struct {
	Company  string
	Position string
	City     string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// FetchResult is the payload returned by a Fetcher implementation.
type FetchResult struct {
	URL          string
	StatusCode   int
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}
