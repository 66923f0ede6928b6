package offers

import (
	"context"
	"time"
)

// Fetcher retrieves one listing page, surviving the source's anti-bot
// challenge. Implementations own retry policy and error classification;
// failures are always a *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// Parser extracts offer rows and pagination state from listing-page HTML.
// Relative detail links are resolved against pageURL.
type Parser interface {
	Parse(pageURL string, body []byte) ListingPage
}

// Store is the durable record of previously ingested offers. InsertIfAbsent
// must be atomic per fingerprint: a concurrent insert of the same fingerprint
// is a benign duplicate, not an error.
type Store interface {
	InsertIfAbsent(ctx context.Context, offer Offer) (bool, error)
	Query(ctx context.Context, filters Filters) ([]Offer, error)
	Close() error
}

// Hasher computes digests for offer fingerprints.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces crawl run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
