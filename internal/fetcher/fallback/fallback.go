// Package fallback chains a fast HTTP fetcher with a headless browser that
// takes over when the site serves its anti-bot challenge.
package fallback

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/praclabs/workinator/internal/offers"
)

// Fetcher tries the primary fetcher first and promotes blocked requests to
// the headless fetcher. Once a promotion succeeds the headless path is kept
// for the rest of the fetcher's lifetime, so one crawl run does not flap
// between transports. Build a fresh chain per run to keep promotion state
// run-scoped.
type Fetcher struct {
	primary  offers.Fetcher
	headless offers.Fetcher
	logger   *zap.Logger

	mu       sync.Mutex
	promoted bool
}

// New wires the fallback chain. headless may be nil, in which case blocked
// responses are surfaced as-is.
func New(primary, headless offers.Fetcher, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		primary:  primary,
		headless: headless,
		logger:   logger,
	}
}

// Fetch retrieves the page via the active transport.
func (f *Fetcher) Fetch(ctx context.Context, url string) (offers.FetchResult, error) {
	f.mu.Lock()
	promoted := f.promoted
	f.mu.Unlock()
	if promoted {
		return f.headless.Fetch(ctx, url)
	}

	result, err := f.primary.Fetch(ctx, url)
	if err == nil {
		return result, nil
	}
	if offers.FetchKind(err) != offers.FetchBlocked || f.headless == nil {
		return offers.FetchResult{}, err
	}

	f.logger.Info("challenge detected, promoting to headless browser", zap.String("url", url))
	result, hErr := f.headless.Fetch(ctx, url)
	if hErr != nil {
		return offers.FetchResult{}, hErr
	}
	f.mu.Lock()
	f.promoted = true
	f.mu.Unlock()
	return result, nil
}
