// Package crawl drives one crawl run: building listing URLs page by page,
// fetching and parsing them, and reconciling every row against the store
// until the offer target is reached or the listing runs out.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/praclabs/workinator/internal/metrics"
	"github.com/praclabs/workinator/internal/offers"
	"github.com/praclabs/workinator/internal/query"
)

// reconciler is the slice of identity.Reconciler the orchestrator needs.
type reconciler interface {
	Reconcile(ctx context.Context, raw offers.RawOffer, q offers.SearchQuery) (bool, error)
}

// FetcherFactory builds the fetcher for a single run. Each run gets its own
// instance so transport session state, cookies and headless promotion, never
// carries over between runs.
type FetcherFactory func() offers.Fetcher

// Config controls run behavior.
type Config struct {
	// Delay is the politeness pause between listing-page fetches.
	Delay time.Duration
}

// Orchestrator executes crawl runs. Safe to reuse across runs.
type Orchestrator struct {
	builder    *query.Builder
	fetchers   FetcherFactory
	parser     offers.Parser
	reconciler reconciler
	ids        offers.IDGenerator
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New wires an orchestrator. A zero Delay disables the politeness pause.
func New(
	cfg Config,
	builder *query.Builder,
	fetchers FetcherFactory,
	parser offers.Parser,
	rec reconciler,
	ids offers.IDGenerator,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}
	metrics.Init()
	return &Orchestrator{
		builder:    builder,
		fetchers:   fetchers,
		parser:     parser,
		reconciler: rec,
		ids:        ids,
		limiter:    limiter,
		logger:     logger,
	}
}

// Run walks the listing for q until q.MaxOffers new offers are stored, the
// listing ends, or something fails. The returned result always reflects what
// was ingested before the run stopped; err is non-nil only for abnormal
// terminations.
func (o *Orchestrator) Run(ctx context.Context, q offers.SearchQuery) (offers.CrawlResult, error) {
	var result offers.CrawlResult
	runID, err := o.ids.NewID()
	if err != nil {
		return result, fmt.Errorf("assign run id: %w", err)
	}
	result.RunID = runID

	logger := o.logger.With(
		zap.String("run_id", runID),
		zap.Strings("keywords", q.Keywords),
		zap.String("city", q.City),
	)
	logger.Info("crawl run started", zap.Int("max_offers", q.MaxOffers))

	fetcher := o.fetchers()
	var usedHeadless bool
	for page := 1; ; page++ {
		if err := o.limiter.Wait(ctx); err != nil {
			return o.finish(logger, result, offers.TerminationCanceled, err)
		}

		url := o.builder.Build(q, page)
		res, err := fetcher.Fetch(ctx, url)
		if err != nil {
			metrics.ObserveFetch("error", 0)
			reason := offers.TerminationFetchFailed
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				reason = offers.TerminationCanceled
			}
			logger.Error("listing page fetch failed",
				zap.String("url", url),
				zap.Int("page", page),
				zap.Error(err),
			)
			return o.finish(logger, result, reason, err)
		}
		result.PagesFetched++
		metrics.ObserveFetch("success", res.Duration)
		if res.UsedHeadless && !usedHeadless {
			usedHeadless = true
			metrics.ObserveHeadlessPromotion()
		}

		listing := o.parser.Parse(res.URL, res.Body)
		result.ParseSkips += listing.Skipped

		if len(listing.Rows) == 0 {
			return o.finish(logger, result, offers.TerminationEmptyPage, nil)
		}

		pageInserted, pageDuplicates := 0, 0
		for _, raw := range listing.Rows {
			if err := ctx.Err(); err != nil {
				metrics.ObserveIngest(pageInserted, pageDuplicates, listing.Skipped)
				return o.finish(logger, result, offers.TerminationCanceled, err)
			}
			inserted, err := o.reconciler.Reconcile(ctx, raw, q)
			if err != nil {
				metrics.ObserveIngest(pageInserted, pageDuplicates, listing.Skipped)
				logger.Error("offer reconciliation failed", zap.Error(err))
				return o.finish(logger, result, offers.TerminationStoreFailed, err)
			}
			if inserted {
				result.Inserted++
				pageInserted++
			} else {
				result.DuplicatesSkipped++
				pageDuplicates++
			}
			if q.MaxOffers > 0 && result.Inserted >= q.MaxOffers {
				metrics.ObserveIngest(pageInserted, pageDuplicates, listing.Skipped)
				return o.finish(logger, result, offers.TerminationTargetReached, nil)
			}
		}
		metrics.ObserveIngest(pageInserted, pageDuplicates, listing.Skipped)

		logger.Debug("listing page processed",
			zap.Int("page", page),
			zap.Int("rows", len(listing.Rows)),
			zap.Int("inserted", pageInserted),
			zap.Int("duplicates", pageDuplicates),
		)

		if !listing.HasNext(page) {
			return o.finish(logger, result, offers.TerminationNoNextPage, nil)
		}
	}
}

func (o *Orchestrator) finish(
	logger *zap.Logger,
	result offers.CrawlResult,
	reason offers.TerminationReason,
	err error,
) (offers.CrawlResult, error) {
	result.Reason = reason
	metrics.ObserveRun(string(reason))
	logger.Info("crawl run finished",
		zap.String("reason", string(reason)),
		zap.Int("pages_fetched", result.PagesFetched),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates_skipped", result.DuplicatesSkipped),
		zap.Int("parse_skips", result.ParseSkips),
	)
	return result, err
}
