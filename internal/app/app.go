// Package app wires configuration into the concrete pipeline components the
// CLI commands share.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/praclabs/workinator/internal/clock/system"
	"github.com/praclabs/workinator/internal/config"
	"github.com/praclabs/workinator/internal/crawl"
	"github.com/praclabs/workinator/internal/export"
	collyfetcher "github.com/praclabs/workinator/internal/fetcher/colly"
	"github.com/praclabs/workinator/internal/fetcher/fallback"
	headlessfetcher "github.com/praclabs/workinator/internal/fetcher/headless"
	"github.com/praclabs/workinator/internal/hash/sha256"
	"github.com/praclabs/workinator/internal/id/uuid"
	"github.com/praclabs/workinator/internal/identity"
	"github.com/praclabs/workinator/internal/logging"
	"github.com/praclabs/workinator/internal/offers"
	"github.com/praclabs/workinator/internal/parser"
	"github.com/praclabs/workinator/internal/query"
	"github.com/praclabs/workinator/internal/store/memory"
	"github.com/praclabs/workinator/internal/store/postgres"
	"github.com/praclabs/workinator/internal/store/sqlite"
)

// App holds the wired components for one process.
type App struct {
	Cfg          config.Config
	Logger       *zap.Logger
	Store        offers.Store
	Orchestrator *crawl.Orchestrator
	Exports      *export.Service

	headless *headlessfetcher.Fetcher
}

// New loads config from path and wires every component.
func New(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy := offers.NewExponentialRetryPolicy(
		cfg.HTTP.MaxRetries,
		cfg.HTTP.BackoffInitial(),
		cfg.HTTP.BackoffMax(),
	)

	var headless *headlessfetcher.Fetcher
	if cfg.Headless.Enabled {
		headless = headlessfetcher.NewChromedp(headlessfetcher.Config{
			UserAgent:         cfg.Crawl.UserAgent,
			NavigationTimeout: cfg.Headless.NavTimeout(),
		})
	}
	// A fresh chain per run: new cookie jar, promotion reset to the primary
	// transport. Only the browser allocator is shared.
	newFetcher := func() offers.Fetcher {
		primary := collyfetcher.New(collyfetcher.Config{
			UserAgent: cfg.Crawl.UserAgent,
			Timeout:   cfg.HTTP.Timeout(),
		}, policy, logger.Named("fetcher"))
		var headlessChain offers.Fetcher
		if headless != nil {
			headlessChain = headless
		}
		return fallback.New(primary, headlessChain, logger.Named("fallback"))
	}

	reconciler := identity.NewReconciler(store, sha256.New(), system.New(), logger.Named("identity"))
	orchestrator := crawl.New(
		crawl.Config{Delay: cfg.Crawl.Delay()},
		query.NewBuilder(cfg.Crawl.BaseURL),
		newFetcher,
		parser.New(logger.Named("parser")),
		reconciler,
		uuid.New(),
		logger.Named("crawl"),
	)

	return &App{
		Cfg:          cfg,
		Logger:       logger,
		Store:        store,
		Orchestrator: orchestrator,
		Exports:      export.NewService(store),
		headless:     headless,
	}, nil
}

// Close releases the store and the headless browser, if any.
func (a *App) Close() {
	if a.headless != nil {
		a.headless.Close()
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("store close failed", zap.Error(err))
	}
	_ = a.Logger.Sync()
}

func openStore(ctx context.Context, cfg config.Config) (offers.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return sqlite.Open(ctx, cfg.Store.Path)
	case "postgres":
		return postgres.NewStore(ctx, postgres.Config{
			DSN:      cfg.Store.DSN,
			MaxConns: cfg.Store.MaxConns,
		})
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}
