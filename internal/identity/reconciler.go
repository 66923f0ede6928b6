package identity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/praclabs/workinator/internal/offers"
)

// Reconciler turns raw parsed rows into stored offers, inserting each one at
// most once per fingerprint.
type Reconciler struct {
	store  offers.Store
	hasher offers.Hasher
	clock  offers.Clock
	logger *zap.Logger
}

// NewReconciler wires a reconciler over the given store.
func NewReconciler(store offers.Store, hasher offers.Hasher, clock offers.Clock, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:  store,
		hasher: hasher,
		clock:  clock,
		logger: logger,
	}
}

// Reconcile fingerprints the row, stamps it with provenance from the query,
// and inserts it if the store has not seen that fingerprint before. The
// returned bool reports whether a new record was written.
func (r *Reconciler) Reconcile(ctx context.Context, raw offers.RawOffer, query offers.SearchQuery) (bool, error) {
	fp, err := Fingerprint(raw, r.hasher)
	if err != nil {
		return false, err
	}

	offer := offers.Offer{
		Fingerprint:    fp,
		Company:        offers.CleanText(raw.Company),
		Position:       offers.CleanText(raw.Position),
		City:           offers.CleanText(raw.City),
		Salary:         offers.CleanText(raw.Salary),
		SourceURL:      raw.SourceURL,
		PostedAt:       offers.CleanText(raw.PostedAt),
		AddedAt:        r.clock.Now(),
		SearchCity:     query.City,
		SearchDistance: query.Distance,
	}

	inserted, err := r.store.InsertIfAbsent(ctx, offer)
	if err != nil {
		return false, fmt.Errorf("reconcile offer %s: %w", fp, err)
	}

	if inserted {
		r.logger.Debug("offer ingested",
			zap.String("fingerprint", fp),
			zap.String("position", offer.Position),
			zap.String("company", offer.Company),
		)
	} else {
		r.logger.Debug("duplicate offer skipped", zap.String("fingerprint", fp))
	}
	return inserted, nil
}
