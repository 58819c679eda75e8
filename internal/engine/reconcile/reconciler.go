// Package reconcile performs the authoritative move call and decides what
// happens to local state afterwards.
//
// The client cannot distinguish "item was moved concurrently by someone else"
// from "transient network error" from "validation rejection", so a failed
// move is never patched locally. The only response guaranteed to restore the
// registry invariants in every failure mode is a full resync.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"relocator/internal/core/registry"
	"relocator/internal/engine/metrics"
)

// Outcome classifies the result of a commit.
type Outcome string

const (
	// OutcomeSettled means the move was confirmed; the optimistic registry is
	// left as-is and the next scheduled refresh reconfirms it.
	OutcomeSettled Outcome = "settled"

	// OutcomeReverted means the move failed; the registry was resynced from
	// the authoritative snapshot.
	OutcomeReverted Outcome = "reverted"

	// OutcomeStale means the response arrived after the registry generation
	// had advanced; the response was discarded without touching state.
	OutcomeStale Outcome = "stale"
)

// Mover issues the sole authoritative mutation against the inventory service.
type Mover interface {
	MoveItem(ctx context.Context, site, sku, destRoom string) error
}

// Resyncer restores the registry from the authoritative snapshot and
// schedules eventual reconfirmation of settled moves.
type Resyncer interface {
	Resync(ctx context.Context, site string) error
	ScheduleRefresh(site string)
}

// Reconciler commits moves and reconciles local state with the outcome.
type Reconciler struct {
	mover Mover
	store *registry.Store
	sync  Resyncer
	log   *slog.Logger
}

// New creates a reconciler.
func New(mover Mover, store *registry.Store, sync Resyncer) *Reconciler {
	return &Reconciler{
		mover: mover,
		store: store,
		sync:  sync,
		log:   slog.Default(),
	}
}

// Commit performs the authoritative move call. generation is the store
// generation the drag session observed at activation; if the store has been
// reloaded by the time the call returns, the response is discarded rather
// than applied.
//
// On success no local mutation happens: the registry already reflects the
// move from the projector preview. On failure the registry is replaced
// wholesale with a fresh authoritative snapshot.
func (r *Reconciler) Commit(
	ctx context.Context,
	site, sku, destRoom string,
	generation uint64,
) (Outcome, error) {
	start := time.Now()
	err := r.mover.MoveItem(ctx, site, sku, destRoom)
	metrics.MoveLatency.WithLabelValues(site).Observe(time.Since(start).Seconds())

	if r.store.Generation() != generation {
		metrics.MovesTotal.WithLabelValues(site, string(OutcomeStale)).Inc()
		r.log.Warn("discarding stale move response",
			"site", site, "sku", sku, "dest", destRoom, "error", err)
		return OutcomeStale, nil
	}

	if err != nil {
		metrics.MovesTotal.WithLabelValues(site, string(OutcomeReverted)).Inc()
		r.log.Warn("move rejected, resyncing registry",
			"site", site, "sku", sku, "dest", destRoom, "error", err)

		if rerr := r.sync.Resync(ctx, site); rerr != nil {
			return OutcomeReverted, fmt.Errorf("resync after failed move: %w", rerr)
		}
		return OutcomeReverted, fmt.Errorf("move rejected: %w", err)
	}

	metrics.MovesTotal.WithLabelValues(site, string(OutcomeSettled)).Inc()
	r.sync.ScheduleRefresh(site)
	return OutcomeSettled, nil
}
