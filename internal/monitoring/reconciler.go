package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/updoot/updoot-be/internal/storage"
)

// reconcileEvery is the cron spec for the point-tally sweep.
const reconcileEvery = "@every 5m"

// Reconciler periodically rewrites any post whose denormalized point total
// has drifted from the sum of its vote rows. The vote ledger keeps the two
// in step transactionally; this job is the backstop that notices if they
// ever disagree.
type Reconciler struct {
	posts storage.PostRepository
	cron  *cron.Cron
}

// NewReconciler creates a new Reconciler.
func NewReconciler(posts storage.PostRepository) *Reconciler {
	return &Reconciler{posts: posts, cron: cron.New()}
}

// Run starts the periodic sweep. It also runs once immediately so drift
// left over from an unclean shutdown is repaired at startup.
func (r *Reconciler) Run() {
	log.Info().Str("schedule", reconcileEvery).Msg("Starting points reconciler")
	r.ReconcileOnce()
	if _, err := r.cron.AddFunc(reconcileEvery, r.ReconcileOnce); err != nil {
		log.Error().Err(err).Msg("Failed to schedule points reconciler")
		return
	}
	r.cron.Start()
}

// Stop halts the sweep, waiting for an in-flight run to finish.
func (r *Reconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Stopped points reconciler")
}

// ReconcileOnce performs a single sweep.
func (r *Reconciler) ReconcileOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repaired, err := r.posts.ReconcilePoints(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Points reconciliation failed")
		return
	}
	if repaired > 0 {
		log.Warn().Int64("repaired", repaired).Msg("Point totals had drifted from vote rows")
	}
}
