package services

import (
	"context"
	"time"

	"livepoll/internal/repository"
	"livepoll/pkg/logger"

	"github.com/google/uuid"
)

// Reconciler rewrites option counters from ledger counts. It closes the
// window left by a failed tally increment after a successful ledger insert:
// the ledger is authoritative, counters are display state.
type Reconciler struct {
	pollRepo repository.PollRepository
	voteRepo repository.VoteRepository
	log      *logger.Logger
	interval time.Duration
}

func NewReconciler(pollRepo repository.PollRepository, voteRepo repository.VoteRepository, log *logger.Logger, interval time.Duration) *Reconciler {
	return &Reconciler{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
		log:      log,
		interval: interval,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Reconciler) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.ReconcileAll(ctx)
		}
	}
}

func (r *Reconciler) ReconcileAll(ctx context.Context) {
	ids, err := r.pollRepo.ListPollIDs(ctx)
	if err != nil {
		if r.log != nil {
			r.log.Errorf("reconciler: listing polls failed: %s", err)
		}
		return
	}
	for _, id := range ids {
		if err := r.ReconcilePoll(ctx, id); err != nil && r.log != nil {
			r.log.Errorf("reconciler: poll %s failed: %s", id, err)
		}
	}
}

// ReconcilePoll sets each drifted option counter to the ledger-derived
// count. Votes admitted while this runs can make a freshly written counter
// momentarily stale again; the next pass catches it.
func (r *Reconciler) ReconcilePoll(ctx context.Context, pollID uuid.UUID) error {
	counts, err := r.voteRepo.CountByOption(ctx, pollID)
	if err != nil {
		return err
	}

	p, err := r.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return err
	}

	for _, o := range p.Options {
		want := counts[o.ID]
		if o.Votes == want {
			continue
		}
		if r.log != nil {
			r.log.Warnf("reconciler: poll %s option %s counter %d != ledger %d, repairing",
				pollID, o.ID, o.Votes, want)
		}
		if err := r.pollRepo.SetOptionVotes(ctx, pollID, o.ID, want); err != nil {
			return err
		}
	}
	return nil
}
