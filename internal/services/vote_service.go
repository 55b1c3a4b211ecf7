package services

import (
	"context"
	"errors"
	"time"

	"livepoll/internal/domain/poll"
	"livepoll/internal/redis"
	"livepoll/internal/repository"
	livepoll_errors "livepoll/pkg/errors"
	"livepoll/pkg/logger"

	"github.com/google/uuid"
)

// Broadcaster is the capability the admission controller uses to push tally
// snapshots to viewers. Injected at construction; delivery is best-effort
// and never affects a committed vote.
type Broadcaster interface {
	PublishPollUpdate(pollID uuid.UUID, options []poll.Option)
}

// VoteStatus is the result of a dedup lookup.
type VoteStatus struct {
	HasVoted bool
	OptionID *uuid.UUID
}

type VoteService struct {
	pollRepo    repository.PollRepository
	voteRepo    repository.VoteRepository
	broadcaster Broadcaster
	cache       *redis.SnapshotCache
	log         *logger.Logger
}

func NewVoteService(pollRepo repository.PollRepository, voteRepo repository.VoteRepository, broadcaster Broadcaster, cache *redis.SnapshotCache, log *logger.Logger) *VoteService {
	return &VoteService{
		pollRepo:    pollRepo,
		voteRepo:    voteRepo,
		broadcaster: broadcaster,
		cache:       cache,
		log:         log,
	}
}

// AdmitVote validates and durably commits one vote attempt, then returns
// the refreshed poll. Safe under arbitrary concurrent invocation: dedup
// rests on the ledger's unique constraints and the tally update is a single
// atomic increment, so no application-level locking is needed.
func (s *VoteService) AdmitVote(ctx context.Context, pollID, optionID uuid.UUID, requestOrigin, deviceToken string) (poll.Poll, error) {
	if deviceToken == "" {
		return poll.Poll{}, livepoll_errors.ErrInvalidInput
	}

	p, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return poll.Poll{}, err
	}

	if !optionBelongs(p, optionID) {
		return poll.Poll{}, livepoll_errors.ErrNotFound
	}

	identity := ResolveIdentity(requestOrigin, deviceToken)

	// Advisory fast path; the ledger insert below is the real guard.
	if _, err := s.voteRepo.FindByFingerprints(ctx, pollID, identity.OriginFingerprint, identity.ClientToken); err == nil {
		return poll.Poll{}, livepoll_errors.ErrAlreadyVoted
	} else if !errors.Is(err, livepoll_errors.ErrNotFound) {
		return poll.Poll{}, err
	}

	record := poll.VoteRecord{
		ID:                uuid.New(),
		PollID:            pollID,
		OptionID:          optionID,
		OriginFingerprint: identity.OriginFingerprint,
		ClientToken:       identity.ClientToken,
		CreatedAt:         time.Now(),
	}
	// Two simultaneous attempts can both pass the pre-check; the unique
	// constraints let exactly one insert land.
	if err := s.voteRepo.Create(ctx, &record); err != nil {
		return poll.Poll{}, err
	}

	if _, err := s.pollRepo.IncrementOptionVote(ctx, pollID, optionID); err != nil {
		// The vote is durable in the ledger, which is the source of truth;
		// the displayed counter undercounts until the reconciler repairs
		// it. Never fail the voter here.
		if s.log != nil {
			s.log.ErrorfCtx(ctx, "tally increment failed for poll %s option %s, flagging for reconciliation: %s: %s",
				pollID, optionID, livepoll_errors.ErrPartialCommit, err)
		}
	}

	refreshed, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return poll.Poll{}, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidatePoll(ctx, pollID); err != nil && s.log != nil {
			s.log.WarnfCtx(ctx, "poll cache invalidation failed for %s: %s", pollID, err)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.PublishPollUpdate(pollID, refreshed.Options)
	}

	return refreshed, nil
}

// CheckVoteStatus reports whether this participant already voted and, if
// so, which option. A missing device token is treated as "not voted" on
// that dimension rather than an error.
func (s *VoteService) CheckVoteStatus(ctx context.Context, pollID uuid.UUID, requestOrigin, deviceToken string) (VoteStatus, error) {
	if deviceToken == "" {
		return VoteStatus{}, nil
	}

	identity := ResolveIdentity(requestOrigin, deviceToken)

	record, err := s.voteRepo.FindByFingerprints(ctx, pollID, identity.OriginFingerprint, identity.ClientToken)
	if err != nil {
		if errors.Is(err, livepoll_errors.ErrNotFound) {
			return VoteStatus{}, nil
		}
		return VoteStatus{}, err
	}

	optionID := record.OptionID
	return VoteStatus{HasVoted: true, OptionID: &optionID}, nil
}

func optionBelongs(p poll.Poll, optionID uuid.UUID) bool {
	for _, o := range p.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
