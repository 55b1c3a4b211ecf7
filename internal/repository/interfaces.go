package repository

import (
	"context"

	"github.com/google/uuid"

	"livepoll/internal/domain/poll"
)

type PollRepository interface {
	Create(ctx context.Context, p *poll.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error)

	// IncrementOptionVote adds one to the option's counter in a single
	// UPDATE scoped to the poll, and returns the updated option.
	IncrementOptionVote(ctx context.Context, pollID, optionID uuid.UUID) (poll.Option, error)

	ListPollIDs(ctx context.Context) ([]uuid.UUID, error)
	SetOptionVotes(ctx context.Context, pollID, optionID uuid.UUID, votes int64) error
}

type VoteRepository interface {
	// FindByFingerprints returns the record matching either fingerprint for
	// this poll. An empty client token only matches on the origin dimension.
	FindByFingerprints(ctx context.Context, pollID uuid.UUID, originFingerprint, clientToken string) (poll.VoteRecord, error)

	// Create inserts a ledger entry; returns ErrAlreadyVoted when either
	// unique constraint rejects it.
	Create(ctx context.Context, v *poll.VoteRecord) error

	CountByOption(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error)
	CountByPoll(ctx context.Context, pollID uuid.UUID) (int64, error)
}
