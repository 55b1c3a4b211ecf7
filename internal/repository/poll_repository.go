package repository

import (
	"context"
	"errors"

	"livepoll/internal/domain/poll"
	livepoll_errors "livepoll/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresPollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) PollRepository {
	return &PostgresPollRepository{db: db}
}

func (r *PostgresPollRepository) Create(ctx context.Context, p *poll.Poll) error {
	// Poll and options go in together; gorm persists the association in
	// the same transaction.
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return livepoll_errors.ErrInvalidInput
		}
		return res.Error
	}
	return nil
}

func (r *PostgresPollRepository) GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	var p poll.Poll
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Poll{}, livepoll_errors.ErrNotFound
		}
		return poll.Poll{}, err
	}
	return p, nil
}

func (r *PostgresPollRepository) IncrementOptionVote(ctx context.Context, pollID, optionID uuid.UUID) (poll.Option, error) {
	// Single atomic UPDATE; never read-then-write. Scoping on poll_id also
	// rejects options that belong to a different poll.
	res := r.db.WithContext(ctx).
		Model(&poll.Option{}).
		Where("id = ? AND poll_id = ?", optionID, pollID).
		UpdateColumn("votes", gorm.Expr("votes + ?", 1))
	if res.Error != nil {
		return poll.Option{}, res.Error
	}
	if res.RowsAffected == 0 {
		return poll.Option{}, livepoll_errors.ErrNotFound
	}

	var o poll.Option
	if err := r.db.WithContext(ctx).Where("id = ?", optionID).First(&o).Error; err != nil {
		return poll.Option{}, err
	}
	return o, nil
}

func (r *PostgresPollRepository) ListPollIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresPollRepository) SetOptionVotes(ctx context.Context, pollID, optionID uuid.UUID, votes int64) error {
	res := r.db.WithContext(ctx).
		Model(&poll.Option{}).
		Where("id = ? AND poll_id = ?", optionID, pollID).
		UpdateColumn("votes", votes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return livepoll_errors.ErrNotFound
	}
	return nil
}
