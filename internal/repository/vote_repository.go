package repository

import (
	"context"
	"errors"

	"livepoll/internal/domain/poll"
	livepoll_errors "livepoll/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresVoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &PostgresVoteRepository{db: db}
}

func (r *PostgresVoteRepository) FindByFingerprints(ctx context.Context, pollID uuid.UUID, originFingerprint, clientToken string) (poll.VoteRecord, error) {
	var v poll.VoteRecord
	q := r.db.WithContext(ctx).Where("poll_id = ?", pollID)
	if clientToken != "" {
		q = q.Where("origin_fingerprint = ? OR client_token = ?", originFingerprint, clientToken)
	} else {
		q = q.Where("origin_fingerprint = ?", originFingerprint)
	}
	err := q.First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.VoteRecord{}, livepoll_errors.ErrNotFound
		}
		return poll.VoteRecord{}, err
	}
	return v, nil
}

func (r *PostgresVoteRepository) Create(ctx context.Context, v *poll.VoteRecord) error {
	res := r.db.WithContext(ctx).Create(v)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return livepoll_errors.ErrAlreadyVoted
		}
		return res.Error
	}
	return nil
}

func (r *PostgresVoteRepository) CountByOption(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&poll.VoteRecord{}).
		Select("option_id, COUNT(*) as total").
		Where("poll_id = ?", pollID).
		Group("option_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var optionID uuid.UUID
		var total int64
		if err := rows.Scan(&optionID, &total); err != nil {
			return nil, err
		}
		counts[optionID] = total
	}
	return counts, rows.Err()
}

func (r *PostgresVoteRepository) CountByPoll(ctx context.Context, pollID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&poll.VoteRecord{}).
		Where("poll_id = ?", pollID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
