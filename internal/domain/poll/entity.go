package poll

import (
	"time"

	"github.com/google/uuid"
)

// Poll represents polls. Question and option set are immutable after
// creation; only option vote counters change.
type Poll struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Question  string    `gorm:"not null"`
	Options   []Option  `gorm:"foreignKey:PollID"`
	CreatedAt time.Time
}

// Option represents poll_options
type Option struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PollID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Text     string    `gorm:"not null"`
	Position int       `gorm:"not null"`
	Votes    int64     `gorm:"not null;default:0"`
}

// VoteRecord represents poll_votes. The two unique indexes are the
// authoritative dedup guard: per poll, one record per origin fingerprint
// and one per client token. Records are insert-only.
type VoteRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	PollID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vote_poll_origin;uniqueIndex:idx_vote_poll_token"`
	OptionID          uuid.UUID `gorm:"type:uuid;not null"`
	OriginFingerprint string    `gorm:"not null;uniqueIndex:idx_vote_poll_origin"`
	ClientToken       string    `gorm:"not null;uniqueIndex:idx_vote_poll_token"`
	CreatedAt         time.Time
}

func (Poll) TableName() string {
	return "polls"
}

func (Option) TableName() string {
	return "poll_options"
}

func (VoteRecord) TableName() string {
	return "poll_votes"
}
