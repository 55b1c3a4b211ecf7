package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"livepoll/internal/domain/poll"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Cache key pattern:
// - poll:{poll_id} - short-TTL poll snapshot, invalidated on every admitted vote

// CacheConfig contains configuration for caching
type CacheConfig struct {
	PollTTL time.Duration // TTL for poll snapshots (default 30s)
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		PollTTL: 30 * time.Second,
	}
}

// SnapshotCache keeps poll snapshots in Redis so hot GET traffic doesn't
// hit the store. Tallies served from here may lag a vote by up to the TTL;
// the live channel carries the fresh numbers.
type SnapshotCache struct {
	client *goredis.Client
	config CacheConfig
}

func NewSnapshotCache(client *goredis.Client, config CacheConfig) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		config: config,
	}
}

type pollSnapshot struct {
	ID        uuid.UUID        `json:"id"`
	Question  string           `json:"question"`
	Options   []optionSnapshot `json:"options"`
	CreatedAt time.Time        `json:"created_at"`
}

type optionSnapshot struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	Position int       `json:"position"`
	Votes    int64     `json:"votes"`
}

// GetPoll retrieves a poll snapshot; nil without error means cache miss.
func (c *SnapshotCache) GetPoll(ctx context.Context, pollID uuid.UUID) (*poll.Poll, error) {
	key := fmt.Sprintf("poll:%s", pollID.String())
	data, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var snap pollSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}

	p := poll.Poll{
		ID:        snap.ID,
		Question:  snap.Question,
		CreatedAt: snap.CreatedAt,
	}
	for _, o := range snap.Options {
		p.Options = append(p.Options, poll.Option{
			ID:       o.ID,
			PollID:   snap.ID,
			Text:     o.Text,
			Position: o.Position,
			Votes:    o.Votes,
		})
	}
	return &p, nil
}

// SetPoll stores a poll snapshot
func (c *SnapshotCache) SetPoll(ctx context.Context, p poll.Poll) error {
	snap := pollSnapshot{
		ID:        p.ID,
		Question:  p.Question,
		CreatedAt: p.CreatedAt,
	}
	for _, o := range p.Options {
		snap.Options = append(snap.Options, optionSnapshot{
			ID:       o.ID,
			Text:     o.Text,
			Position: o.Position,
			Votes:    o.Votes,
		})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("poll:%s", p.ID.String())
	return c.client.Set(ctx, key, data, c.config.PollTTL).Err()
}

// InvalidatePoll removes a poll snapshot (called after every admitted vote)
func (c *SnapshotCache) InvalidatePoll(ctx context.Context, pollID uuid.UUID) error {
	key := fmt.Sprintf("poll:%s", pollID.String())
	return c.client.Del(ctx, key).Err()
}

// Ping checks if Redis is available
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
