package services

import (
	"context"
	"strings"
	"time"

	"livepoll/internal/domain/poll"
	"livepoll/internal/redis"
	"livepoll/internal/repository"
	livepoll_errors "livepoll/pkg/errors"
	"livepoll/pkg/logger"

	"github.com/google/uuid"
)

type PollService struct {
	pollRepo repository.PollRepository
	cache    *redis.SnapshotCache
	log      *logger.Logger
}

func NewPollService(pollRepo repository.PollRepository, cache *redis.SnapshotCache, log *logger.Logger) *PollService {
	return &PollService{
		pollRepo: pollRepo,
		cache:    cache,
		log:      log,
	}
}

// CreatePoll persists a new poll with zero-valued counters. The option set
// is fixed from here on.
func (s *PollService) CreatePoll(ctx context.Context, question string, optionTexts []string) (poll.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return poll.Poll{}, livepoll_errors.ErrInvalidInput
	}

	texts := make([]string, 0, len(optionTexts))
	for _, t := range optionTexts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		texts = append(texts, t)
	}
	if len(texts) < 2 {
		return poll.Poll{}, livepoll_errors.ErrInvalidInput
	}

	p := poll.Poll{
		ID:        uuid.New(),
		Question:  question,
		CreatedAt: time.Now(),
	}
	for i, t := range texts {
		p.Options = append(p.Options, poll.Option{
			ID:       uuid.New(),
			PollID:   p.ID,
			Text:     t,
			Position: i,
		})
	}

	if err := s.pollRepo.Create(ctx, &p); err != nil {
		return poll.Poll{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetPoll(ctx, p); err != nil && s.log != nil {
			s.log.WarnfCtx(ctx, "poll cache set failed for %s: %s", p.ID, err)
		}
	}

	return p, nil
}

func (s *PollService) GetPoll(ctx context.Context, pollID uuid.UUID) (poll.Poll, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetPoll(ctx, pollID); err == nil && cached != nil {
			return *cached, nil
		}
	}

	p, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return poll.Poll{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetPoll(ctx, p); err != nil && s.log != nil {
			s.log.WarnfCtx(ctx, "poll cache set failed for %s: %s", p.ID, err)
		}
	}
	return p, nil
}
