package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askus/askus/internal/core/domain"
	"github.com/askus/askus/internal/core/ports"
	"github.com/askus/askus/internal/identity"
)

type voteService struct {
	repo     ports.PollRepository
	register *ActivePollRegister
	hub      ports.Broadcaster
}

func NewVoteService(repo ports.PollRepository, register *ActivePollRegister, hub ports.Broadcaster) ports.VoteService {
	return &voteService{
		repo:     repo,
		register: register,
		hub:      hub,
	}
}

// Vote records one participant's choice on the active poll and broadcasts
// the recomputed totals. A request carrying the id of a poll that has since
// been replaced is rejected, never counted toward the newer poll.
func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*domain.VoteUpdate, error) {
	activeID, ok := s.register.Get()
	if !ok {
		return nil, domain.ErrNoActivePoll
	}

	userID := strings.TrimSpace(input.UserID)
	if userID == "" || input.Option == "" {
		return nil, domain.ErrUserIDRequired
	}
	// An option that is present but whitespace-only gets its own message.
	option := strings.TrimSpace(input.Option)
	if option == "" {
		return nil, domain.ErrOptionRequired
	}
	if input.PollID != nil && *input.PollID != activeID {
		return nil, domain.ErrPollNotActive
	}

	vote := &domain.Vote{
		ID:        uuid.New(),
		PollID:    activeID,
		UserHash:  identity.Fingerprint(userID),
		Option:    option,
		CreatedAt: time.Now(),
	}

	recorded, err := s.repo.RecordVote(ctx, vote)
	if err != nil {
		return nil, err
	}
	if !recorded {
		return nil, domain.ErrAlreadyVoted
	}

	totals, err := s.repo.Totals(ctx, activeID)
	if err != nil {
		// The vote is stored; the store remains the source of truth and the
		// totals stay queryable, so surface the read failure as-is.
		return nil, err
	}

	payload := &domain.VoteUpdate{
		PollID: activeID,
		Totals: totals,
	}

	event, err := domain.NewEvent(domain.EventVoteUpdate, payload)
	if err != nil {
		slog.Error("failed to encode voteUpdate event", "error", err, "poll_id", activeID)
		return payload, nil
	}
	s.hub.Broadcast(event)

	return payload, nil
}

// ActiveResults serves the pull-based snapshot used by subscribers that
// connect after events were broadcast.
func (s *voteService) ActiveResults(ctx context.Context) (*domain.PollSnapshot, error) {
	activeID, ok := s.register.Get()
	if !ok {
		return nil, domain.ErrNoActivePoll
	}

	poll, err := s.repo.GetPoll(ctx, activeID)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.Totals(ctx, activeID)
	if err != nil {
		return nil, err
	}

	return &domain.PollSnapshot{
		PollID:   poll.ID,
		Question: poll.Question,
		Totals:   totals,
	}, nil
}
