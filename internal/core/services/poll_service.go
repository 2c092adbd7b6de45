package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/askus/askus/internal/core/domain"
	"github.com/askus/askus/internal/core/ports"
)

type pollService struct {
	repo     ports.PollRepository
	register *ActivePollRegister
	hub      ports.Broadcaster
}

func NewPollService(repo ports.PollRepository, register *ActivePollRegister, hub ports.Broadcaster) ports.PollService {
	return &pollService{
		repo:     repo,
		register: register,
		hub:      hub,
	}
}

// Create validates the question, stores the poll, promotes it to active and
// broadcasts pollStarted. The newest creation always wins: any previously
// active poll is closed as part of the same store transaction.
func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.PollStarted, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, domain.ErrQuestionRequired
	}

	poll, err := s.repo.CreatePoll(ctx, question)
	if err != nil {
		return nil, err
	}

	s.register.Set(poll.ID)

	payload := &domain.PollStarted{
		Poll:         poll,
		ActivePollID: poll.ID,
	}

	event, err := domain.NewEvent(domain.EventPollStarted, payload)
	if err != nil {
		// Poll is stored and active; the broadcast is best-effort.
		slog.Error("failed to encode pollStarted event", "error", err, "poll_id", poll.ID)
		return payload, nil
	}
	s.hub.Broadcast(event)

	return payload, nil
}
