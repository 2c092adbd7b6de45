package ports

import (
	"context"

	"github.com/askus/askus/internal/core/domain"
)

type PollRepository interface {
	// CreatePoll inserts a poll with the given question and closes any poll
	// still open, in one transaction. Returns the stored record with its
	// generated id and timestamp.
	CreatePoll(ctx context.Context, question string) (*domain.Poll, error)

	// GetPoll returns the stored poll or domain.ErrPollNotFound.
	GetPoll(ctx context.Context, id int64) (*domain.Poll, error)

	// RecordVote inserts the vote unless one already exists for
	// (poll, user hash). Reports recorded=false on the duplicate case
	// instead of an error; the check is atomic with concurrent callers.
	RecordVote(ctx context.Context, vote *domain.Vote) (recorded bool, err error)

	// Totals returns the per-option vote counts for the poll.
	Totals(ctx context.Context, pollID int64) (domain.Totals, error)
}

type CreatePollInput struct {
	Question string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.PollStarted, error)
}
