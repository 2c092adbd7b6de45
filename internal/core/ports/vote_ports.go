package ports

import (
	"context"

	"github.com/askus/askus/internal/core/domain"
)

type VoteInput struct {
	UserID string
	Option string

	// PollID is the poll the client believes is active, when it knows one.
	// A stale value is rejected rather than counted toward the current poll.
	PollID *int64
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (*domain.VoteUpdate, error)

	// ActiveResults returns the current poll and its totals, for subscribers
	// that missed the broadcast.
	ActiveResults(ctx context.Context) (*domain.PollSnapshot, error)
}
