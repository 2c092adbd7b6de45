package services

import (
	"context"
	"sync"
	"time"

	"github.com/askus/askus/internal/core/domain"
)

// fakeRepo is an in-memory PollRepository with the same atomicity as the
// real store: the (poll, user hash) uniqueness check happens under one lock.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	polls  map[int64]*domain.Poll
	votes  map[int64]map[string]string // pollID -> userHash -> option

	createErr error
	voteErr   error
	totalsErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		polls: make(map[int64]*domain.Poll),
		votes: make(map[int64]map[string]string),
	}
}

func (r *fakeRepo) CreatePoll(ctx context.Context, question string) (*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}

	now := time.Now()
	for _, p := range r.polls {
		if p.ClosedAt == nil {
			closed := now
			p.ClosedAt = &closed
		}
	}

	r.nextID++
	poll := &domain.Poll{
		ID:        r.nextID,
		Question:  question,
		CreatedAt: now,
	}
	r.polls[poll.ID] = poll
	r.votes[poll.ID] = make(map[string]string)
	return poll, nil
}

func (r *fakeRepo) GetPoll(ctx context.Context, id int64) (*domain.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return poll, nil
}

func (r *fakeRepo) RecordVote(ctx context.Context, vote *domain.Vote) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.voteErr != nil {
		return false, r.voteErr
	}

	votes, ok := r.votes[vote.PollID]
	if !ok {
		votes = make(map[string]string)
		r.votes[vote.PollID] = votes
	}
	if _, dup := votes[vote.UserHash]; dup {
		return false, nil
	}
	votes[vote.UserHash] = vote.Option
	return true, nil
}

func (r *fakeRepo) Totals(ctx context.Context, pollID int64) (domain.Totals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.totalsErr != nil {
		return nil, r.totalsErr
	}

	totals := make(domain.Totals)
	for _, option := range r.votes[pollID] {
		totals[option]++
	}
	return totals, nil
}

func (r *fakeRepo) voteCount(pollID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.votes[pollID])
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *fakeBroadcaster) Broadcast(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBroadcaster) byName(name string) []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Event
	for _, e := range b.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
