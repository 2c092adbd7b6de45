package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askus/askus/internal/core/domain"
	"github.com/askus/askus/internal/core/ports"
)

type voteFixture struct {
	repo     *fakeRepo
	register *ActivePollRegister
	hub      *fakeBroadcaster
	polls    ports.PollService
	votes    ports.VoteService
}

func newVoteFixture() *voteFixture {
	repo := newFakeRepo()
	register := NewActivePollRegister()
	hub := &fakeBroadcaster{}
	return &voteFixture{
		repo:     repo,
		register: register,
		hub:      hub,
		polls:    NewPollService(repo, register, hub),
		votes:    NewVoteService(repo, register, hub),
	}
}

func (f *voteFixture) createPoll(t *testing.T, question string) *domain.PollStarted {
	t.Helper()
	payload, err := f.polls.Create(context.Background(), ports.CreatePollInput{Question: question})
	require.NoError(t, err)
	return payload
}

func TestVoteFlow(t *testing.T) {
	f := newVoteFixture()
	f.createPoll(t, "Pizza or Pasta?")
	ctx := context.Background()

	first, err := f.votes.Vote(ctx, ports.VoteInput{UserID: "userA", Option: "Pizza"})
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{"Pizza": 1}, first.Totals)

	second, err := f.votes.Vote(ctx, ports.VoteInput{UserID: "userB", Option: "Pasta"})
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{"Pasta": 1, "Pizza": 1}, second.Totals)

	// Same participant again, different option: rejected, totals unchanged.
	_, err = f.votes.Vote(ctx, ports.VoteInput{UserID: "userA", Option: "Pasta"})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	snapshot, err := f.votes.ActiveResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{"Pasta": 1, "Pizza": 1}, snapshot.Totals)
	assert.Equal(t, "Pizza or Pasta?", snapshot.Question)

	updates := f.hub.byName(domain.EventVoteUpdate)
	require.Len(t, updates, 2, "duplicate vote must not be broadcast")

	var last domain.VoteUpdate
	require.NoError(t, json.Unmarshal(updates[1].Data, &last))
	assert.Equal(t, second.Totals, last.Totals)
}

func TestVoteNoActivePoll(t *testing.T) {
	f := newVoteFixture()

	_, err := f.votes.Vote(context.Background(), ports.VoteInput{UserID: "userA", Option: "Pizza"})
	assert.ErrorIs(t, err, domain.ErrNoActivePoll)
	assert.Empty(t, f.hub.events)

	_, err = f.votes.ActiveResults(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoActivePoll)
}

func TestVoteNoActivePollCheckedBeforeFields(t *testing.T) {
	f := newVoteFixture()

	// With no poll running, a request missing its fields is answered with
	// the no-active-poll error, not a field complaint.
	_, err := f.votes.Vote(context.Background(), ports.VoteInput{})
	assert.ErrorIs(t, err, domain.ErrNoActivePoll)
}

func TestVoteValidation(t *testing.T) {
	f := newVoteFixture()
	payload := f.createPoll(t, "Q?")
	ctx := context.Background()

	_, err := f.votes.Vote(ctx, ports.VoteInput{UserID: "  ", Option: "Pizza"})
	assert.ErrorIs(t, err, domain.ErrUserIDRequired)

	// A wholly absent option shares the combined message with the user id;
	// a present but blank one gets the option-specific error.
	_, err = f.votes.Vote(ctx, ports.VoteInput{UserID: "userA", Option: ""})
	assert.ErrorIs(t, err, domain.ErrUserIDRequired)

	_, err = f.votes.Vote(ctx, ports.VoteInput{UserID: "userA", Option: " \t"})
	assert.ErrorIs(t, err, domain.ErrOptionRequired)

	assert.Equal(t, 0, f.repo.voteCount(payload.Poll.ID), "no vote row written on validation failure")
}

func TestVoteStalePollRejected(t *testing.T) {
	f := newVoteFixture()
	first := f.createPoll(t, "First?")
	second := f.createPoll(t, "Second?")
	ctx := context.Background()

	// Client still holds the replaced poll's id: rejected, not counted
	// toward the new poll.
	_, err := f.votes.Vote(ctx, ports.VoteInput{UserID: "userA", Option: "Yes", PollID: &first.Poll.ID})
	assert.ErrorIs(t, err, domain.ErrPollNotActive)
	assert.Equal(t, 0, f.repo.voteCount(second.Poll.ID))
	assert.Equal(t, 0, f.repo.voteCount(first.Poll.ID))

	// Matching id goes through.
	_, err = f.votes.Vote(ctx, ports.VoteInput{UserID: "userA", Option: "Yes", PollID: &second.Poll.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.voteCount(second.Poll.ID))
}

func TestVoteTrimsInput(t *testing.T) {
	f := newVoteFixture()
	f.createPoll(t, "Q?")

	payload, err := f.votes.Vote(context.Background(), ports.VoteInput{UserID: " userA ", Option: "  Pizza  "})
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{"Pizza": 1}, payload.Totals)

	// Whitespace variants of the same identifier hash identically.
	_, err = f.votes.Vote(context.Background(), ports.VoteInput{UserID: "userA", Option: "Pasta"})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
}

func TestVoteStorageFailure(t *testing.T) {
	f := newVoteFixture()
	f.createPoll(t, "Q?")
	f.repo.voteErr = errors.New("connection refused")

	_, err := f.votes.Vote(context.Background(), ports.VoteInput{UserID: "userA", Option: "Pizza"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrAlreadyVoted))
	assert.Empty(t, f.hub.byName(domain.EventVoteUpdate))
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	f := newVoteFixture()
	poll := f.createPoll(t, "Q?")

	const attempts = 20
	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.votes.Vote(context.Background(), ports.VoteInput{UserID: "userA", Option: "Pizza"})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrAlreadyVoted):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one concurrent duplicate may succeed")
	assert.Equal(t, int32(attempts-1), duplicates.Load())
	assert.Equal(t, 1, f.repo.voteCount(poll.Poll.ID))
}

func TestConcurrentDistinctVoters(t *testing.T) {
	f := newVoteFixture()
	poll := f.createPoll(t, "Q?")

	const voters = 15
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := string(rune('a' + n))
			_, err := f.votes.Vote(context.Background(), ports.VoteInput{UserID: userID, Option: "Pizza"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, voters, f.repo.voteCount(poll.Poll.ID))

	snapshot, err := f.votes.ActiveResults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{"Pizza": voters}, snapshot.Totals)
}
