package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/askus/askus/internal/core/domain"
)

// MessageRef identifies the one outbound message currently representing the
// active poll. Opaque to the sync logic; the messaging adapter knows how to
// resolve it.
type MessageRef struct {
	Chat string
	ID   string
}

// MessageEditor edits a previously sent message in place.
type MessageEditor interface {
	EditMessage(ctx context.Context, ref MessageRef, text string) error
}

// DisplaySync mirrors the server's active poll and keeps the displayed
// message in step with incoming vote updates. The mirror is a best-effort
// cache: events for a poll other than the mirrored one, or arriving before
// a message exists, are ignored.
type DisplaySync struct {
	editor MessageEditor

	mu       sync.Mutex
	pollID   int64
	hasPoll  bool
	question string
	message  *MessageRef
}

func NewDisplaySync(editor MessageEditor) *DisplaySync {
	return &DisplaySync{
		editor: editor,
	}
}

// HandleEvent dispatches a raw fan-out event. Unknown event names are
// ignored so the wire protocol can grow without breaking old bots.
func (s *DisplaySync) HandleEvent(ctx context.Context, event domain.Event) {
	switch event.Name {
	case domain.EventPollStarted:
		var payload domain.PollStarted
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			slog.Error("failed to decode pollStarted event", "error", err)
			return
		}
		s.HandlePollStarted(payload)
	case domain.EventVoteUpdate:
		var payload domain.VoteUpdate
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			slog.Error("failed to decode voteUpdate event", "error", err)
			return
		}
		s.HandleVoteUpdate(ctx, payload)
	}
}

// HandlePollStarted adopts the new poll as the mirror, discarding any prior
// mirror together with its message reference. A redelivery for the poll
// already mirrored keeps the tracked message; the same event travels both
// through the creation path and over the fan-out channel, so dropping the
// reference here would orphan the displayed message.
func (s *DisplaySync) HandlePollStarted(payload domain.PollStarted) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasPoll && payload.ActivePollID == s.pollID {
		if payload.Poll != nil {
			s.question = payload.Poll.Question
		}
		return
	}

	s.pollID = payload.ActivePollID
	s.hasPoll = true
	if payload.Poll != nil {
		s.question = payload.Poll.Question
	}
	s.message = nil
}

// HandleVoteUpdate re-renders and edits the tracked message when the update
// is for the mirrored poll and a message exists; otherwise it does nothing.
func (s *DisplaySync) HandleVoteUpdate(ctx context.Context, payload domain.VoteUpdate) {
	s.mu.Lock()
	if !s.hasPoll || payload.PollID != s.pollID || s.message == nil {
		s.mu.Unlock()
		return
	}
	ref := *s.message
	text := RenderPollMessage(s.question, payload.Totals)
	s.mu.Unlock()

	if err := s.editor.EditMessage(ctx, ref, text); err != nil {
		slog.Error("failed to edit poll message", "error", err, "poll_id", payload.PollID)
	}
}

// AdoptMessage starts tracking the message that displays the poll. Ignored
// when pollID no longer matches the mirror, which happens if another poll
// started while the message was being posted.
func (s *DisplaySync) AdoptMessage(pollID int64, ref MessageRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasPoll || pollID != s.pollID {
		return
	}
	s.message = &ref
}

// ApplySnapshot reconciles the mirror with a pulled server snapshot, used
// after (re)connecting when broadcasts may have been missed. The tracked
// message survives only if it still belongs to the snapshot's poll.
func (s *DisplaySync) ApplySnapshot(ctx context.Context, snapshot domain.PollSnapshot) {
	s.mu.Lock()
	if s.hasPoll && s.pollID != snapshot.PollID {
		s.message = nil
	}
	s.pollID = snapshot.PollID
	s.hasPoll = true
	s.question = snapshot.Question

	var ref *MessageRef
	if s.message != nil {
		r := *s.message
		ref = &r
	}
	text := RenderPollMessage(s.question, snapshot.Totals)
	s.mu.Unlock()

	if ref == nil {
		return
	}
	if err := s.editor.EditMessage(ctx, *ref, text); err != nil {
		slog.Error("failed to refresh poll message", "error", err, "poll_id", snapshot.PollID)
	}
}

// ActivePollID returns the mirrored poll id, or false when no poll has been
// observed yet.
func (s *DisplaySync) ActivePollID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollID, s.hasPoll
}
