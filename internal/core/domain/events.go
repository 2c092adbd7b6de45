package domain

import "encoding/json"

// Event names carried on the fan-out channel.
const (
	EventPollStarted = "pollStarted"
	EventVoteUpdate  = "voteUpdate"
)

// Event is the envelope written to every connected subscriber.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// PollStarted is emitted once per successful poll creation. It doubles as
// the POST /poll response body so subscribers and HTTP callers see the same
// bytes.
type PollStarted struct {
	Poll         *Poll `json:"poll"`
	ActivePollID int64 `json:"activePollId"`
}

// VoteUpdate is emitted once per successful, non-duplicate vote. It doubles
// as the POST /vote response body.
type VoteUpdate struct {
	PollID int64  `json:"pollId"`
	Totals Totals `json:"totals"`
}

// PollSnapshot is the pull-based view of the active poll, served to
// subscribers that connect after the pollStarted event was broadcast.
type PollSnapshot struct {
	PollID   int64  `json:"pollId"`
	Question string `json:"question"`
	Totals   Totals `json:"totals"`
}

// NewEvent marshals payload into an envelope. The payload types above only
// contain marshalable fields, so the error path amounts to a programming
// mistake.
func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: data}, nil
}
