package domain

import (
	"time"

	"github.com/google/uuid"
)

// Poll is a single question put to the group. Only one poll accepts votes
// at any time; creating a new poll closes the previous one.
type Poll struct {
	ID        int64      `json:"id"`
	Question  string     `json:"question"`
	CreatedAt time.Time  `json:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt"`
}

// Vote records one participant's choice. UserHash is the participant
// fingerprint, never the raw identifier.
type Vote struct {
	ID        uuid.UUID `json:"id"`
	PollID    int64     `json:"pollId"`
	UserHash  string    `json:"userHash"`
	Option    string    `json:"option"`
	CreatedAt time.Time `json:"createdAt"`
}

// Totals maps an option to its vote count. encoding/json emits map keys in
// sorted order, which keeps the ascending-by-option contract identical
// across the HTTP response and the broadcast payload.
type Totals map[string]int64
