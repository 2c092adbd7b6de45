package domain

import "errors"

var (
	ErrNoActivePoll     = errors.New("no active poll")
	ErrPollNotActive    = errors.New("poll is no longer active")
	ErrPollNotFound     = errors.New("poll not found")
	ErrQuestionRequired = errors.New("question is required")
	ErrUserIDRequired   = errors.New("user id is required")
	ErrOptionRequired   = errors.New("option is required")
	ErrAlreadyVoted     = errors.New("user has already voted")
)
