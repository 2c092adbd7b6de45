package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/askus/askus/internal/core/domain"
	"github.com/askus/askus/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

// PollID stays a pointer: absent means "the current active poll", while a
// value pins the vote to the poll the client last saw.
type voteRequest struct {
	UserID string `json:"userId"`
	Option string `json:"option"`
	PollID *int64 `json:"pollId"`
}

func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	// Field validation belongs to the service, which answers "No active
	// poll." before complaining about missing fields.
	input := ports.VoteInput{
		UserID: req.UserID,
		Option: req.Option,
		PollID: req.PollID,
	}

	payload, err := h.service.Vote(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoActivePoll):
			errorResponse(w, http.StatusBadRequest, "No active poll.")
		case errors.Is(err, domain.ErrUserIDRequired):
			errorResponse(w, http.StatusBadRequest, "User ID and option are required.")
		case errors.Is(err, domain.ErrOptionRequired):
			errorResponse(w, http.StatusBadRequest, "Option is required.")
		case errors.Is(err, domain.ErrPollNotActive):
			errorResponse(w, http.StatusConflict, "Poll is no longer active.")
		case errors.Is(err, domain.ErrAlreadyVoted):
			errorResponse(w, http.StatusConflict, "User already voted.")
		default:
			slog.Error("failed to save vote", "error", err)
			errorResponse(w, http.StatusInternalServerError, "Failed to save vote.")
		}
		return
	}

	jsonResponse(w, http.StatusCreated, payload)
}

// ActivePoll serves the current poll and its totals so a subscriber that
// missed the broadcast can resync.
func (h *VoteHandler) ActivePoll(w http.ResponseWriter, r *http.Request) {
	payload, err := h.service.ActiveResults(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoActivePoll) || errors.Is(err, domain.ErrPollNotFound) {
			errorResponse(w, http.StatusNotFound, "No active poll.")
			return
		}

		slog.Error("failed to fetch active poll", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to fetch active poll.")
		return
	}

	jsonResponse(w, http.StatusOK, payload)
}
