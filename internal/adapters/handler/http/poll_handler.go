package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/askus/askus/internal/core/domain"
	"github.com/askus/askus/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

type createPollRequest struct {
	Question string `json:"question"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	payload, err := h.service.Create(r.Context(), ports.CreatePollInput{Question: req.Question})
	if err != nil {
		if errors.Is(err, domain.ErrQuestionRequired) {
			errorResponse(w, http.StatusBadRequest, "Question is required.")
			return
		}

		slog.Error("failed to create poll", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to create poll.")
		return
	}

	jsonResponse(w, http.StatusCreated, payload)
}
