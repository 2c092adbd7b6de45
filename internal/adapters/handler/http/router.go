package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(pollHandler *PollHandler, voteHandler *VoteHandler, ws http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/poll", pollHandler.CreatePoll)
	r.Get("/poll", voteHandler.ActivePoll)
	r.Post("/vote", voteHandler.SubmitVote)
	r.Handle("/ws", ws)

	return r
}
