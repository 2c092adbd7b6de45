package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// IncomingMessage is a chat message as seen by the bot, stripped of any
// transport detail.
type IncomingMessage struct {
	Chat    string
	Sender  string
	IsGroup bool
	Text    string
}

// Messenger sends messages over the chat transport. Send returns a
// reference so the displayed message can be edited later.
type Messenger interface {
	Send(ctx context.Context, chat string, text string) (MessageRef, error)
	Reply(ctx context.Context, chat string, text string) error
}

// CommandHandler turns chat commands into API calls: "/ask <question>" in a
// group starts a poll, "voto <option>" in a direct chat casts a vote.
type CommandHandler struct {
	api       *APIClient
	sync      *DisplaySync
	messenger Messenger
}

func NewCommandHandler(api *APIClient, sync *DisplaySync, messenger Messenger) *CommandHandler {
	return &CommandHandler{
		api:       api,
		sync:      sync,
		messenger: messenger,
	}
}

func (h *CommandHandler) HandleMessage(ctx context.Context, msg IncomingMessage) {
	text := strings.TrimSpace(msg.Text)

	if msg.IsGroup && (text == "/ask" || strings.HasPrefix(text, "/ask ")) {
		h.handleAsk(ctx, msg, strings.TrimSpace(strings.TrimPrefix(text, "/ask")))
		return
	}

	if !msg.IsGroup && strings.HasPrefix(strings.ToLower(text), "voto ") {
		h.handleVote(ctx, msg, strings.TrimSpace(text[len("voto "):]))
	}
}

func (h *CommandHandler) handleAsk(ctx context.Context, msg IncomingMessage, question string) {
	if question == "" {
		h.reply(ctx, msg.Chat, "Please include a question after /ask")
		return
	}

	payload, err := h.api.CreatePoll(ctx, question)
	if err != nil {
		h.reply(ctx, msg.Chat, relayableError(err, "Failed to create poll."))
		return
	}

	// Adopt before posting so a voteUpdate racing the send is not matched
	// against the previous poll.
	h.sync.HandlePollStarted(*payload)

	ref, err := h.messenger.Send(ctx, msg.Chat, RenderPollMessage(payload.Poll.Question, nil))
	if err != nil {
		slog.Error("failed to post poll message", "error", err, "poll_id", payload.ActivePollID)
		return
	}
	h.sync.AdoptMessage(payload.ActivePollID, ref)
}

func (h *CommandHandler) handleVote(ctx context.Context, msg IncomingMessage, option string) {
	if option == "" {
		h.reply(ctx, msg.Chat, "Please include an option after 'voto'.")
		return
	}

	// Scope the vote to the poll this bot is displaying; the server rejects
	// it if that poll has been replaced meanwhile.
	var pollID *int64
	if id, ok := h.sync.ActivePollID(); ok {
		pollID = &id
	}

	if _, err := h.api.Vote(ctx, msg.Sender, option, pollID); err != nil {
		h.reply(ctx, msg.Chat, relayableError(err, "Failed to send vote."))
		return
	}

	h.reply(ctx, msg.Chat, "Your vote has been recorded.")
}

func (h *CommandHandler) reply(ctx context.Context, chat, text string) {
	if err := h.messenger.Reply(ctx, chat, text); err != nil {
		slog.Error("failed to send reply", "error", err, "chat", chat)
	}
}

// relayableError passes the server's message through verbatim and falls
// back to a generic line for transport failures.
func relayableError(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	slog.Error("api request failed", "error", err)
	return fallback
}
