package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askus/askus/internal/adapters/broadcast/ws"
	"github.com/askus/askus/internal/core/domain"
)

func TestWebsocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:3001/ws", websocketURL("http://localhost:3001"))
	assert.Equal(t, "wss://askus.example.com/ws", websocketURL("https://askus.example.com/"))
}

func TestListenerConsumesEvents(t *testing.T) {
	hub := ws.NewHub()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("GET /poll", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "No active poll."})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	editor := &fakeEditor{}
	display := NewDisplaySync(editor)
	listener := NewListener(server.URL, NewAPIClient(server.URL), display)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	started, err := domain.NewEvent(domain.EventPollStarted, domain.PollStarted{
		Poll:         &domain.Poll{ID: 9, Question: "Q?"},
		ActivePollID: 9,
	})
	require.NoError(t, err)
	hub.Broadcast(started)

	waitFor(t, func() bool {
		id, ok := display.ActivePollID()
		return ok && id == 9
	})

	display.AdoptMessage(9, MessageRef{Chat: "c", ID: "m"})
	update, err := domain.NewEvent(domain.EventVoteUpdate, domain.VoteUpdate{PollID: 9, Totals: domain.Totals{"A": 1}})
	require.NoError(t, err)
	hub.Broadcast(update)

	waitFor(t, func() bool { return editor.editCount() == 1 })
}

func TestListenerResyncsOnConnect(t *testing.T) {
	hub := ws.NewHub()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("GET /poll", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.PollSnapshot{
			PollID:   4,
			Question: "Missed while offline?",
			Totals:   domain.Totals{"Yes": 3},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	editor := &fakeEditor{}
	display := NewDisplaySync(editor)
	listener := NewListener(server.URL, NewAPIClient(server.URL), display)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go listener.Run(ctx)

	// The poll that was started while disconnected is mirrored via the
	// pull endpoint, without any broadcast.
	waitFor(t, func() bool {
		id, ok := display.ActivePollID()
		return ok && id == 4
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
