package bot

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/askus/askus/internal/core/domain"
)

const reconnectDelay = 5 * time.Second

// Listener subscribes to the server's fan-out channel and feeds events into
// the display sync. The channel has no backlog, so every (re)connect pulls
// the active poll snapshot to cover whatever was missed in the gap.
type Listener struct {
	wsURL string
	api   *APIClient
	sync  *DisplaySync
}

func NewListener(apiBaseURL string, api *APIClient, sync *DisplaySync) *Listener {
	return &Listener{
		wsURL: websocketURL(apiBaseURL),
		api:   api,
		sync:  sync,
	}
}

// Run connects, resyncs and consumes events until ctx is canceled,
// reconnecting after transient failures.
func (l *Listener) Run(ctx context.Context) {
	for {
		if err := l.connectAndListen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("event subscription lost", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	slog.Info("connected to event channel", "url", l.wsURL)

	l.resync(ctx)

	// Unblock ReadMessage when ctx is canceled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var event domain.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			slog.Error("failed to decode event", "error", err)
			continue
		}
		l.sync.HandleEvent(ctx, event)
	}
}

func (l *Listener) resync(ctx context.Context) {
	snapshot, err := l.api.ActivePoll(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			// No poll yet; nothing to mirror.
			return
		}
		slog.Error("failed to resync active poll", "error", err)
		return
	}
	l.sync.ApplySnapshot(ctx, *snapshot)
}

func websocketURL(apiBaseURL string) string {
	url := apiBaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return strings.TrimSuffix(url, "/") + "/ws"
}
