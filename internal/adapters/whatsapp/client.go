// Package whatsapp adapts whatsmeow to the bot's Messenger and
// MessageEditor interfaces: QR pairing, group/direct chat detection, and
// in-place edits of the poll message.
package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	_ "github.com/lib/pq"

	"github.com/askus/askus/internal/bot"
)

// MessageHandler receives every inbound chat message.
type MessageHandler func(ctx context.Context, msg bot.IncomingMessage)

type Client struct {
	wm      *whatsmeow.Client
	handler MessageHandler
}

// New opens the pairing session store and builds the client. The session
// lives in Postgres so a restarted bot reconnects without rescanning.
func New(sessionURL string, handler MessageHandler) (*Client, error) {
	container, err := sqlstore.New("postgres", sessionURL, waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	device, err := container.GetFirstDevice()
	if err != nil {
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	c := &Client{
		wm:      whatsmeow.NewClient(device, waLog.Noop),
		handler: handler,
	}
	c.wm.AddEventHandler(c.handleEvent)

	return c, nil
}

// Connect establishes the WhatsApp session. A device that has never paired
// prints a QR code to the terminal and blocks until it is scanned.
func (c *Client) Connect(ctx context.Context) error {
	if c.wm.Store.ID != nil {
		if err := c.wm.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		slog.Info("WhatsApp client ready")
		return nil
	}

	qrChan, err := c.wm.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := c.wm.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
		case "success":
			slog.Info("WhatsApp client ready")
			return nil
		default:
			slog.Info("pairing event", "event", evt.Event)
		}
	}

	return fmt.Errorf("pairing did not complete")
}

func (c *Client) Disconnect() {
	c.wm.Disconnect()
}

// Send posts a message and returns the reference needed to edit it later.
func (c *Client) Send(ctx context.Context, chat string, text string) (bot.MessageRef, error) {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return bot.MessageRef{}, fmt.Errorf("invalid chat id %q: %w", chat, err)
	}

	resp, err := c.wm.SendMessage(ctx, jid, &waProto.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return bot.MessageRef{}, fmt.Errorf("failed to send message: %w", err)
	}

	return bot.MessageRef{Chat: chat, ID: string(resp.ID)}, nil
}

func (c *Client) Reply(ctx context.Context, chat string, text string) error {
	_, err := c.Send(ctx, chat, text)
	return err
}

// EditMessage rewrites a previously sent message in place.
func (c *Client) EditMessage(ctx context.Context, ref bot.MessageRef, text string) error {
	jid, err := types.ParseJID(ref.Chat)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", ref.Chat, err)
	}

	edit := c.wm.BuildEdit(jid, types.MessageID(ref.ID), &waProto.Message{
		Conversation: proto.String(text),
	})
	if _, err := c.wm.SendMessage(ctx, jid, edit); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (c *Client) handleEvent(evt any) {
	msg, ok := evt.(*events.Message)
	if !ok || msg.Info.IsFromMe {
		return
	}

	text := extractText(msg.Message)
	if text == "" {
		return
	}

	incoming := bot.IncomingMessage{
		Chat:    msg.Info.Chat.String(),
		Sender:  msg.Info.Sender.ToNonAD().String(),
		IsGroup: msg.Info.IsGroup,
		Text:    text,
	}

	// Handlers call back into the API; keep the event loop free.
	go c.handler(context.Background(), incoming)
}

func extractText(msg *waProto.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	return msg.GetExtendedTextMessage().GetText()
}
