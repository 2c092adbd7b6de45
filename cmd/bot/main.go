package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/askus/askus/internal/adapters/whatsapp"
	"github.com/askus/askus/internal/bot"
	"github.com/askus/askus/internal/config"
)

func main() {
	cfg, err := config.LoadBot()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := bot.NewAPIClient(cfg.APIURL)

	// The command handler needs the messenger and the messenger needs the
	// message callback, so wire the handler through a late-bound variable.
	var commands *bot.CommandHandler
	client, err := whatsapp.New(cfg.SessionURL, func(ctx context.Context, msg bot.IncomingMessage) {
		commands.HandleMessage(ctx, msg)
	})
	if err != nil {
		slog.Error("failed to build WhatsApp client", "error", err)
		os.Exit(1)
	}

	display := bot.NewDisplaySync(client)
	commands = bot.NewCommandHandler(api, display, client)

	if err := client.Connect(ctx); err != nil {
		slog.Error("failed to connect WhatsApp client", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect()

	listener := bot.NewListener(cfg.APIURL, api, display)
	go listener.Run(ctx)

	<-ctx.Done()
	slog.Info("Shutting down...")
}
