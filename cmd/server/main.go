package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/askus/askus/internal/adapters/broadcast/ws"
	handler "github.com/askus/askus/internal/adapters/handler/http"
	repo "github.com/askus/askus/internal/adapters/repository/postgres"
	"github.com/askus/askus/internal/config"
	"github.com/askus/askus/internal/core/services"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	pollRepo := repo.NewPollRepository(db)
	register := services.NewActivePollRegister()
	hub := ws.NewHub()

	pollService := services.NewPollService(pollRepo, register, hub)
	voteService := services.NewVoteService(pollRepo, register, hub)

	pollHandler := handler.NewPollHandler(pollService)
	voteHandler := handler.NewVoteHandler(voteService)
	router := handler.NewHandler(pollHandler, voteHandler, hub)

	server := &stdhttp.Server{Addr: "0.0.0.0:" + cfg.Port, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("API listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
