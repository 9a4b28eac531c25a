package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidstat/vidstat/internal/answer"
	"github.com/vidstat/vidstat/internal/bot"
	"github.com/vidstat/vidstat/internal/config"
	"github.com/vidstat/vidstat/internal/nl2sql"
	"github.com/vidstat/vidstat/internal/observability"
	"github.com/vidstat/vidstat/internal/stats"
	"github.com/vidstat/vidstat/internal/telegram"
)

func main() {
	cfg, err := config.LoadFromEnv("vidstat-bot")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	db, err := stats.Open(context.Background(), stats.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open stats db", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	repo := stats.NewRepository(db)

	translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		logger.Error("failed to initialize sql translator", slog.Any("error", err))
		os.Exit(1)
	}

	answerService := answer.NewService(translator, repo, logger)

	client, err := telegram.NewClient(telegram.Config{
		Token:   cfg.Telegram.Token,
		BaseURL: cfg.Telegram.BaseURL,
		Timeout: cfg.Telegram.RequestTimeout,
	})
	if err != nil {
		logger.Error("failed to initialize telegram client", slog.Any("error", err))
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := repo.HealthCheck(checkCtx); err != nil {
			http.Error(w, "stats db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("GET /v1/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting admin server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin server failed", slog.Any("error", err))
			stop()
		}
	}()

	go func() {
		b := bot.New(client, client, answerService, logger, bot.Options{
			PollTimeout: cfg.Telegram.PollTimeout,
		})
		if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("bot loop failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", slog.Any("error", err))
	}
	logger.Info("shutdown complete")
}
