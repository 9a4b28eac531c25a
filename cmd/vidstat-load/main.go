package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vidstat/vidstat/internal/config"
	"github.com/vidstat/vidstat/internal/loader"
	"github.com/vidstat/vidstat/internal/observability"
	"github.com/vidstat/vidstat/internal/stats"
)

func main() {
	flag.Parse()
	path := flag.Arg(0)
	if path == "" {
		path = "videos.json"
	}

	cfg, err := config.LoadFromEnv("vidstat-load")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := stats.Open(ctx, stats.DBConfig{
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

	file, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open statistics dump", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = file.Close() }()

	summary, err := loader.Load(ctx, file, stats.NewRepository(db), logger)
	if err != nil {
		logger.Error("load failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Printf("loaded %d video(s) and %d snapshot(s)\n", summary.Videos, summary.Snapshots)
}
