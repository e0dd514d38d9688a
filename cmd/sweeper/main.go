package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/riskibarqy/squadhub/internal/app"
	"github.com/riskibarqy/squadhub/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	sweeper, err := app.NewSweeper(cfg, db, logger)
	if err != nil {
		logger.Error("build sweeper", "error", err)
		os.Exit(1)
	}

	scheduler, err := app.NewSweepScheduler(cfg, sweeper, logger)
	if err != nil {
		logger.Error("build sweep scheduler", "error", err)
		os.Exit(1)
	}
	if scheduler == nil {
		logger.Info("nothing to run, exiting")
		return
	}

	scheduler.Start()
	logger.Info("sweep scheduler started", "schedule", cfg.SweepSchedule)

	<-ctx.Done()
	<-scheduler.Stop().Done()

	logger.Info("sweep scheduler stopped")
}
