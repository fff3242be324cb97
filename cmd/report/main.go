package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"hourly-trading-bot/internal/logger"
	"hourly-trading-bot/internal/report"
	"hourly-trading-bot/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()

	path := os.Getenv("BOT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	srv := report.NewServer(cfg.DataDir, loc)
	logger.Info(ctx, "Report server started", "addr", cfg.Report.Addr, "data_dir", cfg.DataDir)
	return srv.Router().Run(cfg.Report.Addr)
}
