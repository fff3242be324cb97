package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hourly-trading-bot/internal/logger"
	"hourly-trading-bot/internal/scheduler"
	"hourly-trading-bot/internal/trace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := initializeSystem(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	sched := scheduler.New(eng, cfg.Backoff(), loc)
	logger.Info(ctx, "Bot started",
		"algorithm", cfg.Algorithm,
		"mode", cfg.Mode,
		"symbol", cfg.Symbol,
		"buy_hour", cfg.BuyHour,
		"sell_hour", cfg.SellHour,
	)

	err = sched.Run(ctx)

	shutdownCtx := context.Background()
	if terr := trace.Shutdown(shutdownCtx); terr != nil {
		logger.Warn(shutdownCtx, "Tracer shutdown failed", "error", terr)
	}
	return err
}
