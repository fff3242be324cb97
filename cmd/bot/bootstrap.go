package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"hourly-trading-bot/internal/broker/alpaca"
	"hourly-trading-bot/internal/broker/brokerobs"
	"hourly-trading-bot/internal/engine"
	"hourly-trading-bot/internal/execlog"
	"hourly-trading-bot/internal/interfaces"
	"hourly-trading-bot/internal/ledger"
	"hourly-trading-bot/internal/logger"
	"hourly-trading-bot/internal/store"
	"hourly-trading-bot/internal/strategy"
	"hourly-trading-bot/internal/trace"
)

// initializeSystem loads the environment and initializes logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("BOT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeBroker builds the broker with observability middleware
func initializeBroker(ctx context.Context, cfg *store.Config) interfaces.Broker {
	brk := alpaca.New(alpaca.Params{
		Mode:      cfg.Mode,
		APIKey:    os.Getenv("ALPACA_API_KEY"),
		APISecret: os.Getenv("ALPACA_SECRET_KEY"),
		BaseURL:   os.Getenv("ALPACA_BASE_URL"),
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	return brokerobs.Wrap(brk)
}

// buildEngine reconstructs ledger state from disk and wires the tick cycle
func buildEngine(ctx context.Context, cfg *store.Config) (*engine.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	led := ledger.New(cfg.DataDir, cfg.Algorithm, loc)
	if err := led.Load(); err != nil {
		logger.ErrorWithErr(ctx, "Failed to load ledger state", err, "algorithm", cfg.Algorithm)
		return nil, err
	}

	exec := execlog.New(cfg.DataDir, cfg.Algorithm, loc)
	brk := initializeBroker(ctx, cfg)
	decider := strategy.NewHourly(cfg.BuyHour, cfg.SellHour)

	return engine.New(cfg.Symbol, cfg.Qty, led, exec, brk, decider, loc), nil
}
