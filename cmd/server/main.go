package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OlegEV/moysklad-autoproduction/internal/app"
	"github.com/OlegEV/moysklad-autoproduction/internal/config"
	"github.com/OlegEV/moysklad-autoproduction/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("autoproduction", cfg.LogLevel)
	log.Info("starting autoproduction service",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("store", cfg.StoreName),
		slog.String("tech_card_field", cfg.TechCardFieldName),
		slog.Float64("min_stock_threshold", cfg.MinStockThreshold),
		slog.String("trigger_entity", cfg.TriggerEntity),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("run application: %w", err)
	}

	log.Info("autoproduction service stopped")
	return nil
}
