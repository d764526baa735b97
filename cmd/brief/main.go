package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/samvad-hq/daily-brief/internal/app"
	"github.com/samvad-hq/daily-brief/internal/config"
	"github.com/samvad-hq/daily-brief/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "brief run failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	log.InfoObj("brief starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	briefing, err := app.NewBriefing(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize briefing", "error", err.Error())
		return err
	}
	defer func() {
		if err := briefing.Close(); err != nil {
			log.WarnObj("publisher close failed", "error", err.Error())
		}
	}()

	if err := briefing.Run(ctx); err != nil {
		return fmt.Errorf("briefing run: %w", err)
	}
	return nil
}
