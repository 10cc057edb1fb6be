package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-event-sender/internal/app"
	"github.com/samvad-hq/samvad-event-sender/internal/config"
	"github.com/samvad-hq/samvad-event-sender/internal/logger"
	"github.com/samvad-hq/samvad-event-sender/pkg/publishers"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	if err := app.CheckArgs(args); err != nil {
		return app.Report(stderr, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return app.Report(stderr, fmt.Errorf("load config: %w", err))
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return app.Report(stderr, fmt.Errorf("init logger: %w", err))
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := app.NewSenderFromConfig(cfg, publishers.DefaultRegistry(), log)
	if err != nil {
		logger.ErrorObj("failed to initialize sender", "error", err.Error())
		return app.Report(stderr, err)
	}
	defer func() {
		if err := sender.Close(); err != nil {
			logger.WarnObj("journal close failed", "error", err.Error())
		}
	}()

	return app.Report(stderr, sender.Send(ctx, args))
}
