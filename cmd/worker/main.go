package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finplan/internal/alert"
	alertStore "github.com/MrJamesThe3rd/finplan/internal/alert/store"
	"github.com/MrJamesThe3rd/finplan/internal/amqp"
	"github.com/MrJamesThe3rd/finplan/internal/config"
	"github.com/MrJamesThe3rd/finplan/internal/database"
	ledgerStore "github.com/MrJamesThe3rd/finplan/internal/ledger/store"
	"github.com/MrJamesThe3rd/finplan/internal/scheduler"
	schedulerStore "github.com/MrJamesThe3rd/finplan/internal/scheduler/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var publisher alert.Publisher = amqp.LogPublisher{}

	if cfg.AMQP.URL != "" {
		client, err := amqp.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			logger.Warn("failed to initialize AMQP client, alerts will only be logged", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQP.Exchange, "queue", cfg.AMQP.Queue)
		}
	} else {
		logger.Info("AMQP disabled, alerts will only be logged")
	}

	var (
		processor = scheduler.NewProcessor(schedulerStore.New(db))
		checker   = alert.NewChecker(ledgerStore.New(db), alertStore.New(db), publisher)
	)

	logger.Info("worker configured", "interval", cfg.Worker.Interval)

	run(ctx, logger, processor, checker, time.Now())

	ticker := time.NewTicker(cfg.Worker.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		case now := <-ticker.C:
			run(ctx, logger, processor, checker, now)
		}
	}
}

// run books due recurring entries first so the budget check sees them.
func run(ctx context.Context, logger *slog.Logger, processor *scheduler.Processor, checker *alert.Checker, now time.Time) {
	processed, err := processor.ProcessDue(ctx, now)
	if err != nil {
		logger.Error("recurring processing failed", "error", err)
	} else {
		logger.Info("recurring processing complete",
			"processed", processed.Processed,
			"deactivated", processed.Deactivated,
			"failed", processed.Failed)
	}

	checked, err := checker.Check(ctx, now)
	if err != nil {
		logger.Error("budget check failed", "error", err)
		return
	}

	logger.Info("budget check complete", "sent", checked.Sent, "skipped", checked.Skipped, "failed", checked.Failed)
}
