package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finplan/internal/config"
	"github.com/MrJamesThe3rd/finplan/internal/database"
	"github.com/MrJamesThe3rd/finplan/internal/debt"
	debtStore "github.com/MrJamesThe3rd/finplan/internal/debt/store"
	finplanHttp "github.com/MrJamesThe3rd/finplan/internal/http"
	debtHandler "github.com/MrJamesThe3rd/finplan/internal/http/debt"
	importHandler "github.com/MrJamesThe3rd/finplan/internal/http/importcsv"
	installmentHandler "github.com/MrJamesThe3rd/finplan/internal/http/installment"
	ledgerHandler "github.com/MrJamesThe3rd/finplan/internal/http/ledger"
	loanHandler "github.com/MrJamesThe3rd/finplan/internal/http/loan"
	rulesHandler "github.com/MrJamesThe3rd/finplan/internal/http/matching"
	projectionHandler "github.com/MrJamesThe3rd/finplan/internal/http/projection"
	recurringHandler "github.com/MrJamesThe3rd/finplan/internal/http/recurring"
	"github.com/MrJamesThe3rd/finplan/internal/importer"
	"github.com/MrJamesThe3rd/finplan/internal/installment"
	installmentStore "github.com/MrJamesThe3rd/finplan/internal/installment/store"
	"github.com/MrJamesThe3rd/finplan/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/finplan/internal/ledger/store"
	"github.com/MrJamesThe3rd/finplan/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/finplan/internal/matching/store"
	"github.com/MrJamesThe3rd/finplan/internal/projection"
	"github.com/MrJamesThe3rd/finplan/internal/recurrence"
	recurrenceStore "github.com/MrJamesThe3rd/finplan/internal/recurrence/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	var (
		ledgers    = ledgerStore.New(db)
		recurrings = recurrenceStore.New(db)
	)

	var (
		ledgerService      = ledger.NewService(ledgers)
		recurrenceService  = recurrence.NewService(recurrings)
		installmentService = installment.NewService(installmentStore.New(db))
		projectionService  = projection.NewService(ledgers, recurrings)
		rulesService       = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService(ledgerService, rulesService)
		debtService        = debt.NewService(debtStore.New(db))
	)

	var (
		ledgerH      = ledgerHandler.NewHandler(ledgerService)
		recurringH   = recurringHandler.NewHandler(recurrenceService)
		loanH        = loanHandler.NewHandler()
		installmentH = installmentHandler.NewHandler(installmentService)
		projectionH  = projectionHandler.NewHandler(projectionService)
		importH      = importHandler.NewHandler(importService)
		rulesH       = rulesHandler.NewHandler(rulesService)
		debtH        = debtHandler.NewHandler(debtService)
	)

	router := finplanHttp.New(
		finplanHttp.Options{AllowedOrigins: cfg.Server.CORSOrigins, Timeout: cfg.Server.Timeout},
		ledgerH, recurringH, loanH, installmentH, projectionH, importH, rulesH, debtH,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
