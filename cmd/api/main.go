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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/pillbox/internal/alerts"
	"github.com/MrJamesThe3rd/pillbox/internal/config"
	"github.com/MrJamesThe3rd/pillbox/internal/database"
	pillboxHttp "github.com/MrJamesThe3rd/pillbox/internal/http"
	importHandler "github.com/MrJamesThe3rd/pillbox/internal/http/importcsv"
	productsHandler "github.com/MrJamesThe3rd/pillbox/internal/http/products"
	reportHandler "github.com/MrJamesThe3rd/pillbox/internal/http/report"
	salesHandler "github.com/MrJamesThe3rd/pillbox/internal/http/sales"
	"github.com/MrJamesThe3rd/pillbox/internal/importer"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory/store"
	"github.com/MrJamesThe3rd/pillbox/internal/logging"
	"github.com/MrJamesThe3rd/pillbox/internal/metrics"
	"github.com/MrJamesThe3rd/pillbox/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCloser := logging.Setup(cfg.Log.File, cfg.Log.Level)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var (
		inventoryService = inventory.NewService(store.New(db))
		importService    = importer.NewService()
		reportService    = report.NewService(inventoryService)
	)

	sweeper := alerts.NewSweeper(inventoryService, cfg.Alerts.Days, m)
	if err := sweeper.Start(cfg.Alerts.Schedule); err != nil {
		slog.Error("failed to schedule alerts", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	var (
		productsH = productsHandler.NewHandler(inventoryService)
		salesH    = salesHandler.NewHandler(inventoryService, m)
		importH   = importHandler.NewHandler(importService, inventoryService)
		reportH   = reportHandler.NewHandler(reportService)
	)

	router := pillboxHttp.New(productsH, salesH, importH, reportH, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr, "driver", cfg.DB.Driver)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
