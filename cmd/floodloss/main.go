package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/fema-ffrd/inland-consequences/internal/adapter/http"
	"github.com/fema-ffrd/inland-consequences/internal/config"
	"github.com/fema-ffrd/inland-consequences/internal/hazard"
	"github.com/fema-ffrd/inland-consequences/internal/inventory"
	"github.com/fema-ffrd/inland-consequences/internal/observability"
	"github.com/fema-ffrd/inland-consequences/internal/pipeline"
	"github.com/fema-ffrd/inland-consequences/internal/refdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := refdata.Open(cfg.RefDataDir, logger)
	if err != nil {
		return err
	}

	buildings, err := inventory.Load(cfg.BuildingsPath, inventory.Options{
		Provider:      cfg.Provider,
		DefaultPeril:  cfg.DefaultPeril,
		DefaultFFHStd: cfg.DefaultFFHStd,
	}, logger)
	if err != nil {
		return err
	}

	hzd, err := hazard.Load(cfg.HazardPath, hazard.Options{
		DefaultDepthStd: cfg.DefaultDepthStd,
	}, logger)
	if err != nil {
		return err
	}

	p := pipeline.New(store, cfg.Ignore, cfg.CalculateAAL, logger, metrics)

	// The HTTP server is optional for batch runs; set HTTP_ADDR to expose
	// health and metrics endpoints while the pipeline executes.
	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	res, runErr := p.Run(ctx, buildings, hzd)
	if runErr == nil {
		if err := pipeline.WriteResults(cfg.OutputDir, res, cfg.CalculateAAL); err != nil {
			runErr = err
		} else {
			logger.Info("results written", "dir", cfg.OutputDir)
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	return runErr
}
