package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/OldStager01/energy-intelligence/api"
	"github.com/OldStager01/energy-intelligence/internal/logger"
	"github.com/OldStager01/energy-intelligence/internal/metrics"
	"github.com/OldStager01/energy-intelligence/internal/orchestrator"
	"github.com/OldStager01/energy-intelligence/pkg/config"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	loadCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	orch, err := orchestrator.New(loadCtx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load artifacts: %w", err)
	}
	logger.Infof("Sampler seeded with %d", cfg.Sampler.Seed)

	var events <-chan *models.Event
	if cfg.Stream.Enabled {
		events = orch.SubscribeAllEvents()
	}

	deps := api.Dependencies{
		Gateway: orch.Gateway(),
		State:   orch.State(),
		Metrics: orch.Metrics(),
		Events:  events,
	}

	var metricsServer *http.Server
	if cfg.Prometheus.Enabled {
		var gatherer prometheus.Gatherer = orch.Registry()
		if cfg.Prometheus.Port > 0 {
			metricsServer = metrics.StartServer(cfg.Prometheus.Port, gatherer)
		} else {
			deps.Gatherer = gatherer
		}
	}

	server := api.NewServer(cfg.API, cfg.App.Mode, deps)
	orch.Start()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case err := <-errChan:
		serveErr = fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	orch.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown error: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Metrics server shutdown error: %v", err)
		}
	}

	if serveErr != nil {
		return serveErr
	}
	logger.Info("Server stopped gracefully")
	return nil
}
