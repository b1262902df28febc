// Package main is the entry point for trendwatch, the quotation indicator and
// market health engine.
//
// Usage:
//
//	trendwatch [serve]                       run the scheduler and the metrics server
//	trendwatch scan                          run the configured scan once
//	trendwatch protocol -symbol AAPL [-profile ALL] [-since 2024-01-01]
//	trendwatch statistics [-universe STOCK | -list 1] [-limit 30]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/trendwatch/internal/config"
	"github.com/aristath/trendwatch/internal/di"
	"github.com/aristath/trendwatch/internal/scheduler"
	"github.com/aristath/trendwatch/internal/server"
	"github.com/aristath/trendwatch/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "serve":
		err = serve(cfg, log)
	case "scan":
		err = runScan(cfg, log)
	case "protocol":
		err = printProtocol(cfg, log, args)
	case "statistics":
		err = printStatistics(cfg, log, args)
	default:
		err = fmt.Errorf("unknown command %q", command)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Command failed")
	}
}

// serve runs the scheduled jobs and the metrics server until SIGINT or SIGTERM
func serve(cfg *config.Config, log zerolog.Logger) error {
	log.Info().Msg("Starting trendwatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, jobs, err := di.Wire(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer container.Close()

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.Scan.Schedule, jobs.Scan); err != nil {
		return err
	}
	if err := sched.AddJob(cfg.Scan.WALCheckSchedule, jobs.WALCheckpoints); err != nil {
		return err
	}
	sched.Start()

	if cfg.Scan.RunOnStartup {
		go func() {
			if err := sched.RunNow(jobs.Scan); err != nil {
				log.Error().Err(err).Msg("Startup scan failed")
			}
		}()
	}

	srv := server.New(server.Config{
		Log:      log,
		Port:     cfg.Port,
		DB:       container.DB,
		Gatherer: container.MetricsRegistry,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// stops a running scan between two instruments
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
	return nil
}
