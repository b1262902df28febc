package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/trendwatch/internal/config"
	"github.com/aristath/trendwatch/internal/di"
	"github.com/aristath/trendwatch/internal/domain"
	"github.com/aristath/trendwatch/internal/modules/protocol"
	"github.com/aristath/trendwatch/internal/modules/statistics"
	"github.com/rs/zerolog"
)

// runScan executes the configured scan once. SIGINT cancels it between instruments.
func runScan(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, _, err := di.Wire(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer container.Close()

	rec, err := container.ScanRunner.Execute(ctx, container.DefaultScan.ID)
	if err != nil {
		return err
	}
	return writeJSON(rec)
}

// printProtocol builds the health-check protocol of one instrument
func printProtocol(cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("protocol", flag.ContinueOnError)
	symbol := fs.String("symbol", "", "instrument symbol")
	profile := fs.String("profile", string(protocol.ProfileAll), "protocol profile")
	since := fs.String("since", "", "first date (YYYY-MM-DD), empty for the whole history")
	grouped := fs.Bool("grouped", true, "group entries by date")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *symbol == "" {
		return fmt.Errorf("-symbol is required")
	}

	var sinceDate time.Time
	if *since != "" {
		parsed, err := time.Parse("2006-01-02", *since)
		if err != nil {
			return fmt.Errorf("invalid -since: %w", err)
		}
		sinceDate = domain.UTCDate(parsed)
	}

	container, _, err := di.Wire(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer container.Close()

	inst, err := container.HistoryRepo.InstrumentBySymbol(*symbol)
	if err != nil {
		return err
	}
	seq, err := container.HistoryRepo.Quotations(inst.ID)
	if err != nil {
		return err
	}
	container.Calculator.UpdateSnapshots(seq, 0)

	entries, err := container.ProtocolBuilder.Build(protocol.Profile(*profile), seq, sinceDate)
	if err != nil {
		return err
	}
	if *grouped {
		return writeJSON(protocol.GroupByDate(entries))
	}
	return writeJSON(entries)
}

// printStatistics lists the newest statistics of a universe, or of one
// instrument list with -list
func printStatistics(cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("statistics", flag.ContinueOnError)
	universe := fs.String("universe", string(domain.InstrumentTypeStock), "instrument type of the universe")
	listID := fs.Int64("list", 0, "instrument list ID, overrides -universe")
	limit := fs.Int("limit", 30, "number of days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t := domain.InstrumentType(*universe)
	if *listID == 0 && (!t.Valid() || t == domain.InstrumentTypeList) {
		return fmt.Errorf("unknown universe %q", *universe)
	}

	container, _, err := di.Wire(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer container.Close()

	var stats []*statistics.Statistic
	if *listID > 0 {
		stats, err = container.StatisticsRepo.ListForList(*listID, *limit)
	} else {
		stats, err = container.StatisticsRepo.List(t, *limit)
	}
	if err != nil {
		return err
	}
	return writeJSON(stats)
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
