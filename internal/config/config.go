// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/trendwatch/internal/modules/classifier"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Directory of the SQLite database, always absolute
	LogLevel  string
	LogPretty bool
	Port      int // metrics and health endpoint

	Scan   ScanConfig
	Health classifier.HealthConfig

	ProtocolProfilesPath string // optional YAML overrides of the protocol profiles
	ShutdownTimeout      time.Duration
}

// ScanConfig describes the scheduled scan
type ScanConfig struct {
	Name             string
	ListIDs          []int64 // empty scans every instrument
	Schedule         string  // cron expression with seconds field
	RunOnStartup     bool
	SnapshotDepth    int // newest quotations per instrument recomputed, 0 = all
	WALCheckSchedule string
}

// Load reads configuration from environment variables, after loading a .env
// file if one exists, and creates the data directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func fromEnv() (*Config, error) {
	dataDir, err := filepath.Abs(getEnv("TRENDWATCH_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	listIDs, err := getEnvAsInt64List("TRENDWATCH_SCAN_LISTS")
	if err != nil {
		return nil, err
	}

	defaults := classifier.DefaultHealthConfig()
	cfg := &Config{
		DataDir:   dataDir,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		Port:      getEnvAsInt("TRENDWATCH_PORT", 8080),
		Scan: ScanConfig{
			Name:             getEnv("TRENDWATCH_SCAN_NAME", "default"),
			ListIDs:          listIDs,
			Schedule:         getEnv("TRENDWATCH_SCAN_SCHEDULE", "0 0 22 * * MON-FRI"),
			RunOnStartup:     getEnvAsBool("TRENDWATCH_SCAN_ON_STARTUP", false),
			SnapshotDepth:    getEnvAsInt("TRENDWATCH_SNAPSHOT_DEPTH", 0),
			WALCheckSchedule: getEnv("TRENDWATCH_WAL_CHECK_SCHEDULE", "0 */30 * * * *"),
		},
		Health: classifier.HealthConfig{
			VolumeFactor:          getEnvAsFloat("HEALTH_VOLUME_FACTOR", defaults.VolumeFactor),
			DistributionDecline:   getEnvAsFloat("HEALTH_DISTRIBUTION_DECLINE", defaults.DistributionDecline),
			FollowThroughGain:     getEnvAsFloat("HEALTH_FOLLOW_THROUGH_GAIN", defaults.FollowThroughGain),
			FollowThroughMinDay:   getEnvAsInt("HEALTH_FOLLOW_THROUGH_MIN_DAY", defaults.FollowThroughMinDay),
			FollowThroughLookback: getEnvAsInt("HEALTH_FOLLOW_THROUGH_LOOKBACK", defaults.FollowThroughLookback),
			ChurningVolumeFactor:  getEnvAsFloat("HEALTH_CHURNING_VOLUME_FACTOR", defaults.ChurningVolumeFactor),
			ChurningMaxMove:       getEnvAsFloat("HEALTH_CHURNING_MAX_MOVE", defaults.ChurningMaxMove),
			PocketPivotLookback:   getEnvAsInt("HEALTH_POCKET_PIVOT_LOOKBACK", defaults.PocketPivotLookback),
			GoodCloseRatio:        getEnvAsFloat("HEALTH_GOOD_CLOSE_RATIO", defaults.GoodCloseRatio),
			BadCloseRatio:         getEnvAsFloat("HEALTH_BAD_CLOSE_RATIO", defaults.BadCloseRatio),
			ExtendedPercent:       getEnvAsFloat("HEALTH_EXTENDED_PERCENT", defaults.ExtendedPercent),
		},
		ProtocolProfilesPath: getEnv("TRENDWATCH_PROTOCOL_PROFILES", ""),
		ShutdownTimeout:      time.Duration(getEnvAsInt("TRENDWATCH_SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath is the path of the SQLite database inside DataDir
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "trendwatch.db")
}

// Validate checks that every value is usable and reports all problems at once
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if c.Scan.Name == "" {
		errs = append(errs, errors.New("scan name is required"))
	}
	if _, err := parser.Parse(c.Scan.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid scan schedule %q: %w", c.Scan.Schedule, err))
	}
	if _, err := parser.Parse(c.Scan.WALCheckSchedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid WAL check schedule %q: %w", c.Scan.WALCheckSchedule, err))
	}
	if c.Scan.SnapshotDepth < 0 {
		errs = append(errs, errors.New("snapshot depth must not be negative"))
	}

	h := c.Health
	if h.VolumeFactor <= 0 || h.ChurningVolumeFactor <= 0 {
		errs = append(errs, errors.New("volume factors must be positive"))
	}
	if h.DistributionDecline < 0 || h.FollowThroughGain < 0 || h.ChurningMaxMove < 0 || h.ExtendedPercent < 0 {
		errs = append(errs, errors.New("percent thresholds must not be negative"))
	}
	if h.FollowThroughMinDay < 1 || h.FollowThroughLookback < h.FollowThroughMinDay {
		errs = append(errs, errors.New("follow-through lookback must cover the minimum rally day"))
	}
	if h.PocketPivotLookback < 1 {
		errs = append(errs, errors.New("pocket pivot lookback must be positive"))
	}
	if h.BadCloseRatio < 0 || h.GoodCloseRatio > 1 || h.BadCloseRatio >= h.GoodCloseRatio {
		errs = append(errs, errors.New("close ratios must satisfy 0 <= bad < good <= 1"))
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvAsInt64List parses a comma-separated list of IDs
func getEnvAsInt64List(key string) ([]int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in %s: %w", part, key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
