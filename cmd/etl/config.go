package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/storage/es"
	"github.com/DjordjeVuckovic/movies-etl/pkg/config/env"
	"github.com/DjordjeVuckovic/movies-etl/pkg/utils"
)

const (
	defaultStateFilePath = "./state/etl_state.json"
	defaultStartDate     = "2000-01-01 00:00:00"
	defaultSleepTime     = 20 * time.Second
	defaultEnvPath       = "cmd/etl/.env"
)

// dateLayouts are the accepted forms of START_DATE and -start-date.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

type cliConfig struct {
	StartDate     string
	Once          bool
	EnsureIndexes bool
	DeleteIndexes bool
}

func parseFlags(args []string) (cliConfig, error) {
	cfg := cliConfig{}

	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.StringVar(&cfg.StartDate, "start-date", "", "Force the first sweep to start from this date, ignoring checkpoints")
	fs.BoolVar(&cfg.Once, "once", false, "Run a single sweep and exit")
	fs.BoolVar(&cfg.EnsureIndexes, "ensure-indexes", false, "Create missing Elasticsearch indexes before syncing")
	fs.BoolVar(&cfg.DeleteIndexes, "delete-indexes", false, "Drop and recreate the Elasticsearch indexes (implies -ensure-indexes)")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	if cfg.DeleteIndexes {
		cfg.EnsureIndexes = true
	}
	return cfg, nil
}

// forcedStart returns the -start-date value, or nil when the flag was not given.
func (c cliConfig) forcedStart() (*time.Time, error) {
	if c.StartDate == "" {
		return nil, nil
	}
	t, err := parseDate(c.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid -start-date: %w", err)
	}
	return &t, nil
}

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type EtlConfig struct {
	PgConnStr           string
	Es                  es.ClientConfig
	StateFilePath       string
	StartDate           time.Time
	SleepTime           time.Duration
	PipelinesConfigPath string
	LogLevel            slog.Level
	LogFormat           string
}

func (as *AppConfig) Load() (*EtlConfig, error) {
	err := env.LoadDotEnv(as.ENV, defaultEnvPath)
	if err != nil {
		slog.Info("Failed to .env load environment variables, continuing with existing environment variables", "error", err)
	}

	return loadEnv()
}

func loadEnv() (*EtlConfig, error) {
	cfg := &EtlConfig{
		PgConnStr:           os.Getenv("PG_CONNECTION_STRING"),
		StateFilePath:       getEnvOr("STATE_FILE_PATH", defaultStateFilePath),
		PipelinesConfigPath: os.Getenv("PIPELINES_CONFIG_PATH"),
		LogFormat:           strings.ToLower(os.Getenv("LOG_FORMAT")),
		Es: es.ClientConfig{
			Addresses: utils.SplitAndTrim(os.Getenv("ES_ADDRESSES"), ","),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
		},
	}

	if cfg.PgConnStr == "" {
		return nil, errors.New("PG_CONNECTION_STRING environment variable is not set")
	}
	if len(cfg.Es.Addresses) == 0 {
		return nil, errors.New("ES_ADDRESSES environment variable is not set")
	}

	startDate, err := parseDate(getEnvOr("START_DATE", defaultStartDate))
	if err != nil {
		return nil, fmt.Errorf("invalid START_DATE: %w", err)
	}
	cfg.StartDate = startDate

	cfg.SleepTime = defaultSleepTime
	if raw := os.Getenv("SLEEP_TIME"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SLEEP_TIME: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SLEEP_TIME must be positive, got %s", d)
		}
		cfg.SleepTime = d
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDate reads a date in one of dateLayouts. Values without a zone are UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q, expected YYYY-MM-DD[ HH:MM:SS] or RFC3339", s)
}

func setupLogger(w io.Writer, level slog.Level, format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
		return
	}
	slog.SetLogLoggerLevel(level)
}
