// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/imrishuroy/go-rental-billing/internal/aws"
	"github.com/imrishuroy/go-rental-billing/internal/idempotency"
	"github.com/imrishuroy/go-rental-billing/internal/invoice"
	"github.com/imrishuroy/go-rental-billing/internal/store"
)

// ErrMissingDatabaseURL is returned by Load when DATABASE_URL is unset.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

const defaultListenAddr = ":8080"

// Config is everything a billing binary needs to start.
type Config struct {
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RunLocal   bool
	ListenAddr string

	IdempotencyTable string
	IdempotencyTTL   time.Duration
	OrdersQueueURL   string
	MetricsNamespace string
	AWSRegion        string
	AWSEndpoint      string

	LogLevel  slog.Level
	LogFormat string

	Letterhead invoice.Letterhead
}

// Load reads the environment. Only DATABASE_URL is required.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RunLocal:         os.Getenv("RUN_LOCAL") == "true",
		ListenAddr:       getenv("LISTEN_ADDR", defaultListenAddr),
		IdempotencyTable: os.Getenv("IDEMPOTENCY_TABLE"),
		OrdersQueueURL:   os.Getenv("ORDERS_QUEUE_URL"),
		MetricsNamespace: os.Getenv("METRICS_NAMESPACE"),
		AWSRegion:        os.Getenv("AWS_REGION"),
		AWSEndpoint:      os.Getenv("AWS_ENDPOINT_OVERRIDE"),
		LogFormat:        strings.ToLower(getenv("LOG_FORMAT", "json")),
		Letterhead:       letterhead(),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	var err error
	if cfg.DBMaxConns, err = int32Env("DB_MAX_CONNS"); err != nil {
		return Config{}, err
	}
	if cfg.DBMinConns, err = int32Env("DB_MIN_CONNS"); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.DBMinConns, cfg.DBMaxConns)
	}

	cfg.IdempotencyTTL = idempotency.DefaultTTL
	if s := os.Getenv("IDEMPOTENCY_TTL"); s != "" {
		if cfg.IdempotencyTTL, err = time.ParseDuration(s); err != nil || cfg.IdempotencyTTL <= 0 {
			return Config{}, fmt.Errorf("IDEMPOTENCY_TTL: invalid duration %q", s)
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT: want json or text, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// Store returns the database pool settings.
func (c Config) Store() store.Config {
	return store.Config{URL: c.DatabaseURL, MaxConns: c.DBMaxConns, MinConns: c.DBMinConns}
}

// AWS returns the SDK settings.
func (c Config) AWS() aws.Settings {
	return aws.Settings{Region: c.AWSRegion, Endpoint: c.AWSEndpoint}
}

// UsesAWS reports whether any AWS-backed feature is configured.
func (c Config) UsesAWS() bool {
	return c.IdempotencyTable != "" || c.OrdersQueueURL != "" || c.MetricsNamespace != ""
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func letterhead() invoice.Letterhead {
	lh := invoice.DefaultLetterhead
	lh.Name = getenv("BUSINESS_NAME", lh.Name)
	lh.Address = os.Getenv("BUSINESS_ADDRESS")
	lh.ThankYou = getenv("INVOICE_THANKS", lh.ThankYou)
	for _, p := range strings.Split(os.Getenv("BUSINESS_PHONES"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			lh.Phones = append(lh.Phones, p)
		}
	}
	return lh
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func int32Env(key string) (int32, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: want a non-negative integer, got %q", key, s)
	}
	return int32(n), nil
}
