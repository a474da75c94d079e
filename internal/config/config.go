package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress            string
	DatabaseURI           string
	DispatchAddress       string
	PaymentAddress        string
	NotifyAddress         string
	AuthSecret            string
	AdminToken            string
	WebhookSecret         string
	MinSubscriptionTotal  decimal.Decimal
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	NotifyPollInterval    time.Duration
	WorkerPoolSize        int
	NotifyBatchSize       int
	ShutdownTimeout       time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultAuthSecret         = "change-me-in-production"
	defaultNotifyPollInterval = 3 * time.Second
	defaultWorkerPoolSize     = 4
	defaultShutdownTimeout    = 10 * time.Second
	defaultNotifyBatchSize    = 32
)

var (
	defaultMinSubscriptionTotal  = decimal.NewFromInt(100)
	defaultDeliveryFee           = decimal.NewFromInt(5)
	defaultFreeDeliveryThreshold = decimal.NewFromInt(100)
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:            getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:           getString(lookup, "DATABASE_URI", ""),
		DispatchAddress:       getString(lookup, "DISPATCH_ADDRESS", ""),
		PaymentAddress:        getString(lookup, "PAYMENT_ADDRESS", ""),
		NotifyAddress:         getString(lookup, "NOTIFY_ADDRESS", ""),
		AuthSecret:            getString(lookup, "AUTH_SECRET", defaultAuthSecret),
		AdminToken:            getString(lookup, "ADMIN_TOKEN", ""),
		WebhookSecret:         getString(lookup, "WEBHOOK_SECRET", ""),
		MinSubscriptionTotal:  getDecimal(lookup, "MIN_SUBSCRIPTION_TOTAL", defaultMinSubscriptionTotal),
		DeliveryFee:           getDecimal(lookup, "DELIVERY_FEE", defaultDeliveryFee),
		FreeDeliveryThreshold: getDecimal(lookup, "FREE_DELIVERY_THRESHOLD", defaultFreeDeliveryThreshold),
		NotifyPollInterval:    getDuration(lookup, "NOTIFY_POLL_INTERVAL", defaultNotifyPollInterval),
		WorkerPoolSize:        getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		NotifyBatchSize:       getInt(lookup, "NOTIFY_BATCH_SIZE", defaultNotifyBatchSize),
		ShutdownTimeout:       getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("platewise", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.NotifyPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.DispatchAddress, "dispatch", cfg.DispatchAddress, "Delivery provider base URL")
	fs.StringVar(&cfg.PaymentAddress, "payment", cfg.PaymentAddress, "Billing provider base URL")
	fs.StringVar(&cfg.NotifyAddress, "notify", cfg.NotifyAddress, "Notification gateway base URL")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.AdminToken, "admin-token", cfg.AdminToken, "Token for the admin refund endpoint")
	fs.StringVar(&cfg.WebhookSecret, "webhook-secret", cfg.WebhookSecret, "Shared secret for payment webhooks")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent notification workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between notification queue polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.NotifyBatchSize, "notify-batch", cfg.NotifyBatchSize, "Maximum notifications per polling batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.NotifyPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("AUTH_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.NotifyBatchSize <= 0 {
		cfg.NotifyBatchSize = defaultNotifyBatchSize
	}

	if cfg.NotifyPollInterval <= 0 {
		cfg.NotifyPollInterval = defaultNotifyPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.MinSubscriptionTotal.IsNegative() {
		return nil, fmt.Errorf("minimum subscription total must not be negative")
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.DispatchAddress == "" {
		return nil, fmt.Errorf("dispatch provider address must be provided")
	}

	if cfg.PaymentAddress == "" {
		return nil, fmt.Errorf("payment provider address must be provided")
	}

	if cfg.NotifyAddress == "" {
		return nil, fmt.Errorf("notification gateway address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getDecimal(lookup envLookup, key string, def decimal.Decimal) decimal.Decimal {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return def
}
