package config

import (
	"fmt"
	"github.com/shopspring/decimal"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr     string
	RedisAddr    string
	KafkaBrokers []string
	ServiceName  string
	Env          string
	LogLevel     string

	// Checkout
	TaxRate       decimal.Decimal
	OrderSeqStart int

	// Ledger rejects backwards fulfilment moves (Delivered -> Processing) when set.
	StrictOrderTransitions bool

	SeedCatalog bool

	// Notifier consumer
	NotifyGroup       string
	NotifyWorkers     int
	NotifyMetricsAddr string
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8081"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		ServiceName:  getenv("SERVICE_NAME", "storefront-api"),
		Env:          getenv("APP_ENV", "development"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		NotifyGroup:  getenv("NOTIFY_GROUP", "stock-notifier"),

		NotifyMetricsAddr: getenv("NOTIFY_METRICS_ADDR", ":9102"),
	}

	rate, err := decimal.NewFromString(getenv("TAX_RATE", "0.08"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	if rate.IsNegative() {
		return Config{}, fmt.Errorf("TAX_RATE must be >= 0")
	}
	cfg.TaxRate = rate

	if cfg.OrderSeqStart, err = getenvInt("ORDER_SEQ_START", 1025); err != nil {
		return Config{}, fmt.Errorf("invalid ORDER_SEQ_START: %w", err)
	}
	if cfg.NotifyWorkers, err = getenvInt("NOTIFY_WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("invalid NOTIFY_WORKERS: %w", err)
	}
	if cfg.NotifyWorkers <= 0 {
		return Config{}, fmt.Errorf("NOTIFY_WORKERS must be > 0")
	}
	if cfg.StrictOrderTransitions, err = getenvBool("STRICT_ORDER_TRANSITIONS", false); err != nil {
		return Config{}, fmt.Errorf("invalid STRICT_ORDER_TRANSITIONS: %w", err)
	}
	if cfg.SeedCatalog, err = getenvBool("SEED_CATALOG", true); err != nil {
		return Config{}, fmt.Errorf("invalid SEED_CATALOG: %w", err)
	}
	return cfg, nil
}

func (c Config) Development() bool { return c.Env == "development" }

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func getenvBool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
