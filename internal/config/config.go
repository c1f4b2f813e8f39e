// Package config resolves runtime configuration for the core: defaults,
// then an optional YAML file, then TH_-prefixed environment variables, the
// last one winning. A .env file is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store driver names accepted by Config.StoreDriver.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config carries everything the binaries need to wire the core.
type Config struct {
	StoreDriver string // memory | file | postgres | redis
	StatePath   string // file driver

	PostgresDSN string // postgres driver

	RedisAddr     string // redis driver
	RedisPassword string
	RedisDB       int

	// Settlement delays for the payment workflow.
	SettleDelayFirst  time.Duration
	SettleDelaySecond time.Duration

	// Payment creation throttle; zero disables it.
	PaymentRatePerSecond float64
	PaymentRateBurst     int

	// Demo feed interval for cmd/paydemo.
	DemoInterval time.Duration
}

// fileConfig mirrors Config for YAML decoding; durations are strings in
// time.ParseDuration form ("800ms", "2s").
type fileConfig struct {
	StoreDriver          string  `yaml:"store_driver"`
	StatePath            string  `yaml:"state_path"`
	PostgresDSN          string  `yaml:"postgres_dsn"`
	RedisAddr            string  `yaml:"redis_addr"`
	RedisPassword        string  `yaml:"redis_password"`
	RedisDB              *int    `yaml:"redis_db"`
	SettleDelayFirst     string  `yaml:"settle_delay_first"`
	SettleDelaySecond    string  `yaml:"settle_delay_second"`
	PaymentRatePerSecond float64 `yaml:"payment_rate_per_second"`
	PaymentRateBurst     int     `yaml:"payment_rate_burst"`
	DemoInterval         string  `yaml:"demo_interval"`
}

func (f fileConfig) apply(cfg *Config) error {
	if f.StoreDriver != "" {
		cfg.StoreDriver = f.StoreDriver
	}
	if f.StatePath != "" {
		cfg.StatePath = f.StatePath
	}
	if f.PostgresDSN != "" {
		cfg.PostgresDSN = f.PostgresDSN
	}
	if f.RedisAddr != "" {
		cfg.RedisAddr = f.RedisAddr
	}
	if f.RedisPassword != "" {
		cfg.RedisPassword = f.RedisPassword
	}
	if f.RedisDB != nil {
		cfg.RedisDB = *f.RedisDB
	}
	if f.PaymentRatePerSecond > 0 {
		cfg.PaymentRatePerSecond = f.PaymentRatePerSecond
	}
	if f.PaymentRateBurst > 0 {
		cfg.PaymentRateBurst = f.PaymentRateBurst
	}
	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{f.SettleDelayFirst, &cfg.SettleDelayFirst},
		{f.SettleDelaySecond, &cfg.SettleDelaySecond},
		{f.DemoInterval, &cfg.DemoInterval},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("config: bad duration %q", d.raw)
		}
		*d.dst = parsed
	}
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		StoreDriver:       DriverFile,
		StatePath:         "data/vault.json",
		RedisAddr:         "localhost:6379",
		SettleDelayFirst:  800 * time.Millisecond,
		SettleDelaySecond: 900 * time.Millisecond,
		DemoInterval:      2 * time.Second,
	}
}

// Load resolves the effective configuration. The optional YAML file path
// comes from TH_CONFIG; environment variables override the file.
func Load() (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("TH_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := fc.apply(&cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.StoreDriver = envStr("TH_STORE_DRIVER", cfg.StoreDriver)
	cfg.StatePath = envStr("TH_STATE_PATH", cfg.StatePath)
	cfg.PostgresDSN = envStr("TH_PG_DSN", cfg.PostgresDSN)
	cfg.RedisAddr = envStr("TH_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envStr("TH_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = envInt("TH_REDIS_DB", cfg.RedisDB)
	cfg.SettleDelayFirst = envDuration("TH_SETTLE_DELAY_FIRST", cfg.SettleDelayFirst)
	cfg.SettleDelaySecond = envDuration("TH_SETTLE_DELAY_SECOND", cfg.SettleDelaySecond)
	cfg.PaymentRatePerSecond = envFloat("TH_PAYMENT_RATE", cfg.PaymentRatePerSecond)
	cfg.PaymentRateBurst = envInt("TH_PAYMENT_BURST", cfg.PaymentRateBurst)
	cfg.DemoInterval = envDuration("TH_DEMO_INTERVAL", cfg.DemoInterval)

	switch cfg.StoreDriver {
	case DriverMemory, DriverFile, DriverPostgres, DriverRedis:
	default:
		return Config{}, fmt.Errorf("config: unknown store driver %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == DriverPostgres && cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("config: postgres driver needs TH_PG_DSN")
	}
	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
