package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != DriverFile {
		t.Fatalf("default driver: %s", cfg.StoreDriver)
	}
	if cfg.SettleDelayFirst != 800*time.Millisecond || cfg.SettleDelaySecond != 900*time.Millisecond {
		t.Fatalf("default delays: %v %v", cfg.SettleDelayFirst, cfg.SettleDelaySecond)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TH_STORE_DRIVER", DriverMemory)
	t.Setenv("TH_SETTLE_DELAY_FIRST", "50ms")
	t.Setenv("TH_PAYMENT_RATE", "2.5")
	t.Setenv("TH_PAYMENT_BURST", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != DriverMemory {
		t.Fatalf("driver override: %s", cfg.StoreDriver)
	}
	if cfg.SettleDelayFirst != 50*time.Millisecond {
		t.Fatalf("delay override: %v", cfg.SettleDelayFirst)
	}
	if cfg.PaymentRatePerSecond != 2.5 || cfg.PaymentRateBurst != 4 {
		t.Fatalf("rate override: %v %v", cfg.PaymentRatePerSecond, cfg.PaymentRateBurst)
	}
}

func TestYAMLFileWithEnvWinning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.yaml")
	body := "store_driver: redis\nredis_addr: cache:6379\ndemo_interval: 5s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TH_CONFIG", path)
	t.Setenv("TH_REDIS_ADDR", "other:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreDriver != DriverRedis {
		t.Fatalf("yaml driver: %s", cfg.StoreDriver)
	}
	if cfg.RedisAddr != "other:6379" {
		t.Fatalf("env must win over yaml: %s", cfg.RedisAddr)
	}
	if cfg.DemoInterval != 5*time.Second {
		t.Fatalf("yaml demo interval: %v", cfg.DemoInterval)
	}
}

func TestRejectsUnknownDriver(t *testing.T) {
	t.Setenv("TH_STORE_DRIVER", "cassandra")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestPostgresNeedsDSN(t *testing.T) {
	t.Setenv("TH_STORE_DRIVER", DriverPostgres)
	t.Setenv("TH_PG_DSN", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DSN")
	}
}
