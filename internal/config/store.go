package config

import (
	"fmt"

	"trustharbor.org/internal/kv"
	"trustharbor.org/internal/kv/pg"
	"trustharbor.org/internal/kv/redisstore"
)

// OpenStore builds the key-value store selected by cfg.StoreDriver. The
// postgres and redis drivers connect lazily; a bad endpoint surfaces on
// first use, not here.
func OpenStore(cfg Config) (kv.Store, error) {
	switch cfg.StoreDriver {
	case DriverMemory:
		return kv.NewMemory(), nil
	case DriverFile:
		return kv.OpenFile(cfg.StatePath)
	case DriverPostgres:
		return pg.Open(cfg.PostgresDSN)
	case DriverRedis:
		return redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	default:
		return nil, fmt.Errorf("config: unknown store driver %q", cfg.StoreDriver)
	}
}
