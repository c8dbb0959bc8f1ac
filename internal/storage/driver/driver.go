// Package driver opens the storage.Source selected by configuration.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/airopshq/airops/internal/config"
	"github.com/airopshq/airops/internal/storage"
	"github.com/airopshq/airops/internal/storage/clickhouse"
	"github.com/airopshq/airops/internal/storage/memory"
	"github.com/airopshq/airops/internal/storage/postgres"
)

// DemoMonths is how much history the memory driver generates
const DemoMonths = 24

// Open creates and pings the configured source
func Open(ctx context.Context, cfg config.DatabaseConfig) (storage.Source, error) {
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverPgx:
		source, err := postgres.Open(ctx, postgres.Config{
			Driver:          cfg.Driver,
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		return source, nil
	case config.DriverClickHouse:
		source, err := clickhouse.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return source, nil
	case config.DriverMemory:
		return memory.NewDemo(time.Now().UTC(), DemoMonths), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}
