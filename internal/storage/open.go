package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
)

// Options selects and configures a driver.
type Options struct {
	Driver    string
	Dir       string
	KeyPrefix string
	Redis     database.RedisConfig
	// SlowCommand logs redis commands slower than this. Zero disables it.
	SlowCommand time.Duration
}

// Opened is a ready store plus what the caller must wire around it.
type Opened struct {
	Store Store
	// Check is non-nil for drivers backed by a remote service.
	Check health.Checker
	Close func() error
}

// Open constructs the configured driver. For redis it also registers the
// connection pool collector on reg when reg is non-nil.
func Open(ctx context.Context, opts Options, reg prometheus.Registerer, logger *slog.Logger) (*Opened, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return &Opened{Store: NewMemory(), Close: func() error { return nil }}, nil

	case DriverFile:
		f, err := NewFile(opts.Dir, logger)
		if err != nil {
			return nil, err
		}
		return &Opened{Store: f, Close: func() error { return nil }}, nil

	case DriverRedis:
		client, err := database.NewRedisClient(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		database.SetSlowCommandLogging(opts.SlowCommand, logger)
		if reg != nil {
			if err := database.RegisterPoolMetrics(reg, client, "storefront"); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("register redis pool metrics: %w", err)
			}
		}
		return &Opened{
			Store: NewRedis(client, opts.KeyPrefix, logger),
			Check: database.RedisChecker(client),
			Close: client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
