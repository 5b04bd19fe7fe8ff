package infra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/eventledger/eventledger/internal/config"
	"github.com/eventledger/eventledger/internal/eventlog"
	"github.com/eventledger/eventledger/internal/ledger"
)

// Backend is an opened event store together with the connections it owns.
type Backend struct {
	Store  ledger.Store
	Driver string
	// Redis is set when the redis driver opened a client; callers may reuse
	// it for caching.
	Redis *redis.Client

	pingers []func(context.Context) error
	closers []func() error
}

// OpenStore connects the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Driver: cfg.StoreDriver}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		b.Store = ledger.NewMemoryStore()
	case config.DriverFile:
		fs, err := eventlog.NewFileStore(cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
		b.Store = fs
	case config.DriverSQLite:
		db, err := eventlog.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		b.Store = db
		b.pingers = append(b.pingers, db.Ping)
		b.closers = append(b.closers, db.Close)
	case config.DriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg, err := eventlog.NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		b.Store = pg
		b.pingers = append(b.pingers, pg.Ping)
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
	case config.DriverRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		rs, err := eventlog.NewRedisStore(client, "", logger)
		if err != nil {
			client.Close()
			return nil, err
		}
		b.Store = rs
		b.Redis = client
		b.pingers = append(b.pingers, rs.Ping)
		b.closers = append(b.closers, client.Close)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	logger.Info("event store opened", slog.String("driver", cfg.StoreDriver))
	return b, nil
}

// Ping checks every connection the backend owns. Backends without a
// connection always report healthy.
func (b *Backend) Ping(ctx context.Context) error {
	for _, ping := range b.pingers {
		if err := ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}
