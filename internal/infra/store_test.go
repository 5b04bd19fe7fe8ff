package infra

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventledger/eventledger/internal/config"
	"github.com/eventledger/eventledger/internal/eventlog"
	"github.com/eventledger/eventledger/internal/ledger"
	"github.com/eventledger/eventledger/internal/logging"
)

func TestOpenStoreDrivers(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		check  func(t *testing.T, s ledger.Store)
	}{
		{
			name:   "memory",
			mutate: func(c *config.Config) { c.StoreDriver = config.DriverMemory },
			check: func(t *testing.T, s ledger.Store) {
				assert.IsType(t, &ledger.MemoryStore{}, s)
			},
		},
		{
			name:   "file",
			mutate: func(c *config.Config) { c.StoreDriver = config.DriverFile; c.DataDir = filepath.Join(dir, "files") },
			check: func(t *testing.T, s ledger.Store) {
				assert.IsType(t, &eventlog.FileStore{}, s)
			},
		},
		{
			name:   "sqlite",
			mutate: func(c *config.Config) { c.StoreDriver = config.DriverSQLite; c.SQLitePath = filepath.Join(dir, "l.db") },
			check: func(t *testing.T, s ledger.Store) {
				assert.IsType(t, &eventlog.SQLiteStore{}, s)
			},
		},
		{
			name:   "redis",
			mutate: func(c *config.Config) { c.StoreDriver = config.DriverRedis; c.RedisURL = "redis://" + mr.Addr() },
			check: func(t *testing.T, s ledger.Store) {
				assert.IsType(t, &eventlog.RedisStore{}, s)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)

			b, err := OpenStore(context.Background(), cfg, logging.Discard())
			require.NoError(t, err)
			defer b.Close()

			tt.check(t, b.Store)
			require.NoError(t, b.Ping(context.Background()))
			events, err := b.Store.Load(context.Background(), "probe")
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestOpenStoreRedisExposesClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.StoreDriver = config.DriverRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	b, err := OpenStore(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	defer b.Close()
	require.NotNil(t, b.Redis)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.StoreDriver = "tape"
	_, err := OpenStore(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
}

func TestNewRedisClientRequiresURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "")
	require.Error(t, err)
}

func TestNewPostgresPoolRequiresURL(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), "")
	require.Error(t, err)
}
