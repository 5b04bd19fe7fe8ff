package eventlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventledger/eventledger/internal/ledger"
)

const redisKeyPrefix = "ledger:v1:events:"

// RedisStore keeps each account history in a Redis list, one JSON record per
// element. RPUSH gives append-only ordering.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	logger  *slog.Logger
	corrupt quarantine
}

// NewRedisStore builds a Redis-backed store. An empty prefix uses the default
// key namespace.
func NewRedisStore(client *redis.Client, prefix string, logger *slog.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if prefix == "" {
		prefix = redisKeyPrefix
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}, nil
}

// Key returns the list key holding accountID's history.
func (s *RedisStore) Key(accountID string) string {
	return s.prefix + accountID
}

// Load returns the ordered history of accountID. A missing key is an empty
// history; a malformed element or a key of the wrong type is corruption.
func (s *RedisStore) Load(ctx context.Context, accountID string) ([]ledger.Event, error) {
	key := s.Key(accountID)
	kind, err := s.client.Type(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("inspect event list: %w", err)
	}
	switch kind {
	case "none":
		return []ledger.Event{}, nil
	case "list":
	default:
		s.logger.Warn("event log key has wrong type, treated as empty",
			slog.String("account_id", accountID), slog.String("type", kind))
		s.corrupt.mark(accountID)
		return []ledger.Event{}, nil
	}

	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read event list: %w", err)
	}
	events := make([]ledger.Event, 0, len(raw))
	for _, r := range raw {
		evt, err := ledger.UnmarshalRecord([]byte(r))
		if err != nil {
			if ledger.IsCorrupt(err) {
				s.logger.Warn("corrupt event record treated as empty history",
					slog.String("account_id", accountID), slog.Any("error", err))
				s.corrupt.mark(accountID)
				return []ledger.Event{}, nil
			}
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

// Append pushes evt to the tail of the account list.
func (s *RedisStore) Append(ctx context.Context, accountID string, evt ledger.Event) error {
	raw, err := ledger.MarshalRecord(evt)
	if err != nil {
		return fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
	}
	key := s.Key(accountID)
	if s.corrupt.take(accountID) {
		aside := quarantineName(key, time.Now())
		if err := s.client.Rename(ctx, key, aside).Err(); err != nil && !isNoSuchKey(err) {
			s.corrupt.mark(accountID)
			return fmt.Errorf("%w: quarantine corrupt event list: %w", ledger.ErrPersistence, err)
		}
		s.logger.Warn("corrupt event list moved aside",
			slog.String("account_id", accountID), slog.String("key", aside))
	}
	if err := s.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("%w: push event: %w", ledger.ErrPersistence, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such key")
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
