package ledger

import (
	"context"
	"errors"
	"fmt"
)

// SeedRecords is a test helper that writes raw encoded records for an account
// when using the in-memory store, bypassing the codec.
func SeedRecords(s *MemoryStore, accountID string, raw ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range raw {
		s.records[accountID] = append(s.records[accountID], []byte(r))
	}
}

// FailingStore wraps a Store and fails every Append once Fail is set. It is a
// test helper for persistence failure paths.
type FailingStore struct {
	Store
	Fail bool
}

// Append delegates to the wrapped store unless Fail is set.
func (s *FailingStore) Append(ctx context.Context, accountID string, evt Event) error {
	if s.Fail {
		return fmt.Errorf("%w: %w", ErrPersistence, errors.New("disk full"))
	}
	return s.Store.Append(ctx, accountID, evt)
}
