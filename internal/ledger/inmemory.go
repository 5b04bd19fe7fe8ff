package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory Store useful for unit tests and
// local development. Events are kept in their encoded form so reads go
// through the same codec as the durable backends.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][][]byte
}

// NewMemoryStore creates an empty in-memory event log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][][]byte)}
}

// Load returns the ordered history stored for accountID.
func (s *MemoryStore) Load(_ context.Context, accountID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[accountID]
	events := make([]Event, 0, len(stored))
	for _, raw := range stored {
		evt, err := UnmarshalRecord(raw)
		if err != nil {
			if IsCorrupt(err) {
				return []Event{}, nil
			}
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

// Append adds evt to the end of the account history.
func (s *MemoryStore) Append(_ context.Context, accountID string, evt Event) error {
	raw, err := MarshalRecord(evt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[accountID] = append(s.records[accountID], raw)
	return nil
}
