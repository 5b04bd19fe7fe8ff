package eventlog

import (
	"fmt"
	"sync"
	"time"
)

// quarantine remembers accounts whose stored history was found corrupt on
// load. The next append moves the corrupt history aside before writing, so a
// fresh history starts empty while the old bytes stay untouched.
type quarantine struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (q *quarantine) mark(accountID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ids == nil {
		q.ids = make(map[string]struct{})
	}
	q.ids[accountID] = struct{}{}
}

// take reports whether accountID was marked and clears the mark.
func (q *quarantine) take(accountID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.ids[accountID]; !ok {
		return false
	}
	delete(q.ids, accountID)
	return true
}

func quarantineName(name string, now time.Time) string {
	return fmt.Sprintf("%s#corrupt-%d", name, now.UnixNano())
}
