package wallet

import (
	"context"
	"sync"

	"github.com/eventledger/eventledger/internal/ledger"
)

// Registry hands out a single Wallet per account id within a process, so
// every caller shares one in-memory owner of each account's history.
type Registry struct {
	mu      sync.Mutex
	store   ledger.Store
	opts    []Option
	wallets map[string]*Wallet
}

// NewRegistry builds a registry whose wallets are backed by store.
func NewRegistry(store ledger.Store, opts ...Option) *Registry {
	return &Registry{store: store, opts: opts, wallets: make(map[string]*Wallet)}
}

// Get returns the wallet for accountID, opening it on first use.
func (r *Registry) Get(ctx context.Context, accountID string) (*Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.wallets[accountID]; ok {
		return w, nil
	}
	w, err := Open(ctx, r.store, accountID, r.opts...)
	if err != nil {
		return nil, err
	}
	r.wallets[accountID] = w
	return w, nil
}

// Forget drops the cached wallet for accountID. The next Get reloads it from
// the store.
func (r *Registry) Forget(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.wallets, accountID)
}
