package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventledger/eventledger/internal/id"
	"github.com/eventledger/eventledger/internal/ledger"
)

// Wallet is the ledger aggregate for one account. It owns the account's
// in-memory history and derives the balance from it by replay.
type Wallet struct {
	mu        sync.Mutex
	accountID string
	store     ledger.Store
	logger    *slog.Logger
	now       func() time.Time

	events  []ledger.Event
	byTxID  map[string]int
	balance decimal.Decimal
}

// Option customizes a Wallet at Open time.
type Option func(*Wallet)

// WithLogger sets the structured logger used by the wallet.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wallet) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp new events.
func WithClock(now func() time.Time) Option {
	return func(w *Wallet) {
		if now != nil {
			w.now = now
		}
	}
}

// Open loads the history of accountID from store and replays it. A missing or
// corrupt history opens as an empty wallet with a zero balance.
func Open(ctx context.Context, store ledger.Store, accountID string, opts ...Option) (*Wallet, error) {
	if store == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if err := ledger.ValidateAccountID(accountID); err != nil {
		return nil, fmt.Errorf("open %q: %w", accountID, err)
	}

	w := &Wallet{
		accountID: accountID,
		store:     store,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}

	events, err := store.Load(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load events for %s: %w", accountID, err)
	}
	balance, err := ledger.Replay(events)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", accountID, err)
	}

	w.events = events
	w.balance = balance
	w.byTxID = make(map[string]int, len(events))
	for i, evt := range events {
		if _, seen := w.byTxID[evt.TransactionID]; !seen {
			w.byTxID[evt.TransactionID] = i
		}
	}

	w.logger.Debug("wallet opened",
		slog.String("account_id", accountID),
		slog.Int("events", len(events)),
		slog.String("balance", balance.String()))
	return w, nil
}

// AccountID returns the identifier of the account this wallet owns.
func (w *Wallet) AccountID() string {
	return w.accountID
}

// Balance returns the balance derived from the full history.
func (w *Wallet) Balance() decimal.Decimal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// History returns a copy of the ordered event history.
func (w *Wallet) History() []ledger.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ledger.Event, len(w.events))
	copy(out, w.events)
	return out
}

// Credit adds amount to the account. An empty transactionID is replaced by a
// generated one. Re-submitting a known transactionID is a successful no-op.
func (w *Wallet) Credit(ctx context.Context, amount decimal.Decimal, transactionID string) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !amount.IsPositive() {
		return Result{}, fmt.Errorf("credit %s: %w", amount, ledger.ErrInvalidAmount)
	}
	if transactionID == "" {
		transactionID = id.NewTransactionID()
	}
	if res, ok := w.duplicate(transactionID); ok {
		return res, nil
	}

	return w.apply(ctx, ledger.NewCredited(transactionID, amount, w.now()))
}

// Debit removes amount from the account. Checks run before any event exists:
// positive amount, then duplicate transaction id, then sufficient funds
// against the balance as it stands before this call.
func (w *Wallet) Debit(ctx context.Context, amount decimal.Decimal, transactionID string) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !amount.IsPositive() {
		return Result{}, fmt.Errorf("debit %s: %w", amount, ledger.ErrInvalidAmount)
	}
	if transactionID == "" {
		transactionID = id.NewTransactionID()
	}
	if res, ok := w.duplicate(transactionID); ok {
		return res, nil
	}
	if amount.GreaterThan(w.balance) {
		return Result{}, fmt.Errorf("cannot debit %s from %s: %w", amount, w.balance, ledger.ErrInsufficientFunds)
	}

	return w.apply(ctx, ledger.NewDebited(transactionID, amount, w.now()))
}

func (w *Wallet) duplicate(transactionID string) (Result, bool) {
	i, ok := w.byTxID[transactionID]
	if !ok {
		return Result{}, false
	}
	w.logger.Debug("duplicate transaction ignored",
		slog.String("account_id", w.accountID),
		slog.String("transaction_id", transactionID))
	return Result{Event: w.events[i], Balance: w.balance, Duplicate: true}, true
}

// apply persists evt and only then advances the in-memory history, so the
// wallet never reports an event the store did not accept.
func (w *Wallet) apply(ctx context.Context, evt ledger.Event) (Result, error) {
	if err := w.store.Append(ctx, w.accountID, evt); err != nil {
		if !errors.Is(err, ledger.ErrPersistence) {
			err = fmt.Errorf("%w: %w", ledger.ErrPersistence, err)
		}
		w.logger.Error("append event failed",
			slog.String("account_id", w.accountID),
			slog.String("event_id", evt.ID),
			slog.Any("error", err))
		return Result{}, fmt.Errorf("append %s: %w", evt.Kind, err)
	}

	w.events = append(w.events, evt)
	w.byTxID[evt.TransactionID] = len(w.events) - 1

	balance, err := ledger.Replay(w.events)
	if err != nil {
		return Result{}, fmt.Errorf("replay %s: %w", w.accountID, err)
	}
	w.balance = balance

	w.logger.Debug("event applied",
		slog.String("account_id", w.accountID),
		slog.String("event_id", evt.ID),
		slog.String("kind", evt.Kind.String()),
		slog.String("transaction_id", evt.TransactionID),
		slog.String("balance", balance.String()))
	return Result{Event: evt, Balance: balance}, nil
}
