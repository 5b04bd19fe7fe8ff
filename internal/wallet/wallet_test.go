package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/eventledger/eventledger/internal/ledger"
)

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func openWallet(t *testing.T, store ledger.Store, accountID string) *Wallet {
	t.Helper()
	w, err := Open(context.Background(), store, accountID)
	if err != nil {
		t.Fatalf("open %s: %v", accountID, err)
	}
	return w
}

func mustCredit(t *testing.T, w *Wallet, amount, txID string) Result {
	t.Helper()
	res, err := w.Credit(context.Background(), amt(amount), txID)
	if err != nil {
		t.Fatalf("credit %s %s: %v", amount, txID, err)
	}
	return res
}

func mustDebit(t *testing.T, w *Wallet, amount, txID string) Result {
	t.Helper()
	res, err := w.Debit(context.Background(), amt(amount), txID)
	if err != nil {
		t.Fatalf("debit %s %s: %v", amount, txID, err)
	}
	return res
}

func assertBalance(t *testing.T, w *Wallet, want string, events int) {
	t.Helper()
	if !w.Balance().Equal(amt(want)) {
		t.Fatalf("expected balance %s, got %s", want, w.Balance())
	}
	if got := len(w.History()); got != events {
		t.Fatalf("expected %d events, got %d", events, got)
	}
}

func TestWallet_OpenEmpty(t *testing.T) {
	w := openWallet(t, ledger.NewMemoryStore(), "W1")
	assertBalance(t, w, "0", 0)
	if w.AccountID() != "W1" {
		t.Fatalf("unexpected account id %q", w.AccountID())
	}
}

func TestWallet_ReplayScenarioSurvivesReopen(t *testing.T) {
	store := ledger.NewMemoryStore()
	w := openWallet(t, store, "math-test")

	mustCredit(t, w, "100", "e1")
	assertBalance(t, w, "100", 1)
	mustDebit(t, w, "30", "e2")
	assertBalance(t, w, "70", 2)
	mustCredit(t, w, "50", "e3")
	assertBalance(t, w, "120", 3)
	mustDebit(t, w, "20", "e4")
	assertBalance(t, w, "100", 4)

	reopened := openWallet(t, store, "math-test")
	assertBalance(t, reopened, "100", 4)

	want := []struct {
		tx   string
		kind ledger.Kind
	}{{"e1", ledger.KindCredited}, {"e2", ledger.KindDebited}, {"e3", ledger.KindCredited}, {"e4", ledger.KindDebited}}
	original := w.History()
	for i, evt := range reopened.History() {
		if evt.TransactionID != want[i].tx || evt.Kind != want[i].kind {
			t.Fatalf("event %d: got %s/%s want %s/%s", i, evt.TransactionID, evt.Kind, want[i].tx, want[i].kind)
		}
		if evt.ID != original[i].ID {
			t.Fatalf("event %d id changed across reopen: %s != %s", i, evt.ID, original[i].ID)
		}
	}
}

func TestWallet_IdempotentCredit(t *testing.T) {
	w := openWallet(t, ledger.NewMemoryStore(), "test-ledger-clean")

	first := mustCredit(t, w, "100", "fund")
	second := mustCredit(t, w, "100", "fund")

	assertBalance(t, w, "100", 1)
	if first.Duplicate || !second.Duplicate {
		t.Fatalf("unexpected duplicate flags: first=%v second=%v", first.Duplicate, second.Duplicate)
	}
	if second.Event.ID != first.Event.ID {
		t.Fatalf("duplicate should report the original event %s, got %s", first.Event.ID, second.Event.ID)
	}
}

func TestWallet_IdempotentDebit(t *testing.T) {
	store := ledger.NewMemoryStore()
	w := openWallet(t, store, "test-ledger-clean")
	mustCredit(t, w, "200", "fund")

	mustDebit(t, w, "50", "test-debit-456")
	mustDebit(t, w, "50", "test-debit-456")
	assertBalance(t, w, "150", 2)

	stored, err := store.Load(context.Background(), "test-ledger-clean")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("duplicate debit must not reach the store, got %d events", len(stored))
	}
}

func TestWallet_DuplicateDebitAfterBalanceDropped(t *testing.T) {
	w := openWallet(t, ledger.NewMemoryStore(), "acct")
	mustCredit(t, w, "100", "fund")
	mustDebit(t, w, "80", "rent")

	res := mustDebit(t, w, "80", "rent")
	if !res.Duplicate {
		t.Fatal("expected duplicate no-op")
	}
	assertBalance(t, w, "20", 2)
}

func TestWallet_InsufficientFunds(t *testing.T) {
	store := ledger.NewMemoryStore()
	w := openWallet(t, store, "acct")
	mustCredit(t, w, "50", "fund")

	_, err := w.Debit(context.Background(), amt("100"), "overdraft")
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	assertBalance(t, w, "50", 1)

	// The rejected id was never recorded, so it can be retried once funded.
	mustCredit(t, w, "60", "topup")
	mustDebit(t, w, "100", "overdraft")
	assertBalance(t, w, "10", 3)
}

func TestWallet_DebitEntireBalance(t *testing.T) {
	w := openWallet(t, ledger.NewMemoryStore(), "acct")
	mustCredit(t, w, "10.05", "a")
	mustDebit(t, w, "10.05", "b")
	assertBalance(t, w, "0", 2)
}

func TestWallet_RejectsNonPositiveAmounts(t *testing.T) {
	store := ledger.NewMemoryStore()
	w := openWallet(t, store, "acct")
	ctx := context.Background()

	if _, err := w.Credit(ctx, amt("0"), "zero"); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("credit 0: expected invalid amount, got %v", err)
	}
	if _, err := w.Credit(ctx, amt("-5"), "negative"); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("credit -5: expected invalid amount, got %v", err)
	}
	if _, err := w.Debit(ctx, amt("0"), "zero"); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("debit 0: expected invalid amount, got %v", err)
	}
	assertBalance(t, w, "0", 0)

	stored, _ := store.Load(ctx, "acct")
	if len(stored) != 0 {
		t.Fatalf("invalid amounts must not be persisted, got %d", len(stored))
	}
}

func TestWallet_ValidationBeforeIdempotency(t *testing.T) {
	w := openWallet(t, ledger.NewMemoryStore(), "acct")
	mustCredit(t, w, "10", "fund")

	// A known id with an invalid amount still fails validation.
	if _, err := w.Credit(context.Background(), amt("-1"), "fund"); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestWallet_GeneratesTransactionIDs(t *testing.T) {
	w := openWallet(t, ledger.NewMemoryStore(), "uuid-test")
	first := mustCredit(t, w, "100", "")
	second := mustCredit(t, w, "100", "")

	if first.Event.TransactionID == "" || second.Event.TransactionID == "" {
		t.Fatal("expected generated transaction ids")
	}
	if first.Event.TransactionID == second.Event.TransactionID {
		t.Fatal("generated transaction ids must differ")
	}
	assertBalance(t, w, "200", 2)
}

func TestWallet_HistoryIsACopy(t *testing.T) {
	w := openWallet(t, ledger.NewMemoryStore(), "acct")
	mustCredit(t, w, "10", "a")

	snapshot := w.History()
	snapshot[0].Amount = amt("999999")
	snapshot[0].TransactionID = "tampered"
	_ = append(snapshot, ledger.Event{})

	history := w.History()
	if history[0].TransactionID != "a" || !history[0].Amount.Equal(amt("10")) {
		t.Fatalf("internal history was mutated: %+v", history[0])
	}
	assertBalance(t, w, "10", 1)
}

func TestWallet_PersistenceFailureDoesNotAdvance(t *testing.T) {
	store := &ledger.FailingStore{Store: ledger.NewMemoryStore()}
	w := openWallet(t, store, "acct")
	mustCredit(t, w, "40", "fund")

	store.Fail = true
	_, err := w.Credit(context.Background(), amt("10"), "lost")
	if !errors.Is(err, ledger.ErrPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	_, err = w.Debit(context.Background(), amt("10"), "lost-debit")
	if !errors.Is(err, ledger.ErrPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	assertBalance(t, w, "40", 1)

	// The failed id is not considered seen; a retry applies it.
	store.Fail = false
	res := mustCredit(t, w, "10", "lost")
	if res.Duplicate {
		t.Fatal("retry after failed persist must not be a duplicate")
	}
	assertBalance(t, w, "50", 2)
}

func TestWallet_CorruptStorageOpensEmpty(t *testing.T) {
	store := ledger.NewMemoryStore()
	ledger.SeedRecords(store, "user-1", `invalid json`)

	w := openWallet(t, store, "user-1")
	assertBalance(t, w, "0", 0)
}

func TestWallet_UnknownEventKindIsFatal(t *testing.T) {
	store := ledger.NewMemoryStore()
	ledger.SeedRecords(store, "user-1",
		`{"event_id":"x","timestamp":"2026-01-01T00:00:00Z","event_type":"FundsReserved","transaction_id":"t","payload":{"amount":"1"}}`)

	_, err := Open(context.Background(), store, "user-1")
	if !errors.Is(err, ledger.ErrUnknownEventKind) {
		t.Fatalf("expected unknown event kind, got %v", err)
	}
}

func TestWallet_RejectsInvalidAccountID(t *testing.T) {
	_, err := Open(context.Background(), ledger.NewMemoryStore(), "../escape")
	if !errors.Is(err, ledger.ErrInvalidAccountID) {
		t.Fatalf("expected invalid account id, got %v", err)
	}
}

func TestWallet_ConcurrentCredits(t *testing.T) {
	store := ledger.NewMemoryStore()
	w := openWallet(t, store, "acct")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every id is submitted twice; only one of each may land.
			txID := fmt.Sprintf("tx-%d", i%10)
			if _, err := w.Credit(context.Background(), amt("1"), txID); err != nil {
				t.Errorf("credit %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	assertBalance(t, w, "10", 10)
	reopened := openWallet(t, store, "acct")
	assertBalance(t, reopened, "10", 10)
}
