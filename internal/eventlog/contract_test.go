package eventlog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventledger/eventledger/internal/ledger"
	"github.com/eventledger/eventledger/internal/wallet"
)

// storeHarness gives the contract tests a fresh store plus a way to damage
// one account's stored history in a backend-specific way.
type storeHarness struct {
	store   ledger.Store
	corrupt func(t *testing.T, accountID string)
	unknown func(t *testing.T, accountID string)
}

func runStoreContract(t *testing.T, newHarness func(t *testing.T) storeHarness) {
	t.Run("missing account is empty", func(t *testing.T) {
		h := newHarness(t)
		events, err := h.store.Load(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("append preserves order and content", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
		want := []ledger.Event{
			ledger.NewCredited("e1", decimal.RequireFromString("100"), base),
			ledger.NewDebited("e2", decimal.RequireFromString("30.25"), base.Add(time.Minute)),
			ledger.NewCredited("e3", decimal.RequireFromString("0.000001"), base.Add(2*time.Minute)),
		}
		for i, evt := range want {
			require.NoError(t, h.store.Append(ctx, "acct", evt))

			got, err := h.store.Load(ctx, "acct")
			require.NoError(t, err)
			require.Len(t, got, i+1)
		}

		got, err := h.store.Load(ctx, "acct")
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.Equal(t, want[i].Kind, got[i].Kind)
			assert.Equal(t, want[i].TransactionID, got[i].TransactionID)
			assert.True(t, want[i].Amount.Equal(got[i].Amount), "amount %d", i)
			assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), "timestamp %d", i)
		}

		other, err := h.store.Load(ctx, "other")
		require.NoError(t, err)
		assert.Empty(t, other, "accounts must not share history")
	})

	t.Run("wallet survives reopen", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()

		w1, err := wallet.Open(ctx, h.store, "user-1")
		require.NoError(t, err)
		_, err = w1.Credit(ctx, decimal.RequireFromString("1000"), "")
		require.NoError(t, err)
		_, err = w1.Debit(ctx, decimal.RequireFromString("400"), "")
		require.NoError(t, err)
		assert.True(t, w1.Balance().Equal(decimal.RequireFromString("600")))

		w2, err := wallet.Open(ctx, h.store, "user-1")
		require.NoError(t, err)
		assert.True(t, w2.Balance().Equal(decimal.RequireFromString("600")))
		assert.Len(t, w2.History(), 2)

		_, err = w2.Credit(ctx, decimal.RequireFromString("200"), "")
		require.NoError(t, err)
		w3, err := wallet.Open(ctx, h.store, "user-1")
		require.NoError(t, err)
		assert.Len(t, w3.History(), 3)
		assert.True(t, w3.Balance().Equal(decimal.RequireFromString("800")))
	})

	t.Run("corrupt storage opens empty and recovers", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		h.corrupt(t, "user-1")

		w, err := wallet.Open(ctx, h.store, "user-1")
		require.NoError(t, err)
		assert.True(t, w.Balance().IsZero())
		assert.Empty(t, w.History())

		_, err = w.Credit(ctx, decimal.RequireFromString("5"), "after-corruption")
		require.NoError(t, err)

		reopened, err := wallet.Open(ctx, h.store, "user-1")
		require.NoError(t, err)
		require.Len(t, reopened.History(), 1)
		assert.Equal(t, "after-corruption", reopened.History()[0].TransactionID)
	})

	t.Run("unknown event kind is fatal", func(t *testing.T) {
		h := newHarness(t)
		h.unknown(t, "user-1")

		_, err := h.store.Load(context.Background(), "user-1")
		require.ErrorIs(t, err, ledger.ErrUnknownEventKind)

		_, err = wallet.Open(context.Background(), h.store, "user-1")
		require.ErrorIs(t, err, ledger.ErrUnknownEventKind)
	})
}

const unknownKindRecord = `{"event_id":"01HZZZZZZZZZZZZZZZZZZZZZZZ","timestamp":"2026-01-01T00:00:00Z","event_type":"FundsFrozen","transaction_id":"t","payload":{"amount":"1"}}`
