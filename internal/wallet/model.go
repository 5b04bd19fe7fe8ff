package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventledger/eventledger/internal/ledger"
)

// Result captures the outcome of a credit or debit.
type Result struct {
	// Event is the newly recorded event, or the earlier one on a duplicate.
	Event     ledger.Event
	Balance   decimal.Decimal
	Duplicate bool
}

// Balance is a point-in-time view of an account balance.
type Balance struct {
	AccountID string
	Amount    decimal.Decimal
	AsOf      time.Time
}
