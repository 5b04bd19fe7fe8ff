package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Replay folds an ordered history into a balance: credits add, debits
// subtract. The same sequence always yields the same balance.
func Replay(events []Event) (decimal.Decimal, error) {
	balance := decimal.Zero
	for i, evt := range events {
		switch evt.Kind {
		case KindCredited:
			balance = balance.Add(evt.Amount)
		case KindDebited:
			balance = balance.Sub(evt.Amount)
		default:
			return decimal.Zero, fmt.Errorf("replay event %d (%s): %w", i, evt.ID, ErrUnknownEventKind)
		}
	}
	return balance, nil
}
