package eventlog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eventledger/eventledger/internal/ledger"
)

// row is the column layout shared by the SQL backends.
type row struct {
	EventID       string
	OccurredAt    string
	EventType     string
	TransactionID string
	Amount        string
}

func toRow(evt ledger.Event) (row, error) {
	rec, err := ledger.EncodeRecord(evt)
	if err != nil {
		return row{}, err
	}
	return row{
		EventID:       rec.EventID,
		OccurredAt:    rec.Timestamp,
		EventType:     rec.EventType,
		TransactionID: *rec.TransactionID,
		Amount:        rec.Payload.Amount.String(),
	}, nil
}

func (r row) event() (ledger.Event, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return ledger.Event{}, fmt.Errorf("event %s amount %q: %w", r.EventID, r.Amount, ledger.ErrCorruptRecord)
	}
	txID := r.TransactionID
	return ledger.DecodeRecord(ledger.Record{
		EventID:       r.EventID,
		Timestamp:     r.OccurredAt,
		EventType:     r.EventType,
		TransactionID: &txID,
		Payload:       ledger.AmountPayload{Amount: &amount},
	})
}

// decodeRows converts rows into events, applying the shared corruption rule:
// any structurally invalid row turns the whole history into an empty one.
func decodeRows(rows []row) ([]ledger.Event, bool, error) {
	events := make([]ledger.Event, 0, len(rows))
	for _, r := range rows {
		evt, err := r.event()
		if err != nil {
			if ledger.IsCorrupt(err) {
				return []ledger.Event{}, true, nil
			}
			return nil, false, err
		}
		events = append(events, evt)
	}
	return events, false, nil
}
