package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventledger/eventledger/internal/id"
)

// Record is the persisted shape of an Event.
type Record struct {
	EventID       string        `json:"event_id"`
	Timestamp     string        `json:"timestamp"`
	EventType     string        `json:"event_type"`
	TransactionID *string       `json:"transaction_id,omitempty"`
	Payload       AmountPayload `json:"payload"`
}

// AmountPayload carries the exact decimal amount as a JSON string.
type AmountPayload struct {
	Amount *decimal.Decimal `json:"amount"`
}

// legacyTimestampLayout matches naive ISO-8601 timestamps written without a zone.
const legacyTimestampLayout = "2006-01-02T15:04:05.999999999"

// EncodeRecord converts evt into its persisted form.
func EncodeRecord(evt Event) (Record, error) {
	tag, err := evt.Kind.Tag()
	if err != nil {
		return Record{}, fmt.Errorf("encode event %s: %w", evt.ID, err)
	}
	amount := evt.Amount
	txID := evt.TransactionID
	return Record{
		EventID:       evt.ID,
		Timestamp:     evt.Timestamp.UTC().Format(time.RFC3339Nano),
		EventType:     tag,
		TransactionID: &txID,
		Payload:       AmountPayload{Amount: &amount},
	}, nil
}

// DecodeRecord converts a persisted record into an Event. Unknown kind tags
// return ErrUnknownEventKind; structurally invalid records return
// ErrCorruptRecord.
func DecodeRecord(rec Record) (Event, error) {
	kind, err := KindFromTag(rec.EventType)
	if err != nil {
		if strings.TrimSpace(rec.EventType) == "" {
			return Event{}, fmt.Errorf("missing event_type: %w", ErrCorruptRecord)
		}
		return Event{}, fmt.Errorf("event %s has type %q: %w", rec.EventID, rec.EventType, err)
	}
	if rec.EventID == "" {
		return Event{}, fmt.Errorf("missing event_id: %w", ErrCorruptRecord)
	}
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("event %s timestamp %q: %w", rec.EventID, rec.Timestamp, ErrCorruptRecord)
	}
	if rec.Payload.Amount == nil || !rec.Payload.Amount.IsPositive() {
		return Event{}, fmt.Errorf("event %s amount: %w", rec.EventID, ErrCorruptRecord)
	}

	// Records written before transaction ids existed get a fresh one.
	txID := ""
	if rec.TransactionID != nil {
		txID = *rec.TransactionID
	}
	if txID == "" {
		txID = id.NewTransactionID()
	}

	return Event{
		ID:            rec.EventID,
		Timestamp:     ts,
		Kind:          kind,
		TransactionID: txID,
		Amount:        *rec.Payload.Amount,
	}, nil
}

// MarshalRecord encodes evt as a single JSON record.
func MarshalRecord(evt Event) ([]byte, error) {
	rec, err := EncodeRecord(evt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}

// UnmarshalRecord decodes a single JSON record.
func UnmarshalRecord(data []byte) (Event, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Event{}, fmt.Errorf("decode record: %v: %w", err, ErrCorruptRecord)
	}
	return DecodeRecord(rec)
}

// UnmarshalHistory decodes a JSON array of records. Empty input is an empty
// history.
func UnmarshalHistory(data []byte) ([]Event, error) {
	raw, err := SplitHistory(data)
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		evt, err := UnmarshalRecord(r)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

// SplitHistory parses a JSON array of records without decoding them, so the
// original bytes of each record can be kept verbatim.
func SplitHistory(data []byte) ([]json.RawMessage, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode history: %v: %w", err, ErrCorruptRecord)
	}
	return raw, nil
}

// IsCorrupt reports whether err means the storage is structurally malformed
// and should be read as an empty history.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptRecord) && !errors.Is(err, ErrUnknownEventKind)
}

func parseTimestamp(v string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.ParseInLocation(legacyTimestampLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return ts, nil
}
