package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventledger/eventledger/internal/id"
)

// Kind is the closed set of balance-affecting facts.
type Kind int

const (
	// KindCredited adds funds to an account.
	KindCredited Kind = iota + 1
	// KindDebited removes funds from an account.
	KindDebited
)

// Wire tags used by every persisted record.
const (
	TagFundsCredited = "FundsCredited"
	TagFundsDebited  = "FundsDebited"
)

// Tag returns the persisted kind tag.
func (k Kind) Tag() (string, error) {
	switch k {
	case KindCredited:
		return TagFundsCredited, nil
	case KindDebited:
		return TagFundsDebited, nil
	default:
		return "", ErrUnknownEventKind
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	tag, err := k.Tag()
	if err != nil {
		return "Unknown"
	}
	return tag
}

// KindFromTag maps a persisted tag back to its Kind.
func KindFromTag(tag string) (Kind, error) {
	switch tag {
	case TagFundsCredited:
		return KindCredited, nil
	case TagFundsDebited:
		return KindDebited, nil
	default:
		return 0, ErrUnknownEventKind
	}
}

// Event is an immutable record of one balance-affecting fact.
type Event struct {
	ID            string
	Timestamp     time.Time
	Kind          Kind
	TransactionID string
	Amount        decimal.Decimal
}

// NewCredited builds a FundsCredited event stamped with now.
func NewCredited(transactionID string, amount decimal.Decimal, now time.Time) Event {
	return newEvent(KindCredited, transactionID, amount, now)
}

// NewDebited builds a FundsDebited event stamped with now.
func NewDebited(transactionID string, amount decimal.Decimal, now time.Time) Event {
	return newEvent(KindDebited, transactionID, amount, now)
}

func newEvent(kind Kind, transactionID string, amount decimal.Decimal, now time.Time) Event {
	now = now.UTC()
	return Event{
		ID:            id.NewEventID(now),
		Timestamp:     now,
		Kind:          kind,
		TransactionID: transactionID,
		Amount:        amount,
	}
}
