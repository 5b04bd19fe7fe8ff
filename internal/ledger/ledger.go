package ledger

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidAmount is returned when a credit or debit amount is not
	// strictly positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when a debit exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPersistence marks a failure to durably record an event. Store
	// implementations wrap the underlying I/O error with it.
	ErrPersistence = errors.New("persistence failure")

	// ErrUnknownEventKind indicates a stored record carries a kind tag this
	// build does not understand. Unlike corrupt storage it is never recovered.
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrCorruptRecord indicates a record that cannot be decoded structurally.
	// Stores translate it into an empty history on load.
	ErrCorruptRecord = errors.New("corrupt event record")

	// ErrInvalidAccountID rejects identifiers that cannot name a storage location.
	ErrInvalidAccountID = errors.New("invalid account id")
)

const maxAccountIDLength = 128

// Store is the durable, append-only event log for accounts.
//
// Load returns the ordered history of an account. Missing or corrupt storage
// yields an empty history and a nil error; a record with an unknown kind tag
// yields ErrUnknownEventKind. Append persists evt after every previously
// stored event, or returns an error wrapping ErrPersistence.
type Store interface {
	Load(ctx context.Context, accountID string) ([]Event, error)
	Append(ctx context.Context, accountID string, evt Event) error
}

// ValidateAccountID checks that id can safely name an account in every backend.
func ValidateAccountID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return ErrInvalidAccountID
	case len(id) > maxAccountIDLength:
		return ErrInvalidAccountID
	case strings.ContainsAny(id, `/\`), id == ".", id == "..":
		return ErrInvalidAccountID
	case strings.ContainsRune(id, 0):
		return ErrInvalidAccountID
	}
	return nil
}
