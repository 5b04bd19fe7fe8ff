package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eventledger/eventledger/internal/ledger"
	"github.com/eventledger/eventledger/internal/notification"
)

// Service exposes wallet operations to the HTTP and CLI layers by account id.
type Service struct {
	wallets  *Registry
	notifier notification.Notifier
}

// NewService builds a wallet service instance. notifier may be nil.
func NewService(wallets *Registry, notifier notification.Notifier) *Service {
	return &Service{wallets: wallets, notifier: notifier}
}

// MovementInput captures a credit or debit request.
type MovementInput struct {
	AccountID     string
	Amount        decimal.Decimal
	TransactionID string
}

// Credit adds funds to the account.
func (s *Service) Credit(ctx context.Context, input MovementInput) (Result, error) {
	w, err := s.wallets.Get(ctx, input.AccountID)
	if err != nil {
		return Result{}, err
	}
	res, err := w.Credit(ctx, input.Amount, input.TransactionID)
	if err != nil {
		return Result{}, err
	}
	s.notify(ctx, input.AccountID, res)
	return res, nil
}

// Debit removes funds from the account.
func (s *Service) Debit(ctx context.Context, input MovementInput) (Result, error) {
	w, err := s.wallets.Get(ctx, input.AccountID)
	if err != nil {
		return Result{}, err
	}
	res, err := w.Debit(ctx, input.Amount, input.TransactionID)
	if err != nil {
		return Result{}, err
	}
	s.notify(ctx, input.AccountID, res)
	return res, nil
}

// Balance returns the derived balance for the account.
func (s *Service) Balance(ctx context.Context, accountID string) (Balance, error) {
	w, err := s.wallets.Get(ctx, accountID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{AccountID: accountID, Amount: w.Balance(), AsOf: time.Now().UTC()}, nil
}

// History returns the ordered events of the account.
func (s *Service) History(ctx context.Context, accountID string) ([]ledger.Event, error) {
	w, err := s.wallets.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return w.History(), nil
}

func (s *Service) notify(ctx context.Context, accountID string, res Result) {
	if s.notifier == nil || res.Duplicate {
		return
	}
	kind := notification.KindFundsCredited
	verb := "credited"
	if res.Event.Kind == ledger.KindDebited {
		kind = notification.KindFundsDebited
		verb = "debited"
	}
	_ = s.notifier.Send(ctx, notification.Message{
		Kind:        kind,
		Destination: accountID,
		Body:        fmt.Sprintf("%s %s, balance %s (tx %s)", verb, res.Event.Amount, res.Balance, res.Event.TransactionID),
	})
}
