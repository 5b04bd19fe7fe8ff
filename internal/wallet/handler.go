package wallet

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/eventledger/eventledger/internal/display"
	"github.com/eventledger/eventledger/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service  *Service
	currency string
}

// NewHandler builds a wallet HTTP handler. currency is only used for display.
func NewHandler(service *Service, currency string) *Handler {
	return &Handler{service: service, currency: currency}
}

type movementRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

type movementResponse struct {
	AccountID string          `json:"account_id"`
	Event     ledger.Record   `json:"event"`
	Balance   decimal.Decimal `json:"balance"`
	Duplicate bool            `json:"duplicate"`
}

// Credit records a FundsCredited event.
func (h *Handler) Credit(c *fiber.Ctx) error {
	return h.movement(c, h.service.Credit)
}

// Debit records a FundsDebited event.
func (h *Handler) Debit(c *fiber.Ctx) error {
	return h.movement(c, h.service.Debit)
}

func (h *Handler) movement(c *fiber.Ctx, apply func(ctx context.Context, input MovementInput) (Result, error)) error {
	accountID := c.Params("accountId")
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := apply(c.UserContext(), MovementInput{
		AccountID:     accountID,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		return toHTTPError(err)
	}

	record, err := ledger.EncodeRecord(res.Event)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	return c.Status(status).JSON(movementResponse{
		AccountID: accountID,
		Event:     record,
		Balance:   res.Balance,
		Duplicate: res.Duplicate,
	})
}

// Balance returns the derived account balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	balance, err := h.service.Balance(c.UserContext(), accountID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id": accountID,
		"balance":    balance.Amount,
		"currency":   h.currency,
		"formatted":  display.Amount(balance.Amount, h.currency),
		"timestamp":  balance.AsOf.Format(time.RFC3339Nano),
	})
}

// Events returns the ordered event history in its persisted record form.
func (h *Handler) Events(c *fiber.Ctx) error {
	accountID := c.Params("accountId")
	events, err := h.service.History(c.UserContext(), accountID)
	if err != nil {
		return toHTTPError(err)
	}
	records := make([]ledger.Record, 0, len(events))
	for _, evt := range events {
		rec, err := ledger.EncodeRecord(evt)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		records = append(records, rec)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id": accountID,
		"events":     records,
	})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidAccountID):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
