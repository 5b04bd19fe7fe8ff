package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eventledger/eventledger/internal/wallet"
)

// RegisterAccountRoutes wires the ledger endpoints. limit guards the writes.
func RegisterAccountRoutes(r fiber.Router, h *wallet.Handler, limit fiber.Handler) {
	r.Post("/accounts/:accountId/credit", limit, h.Credit)
	r.Post("/accounts/:accountId/debit", limit, h.Debit)
	r.Get("/accounts/:accountId/balance", h.Balance)
	r.Get("/accounts/:accountId/events", h.Events)
}
