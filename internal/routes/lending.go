package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/loan"
	"github.com/creditor/creditor_console/internal/transaction"
)

// RegisterLoanRoutes wires loan endpoints. Payments go through idempotent.
func RegisterLoanRoutes(r fiber.Router, h *loan.Handler, idempotent fiber.Handler) {
	r.Get("/loans", h.List)
	r.Post("/loans", h.Create)
	r.Get("/loans/:id", h.Get)
	r.Put("/loans/:id", h.Update)
	r.Delete("/loans/:id", h.Delete)
	r.Post("/loans/:id/payment", idempotent, h.Pay)
	r.Post("/loans/:id/extension", h.Extend)
	r.Post("/loans/:id/process", h.Process)
}

// RegisterTransactionRoutes wires ledger transaction endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *transaction.Handler, idempotent fiber.Handler) {
	r.Get("/transactions", h.List)
	r.Post("/transactions", idempotent, h.Create)
	r.Get("/transactions/customer/:id", h.ByCustomer)
	r.Get("/transactions/loan/:id", h.ByLoan)
	r.Get("/transactions/:id", h.Get)
	r.Put("/transactions/:id", h.Update)
	r.Delete("/transactions/:id", h.Delete)
}
