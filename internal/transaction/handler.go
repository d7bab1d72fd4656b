package transaction

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/middleware"
)

// Handler exposes the transaction pages.
type Handler struct {
	client func(*fiber.Ctx) apiclient.Requester
}

// NewHandler builds a transaction handler.
func NewHandler(client func(*fiber.Ctx) apiclient.Requester) *Handler {
	return &Handler{client: client}
}

func (h *Handler) service(c *fiber.Ctx) *Service {
	return NewService(h.client(c))
}

// List returns all transactions for staff and the customer's own for
// customers.
func (h *Handler) List(c *fiber.Ctx) error {
	svc := h.service(c)
	var (
		txs []Transaction
		err error
	)
	if u, ok := middleware.Session(c).User(); ok && u.Role == identity.RoleCustomer {
		txs, err = svc.ByCustomer(c.UserContext(), u.ID)
	} else {
		txs, err = svc.List(c.UserContext())
	}
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

// ByCustomer lists the transactions of one customer.
func (h *Handler) ByCustomer(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	txs, err := h.service(c).ByCustomer(c.UserContext(), id)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

// ByLoan lists the transactions booked against one loan.
func (h *Handler) ByLoan(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	txs, err := h.service(c).ByLoan(c.UserContext(), id)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

// Get returns one transaction.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	tx, err := h.service(c).Get(c.UserContext(), id)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"transaction": tx})
}

// Create records a transaction.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tx, err := h.service(c).Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusCreated, "Transaction recorded successfully", fiber.Map{"transaction": tx})
}

// Update edits a transaction.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	tx, err := h.service(c).Update(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusOK, "Transaction updated successfully", fiber.Map{"transaction": tx})
}

// Delete removes a transaction.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service(c).Delete(c.UserContext(), id); err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusNoContent, "Transaction deleted successfully", nil)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrMissingFields) || errors.Is(err, ErrInvalidAmount) {
		return middleware.Invalid(c, err)
	}
	return middleware.UpstreamError(c, err)
}
