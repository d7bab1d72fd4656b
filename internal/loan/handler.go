package loan

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/middleware"
	"github.com/creditor/creditor_console/internal/money"
)

// Handler exposes the loan pages of the console.
type Handler struct {
	client func(*fiber.Ctx) apiclient.Requester
}

// NewHandler builds a loan handler. client resolves the API client of the
// request's session.
func NewHandler(client func(*fiber.Ctx) apiclient.Requester) *Handler {
	return &Handler{client: client}
}

func (h *Handler) service(c *fiber.Ctx) *Service {
	return NewService(h.client(c))
}

// List returns the session's loans.
func (h *Handler) List(c *fiber.Ctx) error {
	loans, err := h.service(c).List(c.UserContext())
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"loans": loans})
}

// Get returns one loan.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	l, err := h.service(c).Get(c.UserContext(), id)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"loan": l})
}

// Create opens a loan.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	l, err := h.service(c).Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusCreated, "Loan created successfully", fiber.Map{"loan": l})
}

// Update edits a loan.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	l, err := h.service(c).Update(c.UserContext(), id, in)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusOK, "Loan updated successfully", fiber.Map{"loan": l})
}

// Delete removes a loan.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service(c).Delete(c.UserContext(), id); err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusNoContent, "Loan deleted successfully", nil)
}

type payRequest struct {
	PrinciplePayment *money.Amount `json:"principle_payment"`
}

// Pay submits a payment. Interest is always paid in full; an omitted
// principle_payment pays the remaining principal.
func (h *Handler) Pay(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	var req payRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	res, err := h.service(c).Pay(c.UserContext(), id, req.PrinciplePayment)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusOK, "Payment successful", res)
}

// Extend requests a loan extension.
func (h *Handler) Extend(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	var ext Extension
	if err := c.BodyParser(&ext); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	l, err := h.service(c).RequestExtension(c.UserContext(), id, ext)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusOK, "Loan updated successfully", fiber.Map{"loan": l})
}

// Process approves or rejects a loan application.
func (h *Handler) Process(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	var d Decision
	if err := c.BodyParser(&d); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	l, err := h.service(c).Process(c.UserContext(), id, d)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusOK, "Loan application submitted successfully", fiber.Map{"loan": l})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch err {
	case ErrMissingFields, ErrInvalidAmount, ErrInvalidDays, ErrInvalidDecision,
		ErrEmptyPayment, ErrPrincipalExceeded, ErrNegativePayment:
		return middleware.Invalid(c, err)
	}
	return middleware.UpstreamError(c, err)
}
