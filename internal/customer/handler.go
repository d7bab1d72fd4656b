package customer

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/middleware"
)

// Handler exposes the customer pages.
type Handler struct {
	client func(*fiber.Ctx) apiclient.Requester
}

// NewHandler builds a customer handler.
func NewHandler(client func(*fiber.Ctx) apiclient.Requester) *Handler {
	return &Handler{client: client}
}

func (h *Handler) service(c *fiber.Ctx) *Service {
	return NewService(h.client(c))
}

// List returns every customer.
func (h *Handler) List(c *fiber.Ctx) error {
	customers, err := h.service(c).List(c.UserContext())
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"customers": customers})
}

// Get returns one customer by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	cust, err := h.service(c).Get(c.UserContext(), id)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"customer": cust})
}

// Loans returns the loans held by one customer.
func (h *Handler) Loans(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	loans, err := h.service(c).Loans(c.UserContext(), id)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"loans": loans})
}

// Create registers a customer.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cust, err := h.service(c).Create(c.UserContext(), in)
	if err != nil {
		if isValidation(err) {
			return middleware.Invalid(c, err)
		}
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusCreated, "Customer created successfully", fiber.Map{"customer": cust})
}

// Update edits a customer record.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	cust, err := h.service(c).Update(c.UserContext(), id, in)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusOK, "Customer updated successfully", fiber.Map{"customer": cust})
}

// Delete removes a customer.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service(c).Delete(c.UserContext(), id); err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusNoContent, "Customer deleted successfully", nil)
}

func isValidation(err error) bool {
	for _, target := range []error{
		ErrMissingFields, ErrMissingPhone,
		identity.ErrPasswordTooShort, identity.ErrCountryCode, identity.ErrPhoneTooShort,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
