package employee

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/middleware"
)

// Handler exposes the employee pages. Admin only in the navigation.
type Handler struct {
	client func(*fiber.Ctx) apiclient.Requester
}

// NewHandler builds an employee handler.
func NewHandler(client func(*fiber.Ctx) apiclient.Requester) *Handler {
	return &Handler{client: client}
}

func (h *Handler) service(c *fiber.Ctx) *Service {
	return NewService(h.client(c))
}

// List returns every employee.
func (h *Handler) List(c *fiber.Ctx) error {
	employees, err := h.service(c).List(c.UserContext())
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"employees": employees})
}

// Get returns one employee by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	e, err := h.service(c).Get(c.UserContext(), id)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"employee": e})
}

// Create hires an employee.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	e, err := h.service(c).Create(c.UserContext(), in)
	if errors.Is(err, ErrMissingFields) {
		return middleware.Invalid(c, err)
	}
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusCreated, "Employee created successfully", fiber.Map{"employee": e})
}

// Update edits an employee record.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	e, err := h.service(c).Update(c.UserContext(), id, in)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusOK, "Employee updated successfully", fiber.Map{"employee": e})
}

// Delete removes an employee.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service(c).Delete(c.UserContext(), id); err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusNoContent, "Employee deleted successfully", nil)
}
