package user

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/middleware"
)

// Handler exposes the account pages and the password change.
type Handler struct {
	client func(*fiber.Ctx) apiclient.Requester
}

// NewHandler builds a user handler.
func NewHandler(client func(*fiber.Ctx) apiclient.Requester) *Handler {
	return &Handler{client: client}
}

func (h *Handler) service(c *fiber.Ctx) *Service {
	return NewService(h.client(c))
}

// List returns every console user.
func (h *Handler) List(c *fiber.Ctx) error {
	users, err := h.service(c).List(c.UserContext())
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// Get returns one user by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.service(c).Get(c.UserContext(), id)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"user": a})
}

// Create adds a console user.
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service(c).Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusCreated, "User created successfully", fiber.Map{"user": a})
}

// Update edits a user.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service(c).Update(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusOK, "User updated successfully", fiber.Map{"user": a})
}

// Delete removes a user.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service(c).Delete(c.UserContext(), id); err != nil {
		return middleware.UpstreamError(c, err)
	}
	return middleware.Done(c, http.StatusNoContent, "User deleted successfully", nil)
}

// ChangePassword handles POST /auth/change-password for the session user.
func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	var in PasswordChange
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service(c).ChangePassword(c.UserContext(), in); err != nil {
		return h.fail(c, err)
	}
	return middleware.Done(c, http.StatusOK, "Password changed successfully", fiber.Map{"success": true})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	for _, target := range []error{
		ErrPasswordRequired, ErrInvalidRole,
		identity.ErrCountryCode, identity.ErrPhoneTooShort,
		identity.ErrPasswordTooShort, identity.ErrPasswordMismatch,
	} {
		if errors.Is(err, target) {
			return middleware.Invalid(c, err)
		}
	}
	return middleware.UpstreamError(c, err)
}
