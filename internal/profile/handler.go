package profile

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/middleware"
)

// Handler serves the profile page.
type Handler struct {
	client func(*fiber.Ctx) apiclient.Requester
}

// NewHandler builds a profile handler bound to the request's session.
func NewHandler(client func(*fiber.Ctx) apiclient.Requester) *Handler {
	return &Handler{client: client}
}

// Get returns the signed-in user's profile.
func (h *Handler) Get(c *fiber.Ctx) error {
	p, err := NewService(h.client(c)).Load(c.UserContext(), middleware.Session(c))
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	return c.JSON(fiber.Map{"profile": p})
}

// Update saves profile changes for the signed-in user.
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := NewService(h.client(c)).Update(c.UserContext(), middleware.Session(c), in)
	if err != nil {
		return middleware.UpstreamError(c, err)
	}
	msg := "Profile updated successfully"
	switch p.Role {
	case identity.RoleCustomer:
		msg = "Customer profile updated successfully"
	case identity.RoleEmployee:
		msg = "Employee profile updated successfully"
	}
	return middleware.Done(c, http.StatusOK, msg, fiber.Map{"profile": p})
}
