package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/customer"
	"github.com/creditor/creditor_console/internal/employee"
	"github.com/creditor/creditor_console/internal/profile"
	"github.com/creditor/creditor_console/internal/user"
)

// RegisterCustomerRoutes wires customer endpoints.
func RegisterCustomerRoutes(r fiber.Router, h *customer.Handler) {
	r.Get("/customers", h.List)
	r.Post("/customers", h.Create)
	r.Get("/customers/:id", h.Get)
	r.Get("/customers/:id/loans", h.Loans)
	r.Put("/customers/:id", h.Update)
	r.Delete("/customers/:id", h.Delete)
}

// RegisterEmployeeRoutes wires employee endpoints.
func RegisterEmployeeRoutes(r fiber.Router, h *employee.Handler) {
	r.Get("/employees", h.List)
	r.Post("/employees", h.Create)
	r.Get("/employees/:id", h.Get)
	r.Put("/employees/:id", h.Update)
	r.Delete("/employees/:id", h.Delete)
}

// RegisterUserRoutes wires user account endpoints.
func RegisterUserRoutes(r fiber.Router, h *user.Handler) {
	r.Post("/users/change-password", h.ChangePassword)
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Get("/users/:id", h.Get)
	r.Put("/users/:id", h.Update)
	r.Delete("/users/:id", h.Delete)
}

// RegisterProfileRoutes wires the signed in person's profile.
func RegisterProfileRoutes(r fiber.Router, h *profile.Handler) {
	r.Get("/profile", h.Get)
	r.Put("/profile", h.Update)
}
