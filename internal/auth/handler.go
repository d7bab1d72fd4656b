package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/middleware"
	"github.com/creditor/creditor_console/internal/notification"
	"github.com/creditor/creditor_console/internal/session"
)

// Handler exposes the browser facing auth flow on top of the request's
// session manager.
type Handler struct{}

// NewHandler builds an auth handler.
func NewHandler() *Handler {
	return &Handler{}
}

type phoneFields struct {
	CountryCode string `json:"country_code"`
	PhoneNumber string `json:"phone_number"`
}

// phone returns the number in "+<code> <digits>" form when a country code
// was typed separately, or the number as given otherwise.
func (p phoneFields) phone() (string, error) {
	if strings.TrimSpace(p.CountryCode) == "" {
		return strings.TrimSpace(p.PhoneNumber), nil
	}
	return identity.FormatPhone(p.CountryCode, p.PhoneNumber)
}

type loginRequest struct {
	phoneFields
	Password string `json:"password"`
}

type sessionResponse struct {
	State         session.State          `json:"state"`
	User          *identity.User         `json:"user,omitempty"`
	Navigation    []NavItem              `json:"navigation"`
	Notifications []notification.Message `json:"notifications"`
	Redirect      string                 `json:"redirect,omitempty"`
}

func (h *Handler) respond(c *fiber.Ctx, status int, redirect string) error {
	m := middleware.Session(c)
	snap := m.Snapshot()
	resp := sessionResponse{
		State:      snap.State,
		User:       snap.User,
		Navigation: []NavItem{},
		Redirect:   redirect,
	}
	if snap.Authenticated() {
		resp.Navigation = Navigation(snap.User.Role)
	}
	resp.Notifications = middleware.Drain(c)
	return c.Status(status).JSON(resp)
}

// Session reports the current state, identity, navigation and any queued
// notifications.
func (h *Handler) Session(c *fiber.Ctx) error {
	return h.respond(c, http.StatusOK, "")
}

// Login signs the browser in.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	phone, err := req.phone()
	if err != nil {
		return middleware.Invalid(c, err)
	}
	if err := middleware.Session(c).Login(c.UserContext(), phone, req.Password); err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, "/dashboard")
}

type otpRequest struct {
	phoneFields
	Purpose string `json:"purpose"`
}

// RequestOTP starts phone verification.
func (h *Handler) RequestOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	phone, err := req.phone()
	if err != nil {
		return middleware.Invalid(c, err)
	}
	res, err := middleware.Session(c).RequestVerificationCode(c.UserContext(), session.VerificationRequest{
		PhoneNumber: phone,
		Purpose:     req.Purpose,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"phone_number": res.PhoneNumber, "message": res.Message, "notifications": middleware.Drain(c)})
}

type verifyRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTP         string `json:"otp"`
}

// VerifyOTP checks a one time code.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := middleware.Session(c).VerifyCode(c.UserContext(), req.PhoneNumber, strings.TrimSpace(req.OTP))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"phone_number":  res.PhoneNumber,
		"message":       res.Message,
		"redirect":      "/auth/create-password",
		"notifications": middleware.Drain(c),
	})
}

type createPasswordRequest struct {
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// CreatePassword finishes signup and signs the browser in.
func (h *Handler) CreatePassword(c *fiber.Ctx) error {
	var req createPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := identity.CheckPassword(req.Password, req.ConfirmPassword); err != nil {
		return middleware.Invalid(c, err)
	}
	if err := middleware.Session(c).CreatePassword(c.UserContext(), req.PhoneNumber, req.Password); err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, "/dashboard")
}

// Logout signs the browser out. It succeeds whatever the current state.
func (h *Handler) Logout(c *fiber.Ctx) error {
	middleware.Session(c).Logout(c.UserContext())
	return h.respond(c, http.StatusOK, "/auth/login")
}

// UpdateIdentity patches the locally held identity fields.
func (h *Handler) UpdateIdentity(c *fiber.Ctx) error {
	var patch identity.Patch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if patch.Empty() {
		return fiber.NewError(http.StatusBadRequest, "nothing to update")
	}
	if _, err := middleware.Session(c).UpdateIdentity(c.UserContext(), patch); err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, "")
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var serr *session.Error
	if errors.As(err, &serr) {
		return c.Status(serr.HTTPStatus()).JSON(fiber.Map{
			"error":         serr.Message,
			"kind":          serr.Kind,
			"notifications": middleware.Drain(c),
		})
	}
	if errors.Is(err, session.ErrNotAuthenticated) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": err.Error(), "redirect": "/auth/login"})
	}
	if errors.Is(err, session.ErrDisposed) {
		return fiber.NewError(http.StatusServiceUnavailable, "session closed, please retry")
	}
	return fiber.NewError(http.StatusInternalServerError, err.Error())
}
