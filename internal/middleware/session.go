package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/notification"
	"github.com/creditor/creditor_console/internal/session"
)

const (
	// SessionCookie binds a browser to its session manager.
	SessionCookie = "creditor_sid"

	localSessionID = "browser_session_id"
	localManager   = "session_manager"

	loginPath = "/auth/login"
)

// SessionOptions configures the browser session cookie.
type SessionOptions struct {
	Secure bool
	MaxAge time.Duration
}

// BrowserSession resolves the creditor_sid cookie to a session manager,
// issuing a new id when the browser has none.
func BrowserSession(registry *session.Registry, opts SessionOptions, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(SessionCookie)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		manager, err := registry.Get(c.UserContext(), id)
		if err != nil {
			logger.Error("resolve browser session", slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "session unavailable")
		}

		cookie := &fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			Secure:   opts.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		}
		if opts.MaxAge > 0 {
			cookie.MaxAge = int(opts.MaxAge.Seconds())
		}
		c.Cookie(cookie)

		c.Locals(localSessionID, id)
		c.Locals(localManager, manager)
		return c.Next()
	}
}

// RequireAuthenticated stops requests whose session is not authenticated.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := Session(c)
		if m == nil || m.State() != session.StateAuthenticated {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error":    "authentication required",
				"redirect": loginPath,
			})
		}
		return c.Next()
	}
}

// Session returns the manager bound to the request, or nil.
func Session(c *fiber.Ctx) *session.Manager {
	m, _ := c.Locals(localManager).(*session.Manager)
	return m
}

// SessionID returns the browser session id bound to the request.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(localSessionID).(string)
	return id
}

// Client returns the API client of the request's session.
func Client(c *fiber.Ctx) *apiclient.Client {
	if m := Session(c); m != nil {
		return m.Client()
	}
	return nil
}

// Notify queues a message for the request's browser.
func Notify(c *fiber.Ctx, kind, body string) {
	m := Session(c)
	if m == nil || m.Notifier() == nil {
		return
	}
	_ = m.Notifier().Send(c.UserContext(), notification.Message{Kind: kind, Body: body})
}

// Drain returns and clears the notifications queued for the request's browser.
func Drain(c *fiber.Ctx) []notification.Message {
	if m := Session(c); m != nil {
		if inbox, ok := m.Notifier().(*notification.Inbox); ok {
			return inbox.Drain()
		}
	}
	return []notification.Message{}
}

// UpstreamError reports a failed lending API call to the browser and turns
// it into the console response. A 401 already ended the session and
// notified, so it only redirects. Session errors were notified by the
// manager.
func UpstreamError(c *fiber.Ctx, err error) error {
	if apiclient.IsUnauthorized(err) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error":    apiclient.Describe(err),
			"redirect": loginPath,
		})
	}
	var serr *session.Error
	if errors.As(err, &serr) {
		return fiber.NewError(serr.HTTPStatus(), serr.Message)
	}
	msg := apiclient.Describe(err)
	Notify(c, notification.KindError, msg)
	return fiber.NewError(apiclient.ConsoleStatus(err), msg)
}

// Invalid reports a local validation failure to the browser as a 400.
func Invalid(c *fiber.Ctx, err error) error {
	msg := sentence(err.Error())
	Notify(c, notification.KindError, msg)
	return fiber.NewError(http.StatusBadRequest, msg)
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ParamID reads a positive numeric :id route parameter.
func ParamID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// Done notifies success and answers with body.
func Done(c *fiber.Ctx, status int, message string, body any) error {
	if message != "" {
		Notify(c, notification.KindSuccess, message)
	}
	if body == nil {
		return c.SendStatus(status)
	}
	return c.Status(status).JSON(body)
}
