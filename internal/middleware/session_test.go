package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/logging"
	"github.com/creditor/creditor_console/internal/notification"
	"github.com/creditor/creditor_console/internal/session"
)

func newTestRegistry(t *testing.T, baseURL string) *session.Registry {
	t.Helper()
	factory := func(ctx context.Context, id string) (*session.Manager, error) {
		client, err := apiclient.New(apiclient.Options{BaseURL: baseURL, Timeout: time.Second})
		if err != nil {
			return nil, err
		}
		return session.New(session.Options{
			Client:   client,
			Store:    session.NewMemoryStore(),
			Notifier: notification.NewInbox(10),
			Logger:   logging.Discard(),
		})
	}
	reg, err := session.NewRegistry(factory, time.Minute, logging.Discard(), nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	t.Cleanup(reg.Close)
	return reg
}

func newSessionApp(t *testing.T, baseURL string) (*fiber.App, *session.Registry) {
	t.Helper()
	reg := newTestRegistry(t, baseURL)
	app := fiber.New()
	app.Use(BrowserSession(reg, SessionOptions{}, logging.Discard()))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": SessionID(c), "state": Session(c).State()})
	})
	app.Get("/private", RequireAuthenticated(), func(c *fiber.Ctx) error {
		return c.SendString("secret")
	})
	app.Get("/upstream", func(c *fiber.Ctx) error {
		return UpstreamError(c, &apiclient.HTTPError{Status: http.StatusConflict, Message: "Loan already paid"})
	})
	app.Get("/drain", func(c *fiber.Ctx) error {
		return c.JSON(Drain(c))
	})
	return app, reg
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookie {
			return ck
		}
	}
	t.Fatalf("expected %s cookie", SessionCookie)
	return nil
}

func TestBrowserSessionIssuesCookie(t *testing.T) {
	app, reg := newSessionApp(t, "http://127.0.0.1:1")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/whoami", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	ck := sessionCookie(t, resp)
	if !ck.HttpOnly {
		t.Fatalf("expected HttpOnly cookie")
	}

	var body struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != ck.Value {
		t.Fatalf("expected id %s got %s", ck.Value, body.ID)
	}
	if body.State != string(session.StateUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %s", body.State)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one registered session, got %d", reg.Len())
	}
}

func TestBrowserSessionReusesCookie(t *testing.T) {
	app, reg := newSessionApp(t, "http://127.0.0.1:1")

	first, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/whoami", nil))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	ck := sessionCookie(t, first)

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: ck.Value})
	second, err := app.Test(req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if got := sessionCookie(t, second).Value; got != ck.Value {
		t.Fatalf("expected cookie %s to be kept, got %s", ck.Value, got)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one registered session, got %d", reg.Len())
	}
}

func TestBrowserSessionReplacesForgedCookie(t *testing.T) {
	app, _ := newSessionApp(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "../../etc/passwd"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := sessionCookie(t, resp).Value; got == "../../etc/passwd" {
		t.Fatalf("forged cookie must be replaced")
	}
}

func TestRequireAuthenticatedRedirects(t *testing.T) {
	app, _ := newSessionApp(t, "http://127.0.0.1:1")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/private", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.StatusCode)
	}
	payload, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(payload), `"redirect":"/auth/login"`) {
		t.Fatalf("expected login redirect, got %s", payload)
	}
}

func TestUpstreamErrorNotifiesOnce(t *testing.T) {
	app, _ := newSessionApp(t, "http://127.0.0.1:1")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/upstream", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected upstream 409 to pass through, got %d", resp.StatusCode)
	}
	ck := sessionCookie(t, resp)

	req := httptest.NewRequest(fiber.MethodGet, "/drain", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: ck.Value})
	drained, err := app.Test(req)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	var msgs []notification.Message
	if err := json.NewDecoder(drained.Body).Decode(&msgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Kind != notification.KindError || msgs[0].Body != "Loan already paid" {
		t.Fatalf("unexpected notifications %+v", msgs)
	}
}

func TestSentence(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"loan amount missing": "Loan amount missing",
		"élan":                "Élan",
		"Already":             "Already",
	}
	for in, want := range cases {
		if got := sentence(in); got != want {
			t.Fatalf("sentence(%q) = %q want %q", in, got, want)
		}
	}
}
