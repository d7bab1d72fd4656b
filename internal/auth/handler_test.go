package auth

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
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/logging"
	"github.com/creditor/creditor_console/internal/middleware"
	"github.com/creditor/creditor_console/internal/notification"
	"github.com/creditor/creditor_console/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type testConsole struct {
	app    *fiber.App
	cookie *http.Cookie
	t      *testing.T
}

func newTestConsole(t *testing.T, upstream http.Handler) *testConsole {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	factory := func(ctx context.Context, id string) (*session.Manager, error) {
		client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL, Timeout: time.Second})
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

	h := NewHandler()
	app := fiber.New()
	app.Use(middleware.BrowserSession(reg, middleware.SessionOptions{}, logging.Discard()))
	app.Get("/auth/session", h.Session)
	app.Post("/auth/login", h.Login)
	app.Post("/auth/request-otp", h.RequestOTP)
	app.Post("/auth/verify-otp", h.VerifyOTP)
	app.Post("/auth/create-password", h.CreatePassword)
	app.Post("/auth/logout", h.Logout)
	app.Patch("/auth/identity", h.UpdateIdentity)
	return &testConsole{app: app, t: t}
}

func (tc *testConsole) do(method, path, body string) (int, map[string]any) {
	tc.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}
	resp, err := tc.app.Test(req)
	if err != nil {
		tc.t.Fatalf("app.Test: %v", err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookie {
			tc.cookie = &http.Cookie{Name: ck.Name, Value: ck.Value}
		}
	}
	out := map[string]any{}
	payload, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(payload, &out)
	return resp.StatusCode, out
}

func navKeys(body map[string]any) []string {
	items, _ := body["navigation"].([]any)
	keys := make([]string, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			keys = append(keys, m["key"].(string))
		}
	}
	return keys
}

func loginUpstream(t *testing.T, user identity.User) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds identity.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "hunter22" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid phone number or password"})
			return
		}
		if creds.PhoneNumber != "+31 612345678" {
			t.Errorf("unexpected phone %q", creds.PhoneNumber)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": "tok-1", "user": user})
	})
	return mux
}

func TestSessionStartsUnauthenticated(t *testing.T) {
	tc := newTestConsole(t, http.NewServeMux())

	status, body := tc.do(fiber.MethodGet, "/auth/session", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if body["state"] != string(session.StateUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", body["state"])
	}
	if len(navKeys(body)) != 0 {
		t.Fatalf("expected no navigation before login")
	}
}

func TestLoginFormatsPhoneAndAuthenticates(t *testing.T) {
	admin := identity.User{ID: 1, Role: identity.RoleAdmin, Name: "Ada"}
	tc := newTestConsole(t, loginUpstream(t, admin))

	status, body := tc.do(fiber.MethodPost, "/auth/login",
		`{"country_code":"+31","phone_number":"6 1234-5678","password":"hunter22"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d: %v", status, body)
	}
	if body["state"] != string(session.StateAuthenticated) {
		t.Fatalf("expected authenticated, got %v", body["state"])
	}
	if body["redirect"] != "/dashboard" {
		t.Fatalf("expected dashboard redirect, got %v", body["redirect"])
	}
	if got := navKeys(body); len(got) != 7 || got[3] != "users" {
		t.Fatalf("expected admin navigation, got %v", got)
	}
	notes, _ := body["notifications"].([]any)
	if len(notes) != 1 {
		t.Fatalf("expected the success notification, got %v", notes)
	}

	status, body = tc.do(fiber.MethodGet, "/auth/session", "")
	if status != fiber.StatusOK || body["state"] != string(session.StateAuthenticated) {
		t.Fatalf("expected session to persist across requests, got %d %v", status, body)
	}
	if notes, _ := body["notifications"].([]any); len(notes) != 0 {
		t.Fatalf("notifications must be drained once, got %v", notes)
	}
}

func TestLoginRejected(t *testing.T) {
	tc := newTestConsole(t, loginUpstream(t, identity.User{ID: 2, Role: identity.RoleCustomer}))

	status, body := tc.do(fiber.MethodPost, "/auth/login", `{"phone_number":"+31 612345678","password":"nope"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", status)
	}
	if body["error"] != "Invalid phone number or password" {
		t.Fatalf("expected server message, got %v", body["error"])
	}
	notes, _ := body["notifications"].([]any)
	if len(notes) != 1 {
		t.Fatalf("expected exactly one notification, got %v", notes)
	}
}

func TestLoginRejectsBadCountryCode(t *testing.T) {
	tc := newTestConsole(t, http.NewServeMux())

	status, _ := tc.do(fiber.MethodPost, "/auth/login", `{"country_code":"31","phone_number":"612345678","password":"x"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", status)
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	tc := newTestConsole(t, loginUpstream(t, identity.User{ID: 3, Role: identity.RoleCustomer}))
	tc.do(fiber.MethodPost, "/auth/login", `{"phone_number":"+31 612345678","password":"hunter22"}`)

	for i := 0; i < 2; i++ {
		status, body := tc.do(fiber.MethodPost, "/auth/logout", "")
		if status != fiber.StatusOK {
			t.Fatalf("logout %d: expected 200 got %d", i+1, status)
		}
		if body["state"] != string(session.StateUnauthenticated) {
			t.Fatalf("expected unauthenticated, got %v", body["state"])
		}
	}
}

func TestVerifyOTPBypass(t *testing.T) {
	tc := newTestConsole(t, http.NotFoundHandler())

	status, body := tc.do(fiber.MethodPost, "/auth/verify-otp", `{"phone_number":"+31 612345678","otp":"123456"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if body["redirect"] != "/auth/create-password" {
		t.Fatalf("expected create-password redirect, got %v", body["redirect"])
	}
}

func TestRequestOTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/request-otp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["phone"] != "+31 612345678" {
			t.Errorf("unexpected phone %q", body["phone"])
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP sent"})
	})
	tc := newTestConsole(t, mux)

	status, body := tc.do(fiber.MethodPost, "/auth/request-otp", `{"country_code":"+31","phone_number":"612345678"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	if body["message"] != "OTP sent" || body["phone_number"] != "+31 612345678" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCreatePasswordMismatch(t *testing.T) {
	tc := newTestConsole(t, http.NotFoundHandler())

	status, _ := tc.do(fiber.MethodPost, "/auth/create-password",
		`{"phone_number":"+31 612345678","password":"secret123","confirm_password":"secret124"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", status)
	}
}

func TestUpdateIdentityRequiresLogin(t *testing.T) {
	tc := newTestConsole(t, http.NewServeMux())

	status, body := tc.do(fiber.MethodPatch, "/auth/identity", `{"name":"New"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", status)
	}
	if body["redirect"] != "/auth/login" {
		t.Fatalf("expected login redirect, got %v", body)
	}
}

func TestUpdateIdentity(t *testing.T) {
	tc := newTestConsole(t, loginUpstream(t, identity.User{ID: 4, Role: identity.RoleEmployee, Name: "Old"}))
	tc.do(fiber.MethodPost, "/auth/login", `{"phone_number":"+31 612345678","password":"hunter22"}`)

	status, body := tc.do(fiber.MethodPatch, "/auth/identity", `{"name":"New"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	user, _ := body["user"].(map[string]any)
	if user["name"] != "New" || user["role"] != string(identity.RoleEmployee) {
		t.Fatalf("unexpected user %v", user)
	}
}

func TestNavigation(t *testing.T) {
	if got := Navigation(identity.RoleCustomer); len(got) != 4 {
		t.Fatalf("expected 4 items for customers, got %d", len(got))
	}
	admin := Navigation(identity.RoleAdmin)
	if len(admin) != 7 || admin[len(admin)-1].Key != "profile" {
		t.Fatalf("unexpected admin navigation %+v", admin)
	}
	// callers must not be able to mutate the shared slices
	admin[0].Label = "changed"
	if Navigation(identity.RoleAdmin)[0].Label != "Dashboard" {
		t.Fatalf("navigation must return a fresh slice")
	}
}
