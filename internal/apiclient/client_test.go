package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	mu    sync.Mutex
	calls int
}

func (h *countingHandler) HandleUnauthorized(context.Context) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
}

func (o *recordingObserver) ObserveRequest(_, _ string, status int, _ time.Duration) {
	o.mu.Lock()
	o.statuses = append(o.statuses, status)
	o.mu.Unlock()
}

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client, srv
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestDoAttachesBearerTokenAndDecodes(t *testing.T) {
	var gotAuth, gotContentType string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "path": r.URL.Path})
	}))

	client.SetAuthToken("abc")
	var out struct {
		OK   bool   `json:"ok"`
		Path string `json:"path"`
	}
	require.NoError(t, client.Post(context.Background(), "/api/loans", map[string]int{"loan_amount": 100}, &out))

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.True(t, out.OK)
	assert.Equal(t, "/api/loans", out.Path)
}

func TestClearAuthTokenRemovesHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))

	client.SetAuthToken("abc")
	client.ClearAuthToken()
	require.NoError(t, client.Get(context.Background(), "/api/users", nil))
	assert.Empty(t, gotAuth)
}

func TestHTTPErrorCarriesServerMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid phone number"}`))
	}))

	err := client.Get(context.Background(), "/api/customers/9", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, "Invalid phone number", Message(err, "fallback"))
	assert.Equal(t, "Invalid phone number", Describe(err))
}

func TestUnauthorizedWithTokenTriggersHandler(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	handler := &countingHandler{}
	client.SetUnauthorizedHandler(handler)

	err := client.Get(context.Background(), "/api/loans", nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 0, handler.count(), "no token attached, handler must not fire")

	client.SetAuthToken("expired")
	err = client.Get(context.Background(), "/api/loans", nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, handler.count())

	client.SetUnauthorizedHandler(nil)
	_ = client.Get(context.Background(), "/api/loans", nil)
	assert.Equal(t, 1, handler.count())
}

func TestTransportFailureIsNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	observer := &recordingObserver{}
	client, err := New(Options{BaseURL: srv.URL, Timeout: time.Second, Observer: observer})
	require.NoError(t, err)

	err = client.Get(context.Background(), "/auth/validate-token", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoResponse))
	assert.Equal(t, "No response from server. Please check your internet connection.", Describe(err))
	assert.Equal(t, []int{0}, observer.statuses)
}

func TestDescribeStatusMessages(t *testing.T) {
	cases := map[int]string{
		http.StatusForbidden:           "You do not have permission to perform this action",
		http.StatusNotFound:            "The requested resource was not found",
		http.StatusInternalServerError: "Server error. Please try again later.",
		http.StatusConflict:            "An error occurred. Please try again.",
	}
	for status, want := range cases {
		assert.Equal(t, want, Describe(&HTTPError{Status: status}), "status %d", status)
	}
	assert.Equal(t, "An error occurred. Please try again.", Describe(errors.New("boom")))
}

func TestConsoleStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ConsoleStatus(&HTTPError{Status: http.StatusNotFound}))
	assert.Equal(t, http.StatusBadGateway, ConsoleStatus(&HTTPError{Status: http.StatusInternalServerError}))
	assert.Equal(t, http.StatusBadGateway, ConsoleStatus(ErrNoResponse))
}
