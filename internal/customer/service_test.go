package customer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/loan"
)

func newService(t *testing.T, mux *http.ServeMux) *Service {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return NewService(client)
}

func validInput() CreateInput {
	return CreateInput{
		FirstName:            "Ada",
		LastName:             "Lovelace",
		SocialSecurityNumber: "123-45",
		DateOfBirth:          "1990-12-10",
		Address:              "Main street 1",
		CountryCode:          "+31",
		PhoneNumber:          "6 1595 7803",
		Password:             "secret1",
	}
}

func TestCreateFormatsPhone(t *testing.T) {
	mux := http.NewServeMux()
	var body map[string]string
	mux.HandleFunc("POST /api/customers", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"customer":{"id":8,"first_name":"Ada","last_name":"Lovelace"}}`))
	})
	svc := newService(t, mux)

	cust, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(8), cust.ID)
	assert.Equal(t, "Ada Lovelace", cust.FullName())
	assert.Equal(t, "+31 615957803", body["phone_number"])
	_, hasCode := body["country_code"]
	assert.False(t, hasCode)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t, http.NewServeMux())
	ctx := context.Background()

	in := validInput()
	in.Address = " "
	_, err := svc.Create(ctx, in)
	assert.ErrorIs(t, err, ErrMissingFields)

	in = validInput()
	in.Password = "123"
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, identity.ErrPasswordTooShort)

	in = validInput()
	in.CountryCode = ""
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, ErrMissingPhone)

	in = validInput()
	in.PhoneNumber = "123"
	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, identity.ErrPhoneTooShort)
}

func TestListGetAndLoans(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/customers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"customers":[{"id":1,"first_name":"A"},{"id":2,"first_name":"B"}]}`))
	})
	mux.HandleFunc("GET /api/customers/2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":2,"first_name":"B","is_active":true}`))
	})
	mux.HandleFunc("GET /api/customers/2/loans", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"loans":[{"id":10,"customer_id":2,"current_status":"defaulted"}]}`))
	})
	svc := newService(t, mux)
	ctx := context.Background()

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, one.IsActive)
	assert.True(t, *one.IsActive)

	loans, err := svc.Loans(ctx, 2)
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, loan.StatusDefaulted, loans[0].CurrentStatus)
}

func TestUpdateSendsOnlySetFields(t *testing.T) {
	mux := http.NewServeMux()
	var body map[string]any
	mux.HandleFunc("PUT /api/customers/3", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"message":"Customer updated"}`))
	})
	svc := newService(t, mux)

	addr := "New road 2"
	_, err := svc.Update(context.Background(), 3, UpdateInput{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"address": "New road 2"}, body)
}
