package transaction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/money"
)

func newService(t *testing.T, mux *http.ServeMux) *Service {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return NewService(client)
}

func TestDirectionFor(t *testing.T) {
	assert.Equal(t, DirectionOut, DirectionFor(PurposeDisbursement))
	assert.Equal(t, DirectionIn, DirectionFor(PurposePrinciplePayment))
	assert.Equal(t, DirectionIn, DirectionFor("late_fee"))
}

func TestCreateDerivesDirectionAndRounds(t *testing.T) {
	mux := http.NewServeMux()
	var sent Input
	mux.HandleFunc("POST /api/transactions", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"transaction":{"id":30,"loan_id":2,"transaction_amount":"99.99","transaction_direction":"out"}}`))
	})
	svc := newService(t, mux)

	tx, err := svc.Create(context.Background(), Input{
		TransactionAmount:  99.987,
		LoanID:             2,
		CustomerID:         5,
		TransactionPurpose: PurposeDisbursement,
	})
	require.NoError(t, err)
	assert.Equal(t, DirectionOut, sent.TransactionDirection)
	assert.Equal(t, money.Amount(99.99), sent.TransactionAmount)
	assert.Equal(t, int64(30), tx.ID)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t, http.NewServeMux())
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{LoanID: 1, CustomerID: 1, TransactionPurpose: PurposeInterestPayment})
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = svc.Create(ctx, Input{TransactionAmount: -3, LoanID: 1, CustomerID: 1, TransactionPurpose: PurposeInterestPayment})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestListingPaths(t *testing.T) {
	mux := http.NewServeMux()
	for _, p := range []string{"/api/transactions", "/api/transactions/customer/4", "/api/transactions/loan/9"} {
		mux.HandleFunc("GET "+p, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"transactions":[{"id":1,"transaction_purpose":"loan_interest_payment"}]}`))
		})
	}
	svc := newService(t, mux)
	ctx := context.Background()

	for name, call := range map[string]func() ([]Transaction, error){
		"all":      func() ([]Transaction, error) { return svc.List(ctx) },
		"customer": func() ([]Transaction, error) { return svc.ByCustomer(ctx, 4) },
		"loan":     func() ([]Transaction, error) { return svc.ByLoan(ctx, 9) },
	} {
		txs, err := call()
		require.NoError(t, err, name)
		assert.Len(t, txs, 1, name)
	}
}
