package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/loan"
	"github.com/creditor/creditor_console/internal/money"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]loan.Loan{
		{CurrentStatus: loan.StatusActive, LoanAmount: 100, PrincipleAmount: 80, InterestAmount: 5},
		{CurrentStatus: loan.StatusPaid, LoanAmount: 200},
		{CurrentStatus: loan.StatusDefaulted, LoanAmount: 50, PrincipleAmount: 50, OverdueAmount: 10},
		{CurrentStatus: "pending", LoanAmount: 10},
	})
	assert.Equal(t, Summary{Total: 4, Active: 1, Paid: 1, Defaulted: 1, Lent: 360, Outstanding: 145}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestLoadTitlesByRole(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/loans", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"current_status":"active","loan_amount":"10"},{"id":2,"current_status":"active"},{"id":3},{"id":4},{"id":5},{"id":6}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	client, err := apiclient.New(apiclient.Options{BaseURL: srv.URL})
	require.NoError(t, err)

	d, err := Load(context.Background(), client, identity.User{ID: 1, Role: identity.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, "My Loans", d.Title)
	assert.Equal(t, 6, d.Summary.Total)
	assert.Equal(t, 2, d.Summary.Active)
	assert.Equal(t, money.Amount(10), d.Summary.Lent)
	assert.Len(t, d.Recent, recentLimit)

	d, err = Load(context.Background(), client, identity.User{ID: 9, Role: identity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Loans", d.Title)
}
