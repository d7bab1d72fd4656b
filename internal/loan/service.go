package loan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/money"
)

var (
	ErrMissingFields   = errors.New("please fill in all required fields")
	ErrInvalidAmount   = errors.New("loan amount must be greater than zero")
	ErrInvalidDays     = errors.New("extension days must be greater than zero")
	ErrInvalidDecision = errors.New("decision must be approve or reject")
)

// Service talks to the loan endpoints with the caller's session.
type Service struct {
	api apiclient.Requester
}

// NewService builds a loan service on top of an authenticated client.
func NewService(api apiclient.Requester) *Service {
	return &Service{api: api}
}

func path(id int64, suffix string) string {
	return fmt.Sprintf("/api/loans/%d%s", id, suffix)
}

// List returns the loans visible to the session; the API filters by role.
func (s *Service) List(ctx context.Context) ([]Loan, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, "/api/loans", nil, &raw); err != nil {
		return nil, err
	}
	return apiclient.DecodeList[Loan](raw, "loans")
}

// Get returns one loan.
func (s *Service) Get(ctx context.Context, id int64) (Loan, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, path(id, ""), nil, &raw); err != nil {
		return Loan{}, err
	}
	return apiclient.DecodeOne[Loan](raw, "loan")
}

// Create opens a loan after checking the required fields.
func (s *Service) Create(ctx context.Context, in CreateInput) (Loan, error) {
	if in.CustomerID <= 0 || in.LoanAmount == 0 {
		return Loan{}, ErrMissingFields
	}
	if in.LoanAmount < 0 {
		return Loan{}, ErrInvalidAmount
	}
	in.LoanAmount = in.LoanAmount.Round2()

	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, "/api/loans", in, &raw); err != nil {
		return Loan{}, err
	}
	return decodeLoan(raw)
}

// Update edits a loan.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Loan, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPut, path(id, ""), in, &raw); err != nil {
		return Loan{}, err
	}
	return decodeLoan(raw)
}

// Delete removes a loan.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Do(ctx, http.MethodDelete, path(id, ""), nil, nil)
}

// PaymentResult is what a payment sent and, when the API echoed it, the
// loan afterwards.
type PaymentResult struct {
	Payment Payment `json:"payment"`
	Loan    *Loan   `json:"loan,omitempty"`
}

// Pay fetches the loan, prepares the payment from its current amounts and
// submits it. A nil principal pays the full remaining principal.
func (s *Service) Pay(ctx context.Context, id int64, principal *money.Amount) (PaymentResult, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return PaymentResult{}, err
	}
	payment, err := PreparePayment(current, principal)
	if err != nil {
		return PaymentResult{}, err
	}

	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPut, path(id, "/payment"), payment, &raw); err != nil {
		return PaymentResult{}, err
	}
	res := PaymentResult{Payment: payment}
	if updated, err := apiclient.DecodeOne[Loan](raw, "loan"); err == nil && updated.ID != 0 {
		res.Loan = &updated
	}
	return res, nil
}

// RequestExtension asks for more days on a loan.
func (s *Service) RequestExtension(ctx context.Context, id int64, ext Extension) (Loan, error) {
	if ext.Days <= 0 {
		return Loan{}, ErrInvalidDays
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, path(id, "/extension"), ext, &raw); err != nil {
		return Loan{}, err
	}
	return decodeLoan(raw)
}

// Process approves or rejects a loan application.
func (s *Service) Process(ctx context.Context, id int64, d Decision) (Loan, error) {
	if d.Decision != DecisionApprove && d.Decision != DecisionReject {
		return Loan{}, ErrInvalidDecision
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, path(id, "/process"), d, &raw); err != nil {
		return Loan{}, err
	}
	return decodeLoan(raw)
}

// decodeLoan tolerates write endpoints that answer with an empty body.
func decodeLoan(raw json.RawMessage) (Loan, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Loan{}, nil
	}
	return apiclient.DecodeOne[Loan](raw, "loan")
}
