package transaction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/creditor/creditor_console/internal/apiclient"
)

var (
	ErrMissingFields = errors.New("please fill in all required fields")
	ErrInvalidAmount = errors.New("please enter a valid transaction amount")
)

// Service talks to /api/transactions.
type Service struct {
	api apiclient.Requester
}

// NewService builds a transaction service.
func NewService(api apiclient.Requester) *Service {
	return &Service{api: api}
}

func (s *Service) list(ctx context.Context, path string) ([]Transaction, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return apiclient.DecodeList[Transaction](raw, "transactions")
}

// List returns every transaction. Staff only upstream.
func (s *Service) List(ctx context.Context) ([]Transaction, error) {
	return s.list(ctx, "/api/transactions")
}

// ByCustomer returns a customer's transactions.
func (s *Service) ByCustomer(ctx context.Context, customerID int64) ([]Transaction, error) {
	return s.list(ctx, fmt.Sprintf("/api/transactions/customer/%d", customerID))
}

// ByLoan returns the transactions of one loan.
func (s *Service) ByLoan(ctx context.Context, loanID int64) ([]Transaction, error) {
	return s.list(ctx, fmt.Sprintf("/api/transactions/loan/%d", loanID))
}

// Get returns one transaction.
func (s *Service) Get(ctx context.Context, id int64) (Transaction, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, fmt.Sprintf("/api/transactions/%d", id), nil, &raw); err != nil {
		return Transaction{}, err
	}
	return apiclient.DecodeOne[Transaction](raw, "transaction")
}

// Create records a transaction. The direction follows the purpose when
// the caller leaves it empty.
func (s *Service) Create(ctx context.Context, in Input) (Transaction, error) {
	in, err := normalize(in)
	if err != nil {
		return Transaction{}, err
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, "/api/transactions", in, &raw); err != nil {
		return Transaction{}, err
	}
	return decode(raw)
}

// Update edits a transaction.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Transaction, error) {
	in, err := normalize(in)
	if err != nil {
		return Transaction{}, err
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPut, fmt.Sprintf("/api/transactions/%d", id), in, &raw); err != nil {
		return Transaction{}, err
	}
	return decode(raw)
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Do(ctx, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", id), nil, nil)
}

func normalize(in Input) (Input, error) {
	in.TransactionPurpose = strings.TrimSpace(in.TransactionPurpose)
	if in.LoanID <= 0 || in.CustomerID <= 0 || in.TransactionPurpose == "" || in.TransactionAmount == 0 {
		return in, ErrMissingFields
	}
	if in.TransactionAmount < 0 {
		return in, ErrInvalidAmount
	}
	in.TransactionAmount = in.TransactionAmount.Round2()
	if in.TransactionDirection == "" {
		in.TransactionDirection = DirectionFor(in.TransactionPurpose)
	}
	return in, nil
}

func decode(raw json.RawMessage) (Transaction, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Transaction{}, nil
	}
	return apiclient.DecodeOne[Transaction](raw, "transaction")
}
