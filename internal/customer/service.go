package customer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/loan"
)

var (
	ErrMissingFields = errors.New("please fill in all required fields")
	ErrMissingPhone  = errors.New("please enter a complete phone number with country code")
)

// Service talks to /api/customers.
type Service struct {
	api apiclient.Requester
}

// NewService builds a customer service on top of an authenticated client.
func NewService(api apiclient.Requester) *Service {
	return &Service{api: api}
}

func path(id int64) string { return fmt.Sprintf("/api/customers/%d", id) }

// List returns every customer. Staff only upstream.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, "/api/customers", nil, &raw); err != nil {
		return nil, err
	}
	return apiclient.DecodeList[Customer](raw, "customers")
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, path(id), nil, &raw); err != nil {
		return Customer{}, err
	}
	return apiclient.DecodeOne[Customer](raw, "customer")
}

// Loans returns the loans of one customer.
func (s *Service) Loans(ctx context.Context, id int64) ([]loan.Loan, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, path(id)+"/loans", nil, &raw); err != nil {
		return nil, err
	}
	return apiclient.DecodeList[loan.Loan](raw, "loans")
}

// Create checks the registration form and submits it with the phone number
// in "+<code> <digits>" form.
func (s *Service) Create(ctx context.Context, in CreateInput) (Customer, error) {
	for _, v := range []string{in.FirstName, in.LastName, in.SocialSecurityNumber, in.DateOfBirth, in.Address} {
		if strings.TrimSpace(v) == "" {
			return Customer{}, ErrMissingFields
		}
	}
	if err := identity.CheckPassword(in.Password, in.Password); err != nil {
		return Customer{}, err
	}
	if strings.TrimSpace(in.CountryCode) == "" || strings.TrimSpace(in.PhoneNumber) == "" {
		return Customer{}, ErrMissingPhone
	}
	phone, err := identity.FormatPhone(in.CountryCode, in.PhoneNumber)
	if err != nil {
		return Customer{}, err
	}

	body := map[string]string{
		"first_name":             in.FirstName,
		"last_name":              in.LastName,
		"social_security_number": in.SocialSecurityNumber,
		"date_of_birth":          in.DateOfBirth,
		"address":                in.Address,
		"phone_number":           phone,
		"email":                  in.Email,
		"password":               in.Password,
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, "/api/customers", body, &raw); err != nil {
		return Customer{}, err
	}
	return decode(raw)
}

// Update edits a customer.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Customer, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPut, path(id), in, &raw); err != nil {
		return Customer{}, err
	}
	return decode(raw)
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Do(ctx, http.MethodDelete, path(id), nil, nil)
}

func decode(raw json.RawMessage) (Customer, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Customer{}, nil
	}
	return apiclient.DecodeOne[Customer](raw, "customer")
}
