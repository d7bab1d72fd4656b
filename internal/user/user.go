// Package user manages login accounts through /api/users.
package user

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
)

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidRole      = errors.New("role must be admin, employee or customer")
)

// Account is a login account.
type Account struct {
	ID          int64         `json:"id"`
	Role        identity.Role `json:"role"`
	Name        string        `json:"name,omitempty"`
	Email       string        `json:"email,omitempty"`
	PhoneNumber string        `json:"phone_number,omitempty"`
	CreatedAt   string        `json:"created_at,omitempty"`
	UpdatedAt   string        `json:"updated_at,omitempty"`
}

// Identity projects the account onto the fields a session keeps.
func (a Account) Identity() identity.User {
	return identity.User{ID: a.ID, Role: a.Role, Name: a.Name, Email: a.Email, PhoneNumber: a.PhoneNumber}
}

// CreateInput opens an account. The phone number is split into country
// code and local number as typed in the form.
type CreateInput struct {
	CountryCode string        `json:"country_code"`
	PhoneNumber string        `json:"phone_number"`
	Email       string        `json:"email,omitempty"`
	Role        identity.Role `json:"role"`
	Password    string        `json:"password"`
}

// UpdateInput edits an account. Nil fields are left as they are.
type UpdateInput struct {
	Name        *string        `json:"name,omitempty"`
	Email       *string        `json:"email,omitempty"`
	PhoneNumber *string        `json:"phone_number,omitempty"`
	Role        *identity.Role `json:"role,omitempty"`
}

// PasswordChange is the body of POST /auth/change-password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Service talks to /api/users.
type Service struct {
	api apiclient.Requester
}

// NewService builds a user service.
func NewService(api apiclient.Requester) *Service {
	return &Service{api: api}
}

func path(id int64) string { return fmt.Sprintf("/api/users/%d", id) }

// List returns all accounts. Admin only upstream.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, "/api/users", nil, &raw); err != nil {
		return nil, err
	}
	return apiclient.DecodeList[Account](raw, "users")
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, path(id), nil, &raw); err != nil {
		return Account{}, err
	}
	return apiclient.DecodeOne[Account](raw, "user")
}

// Create validates the form and opens the account.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	phone, err := identity.FormatPhone(in.CountryCode, in.PhoneNumber)
	if err != nil {
		return Account{}, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return Account{}, ErrPasswordRequired
	}
	if !in.Role.Valid() {
		return Account{}, ErrInvalidRole
	}

	body := map[string]string{
		"phone_number": phone,
		"email":        in.Email,
		"role":         string(in.Role),
		"password":     in.Password,
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, "/api/users", body, &raw); err != nil {
		return Account{}, err
	}
	return decode(raw)
}

// Update edits an account.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Account, error) {
	if in.Role != nil && !in.Role.Valid() {
		return Account{}, ErrInvalidRole
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPut, path(id), in, &raw); err != nil {
		return Account{}, err
	}
	return decode(raw)
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Do(ctx, http.MethodDelete, path(id), nil, nil)
}

// ChangePassword changes the session user's password.
func (s *Service) ChangePassword(ctx context.Context, in PasswordChange) error {
	if in.CurrentPassword == "" {
		return ErrPasswordRequired
	}
	if err := identity.CheckPassword(in.NewPassword, in.ConfirmPassword); err != nil {
		return err
	}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := s.api.Do(ctx, http.MethodPost, "/auth/change-password", in, &resp); err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Failed to change password"
		}
		return &apiclient.HTTPError{Status: http.StatusUnprocessableEntity, Message: msg}
	}
	return nil
}

func decode(raw json.RawMessage) (Account, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Account{}, nil
	}
	return apiclient.DecodeOne[Account](raw, "user")
}
