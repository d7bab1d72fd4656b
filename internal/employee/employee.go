package employee

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

// ErrMissingFields is returned when the employee form is incomplete.
var ErrMissingFields = errors.New("please fill in all required fields")

// Employee is a staff record.
type Employee struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id,omitempty"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CreateInput registers an employee and their login.
type CreateInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Password    string `json:"password"`
}

// UpdateInput edits an employee. Nil fields are left as they are.
type UpdateInput struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Position    *string `json:"position,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}

// Service talks to /api/employees.
type Service struct {
	api apiclient.Requester
}

// NewService builds an employee service.
func NewService(api apiclient.Requester) *Service {
	return &Service{api: api}
}

func path(id int64) string { return fmt.Sprintf("/api/employees/%d", id) }

// List returns all employees. The API answers either {employees: [...]} or a bare array.
func (s *Service) List(ctx context.Context) ([]Employee, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, "/api/employees", nil, &raw); err != nil {
		return nil, err
	}
	return apiclient.DecodeList[Employee](raw, "employees")
}

// Get returns one employee.
func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodGet, path(id), nil, &raw); err != nil {
		return Employee{}, err
	}
	return apiclient.DecodeOne[Employee](raw, "employee")
}

// Create checks the required fields and registers the employee.
func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	for _, v := range []string{in.FirstName, in.LastName, in.Position, in.Email, in.Password} {
		if strings.TrimSpace(v) == "" {
			return Employee{}, ErrMissingFields
		}
	}
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, "/api/employees", in, &raw); err != nil {
		return Employee{}, err
	}
	return decode(raw)
}

// Update edits an employee.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Employee, error) {
	var raw json.RawMessage
	if err := s.api.Do(ctx, http.MethodPut, path(id), in, &raw); err != nil {
		return Employee{}, err
	}
	return decode(raw)
}

// Delete removes an employee.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Do(ctx, http.MethodDelete, path(id), nil, nil)
}

func decode(raw json.RawMessage) (Employee, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Employee{}, nil
	}
	return apiclient.DecodeOne[Employee](raw, "employee")
}
