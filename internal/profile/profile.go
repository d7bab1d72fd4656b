// Package profile builds the profile page: the session identity merged
// with the role specific employee or customer record.
package profile

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/customer"
	"github.com/creditor/creditor_console/internal/employee"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/session"
	"github.com/creditor/creditor_console/internal/user"
)

// Identity is the part of a session the profile reads and updates.
type Identity interface {
	User() (identity.User, bool)
	UpdateIdentity(ctx context.Context, patch identity.Patch) (identity.User, error)
}

// Profile is the merged view shown on the profile page.
type Profile struct {
	identity.User
	CreatedAt string             `json:"created_at,omitempty"`
	UpdatedAt string             `json:"updated_at,omitempty"`
	Customer  *customer.Customer `json:"customer,omitempty"`
	Employee  *employee.Employee `json:"employee,omitempty"`
}

// UpdateInput carries the editable profile fields. Position applies to
// employees, Address to customers.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Position    *string `json:"position,omitempty"`
	Address     *string `json:"address,omitempty"`
}

// Service loads and saves profiles.
type Service struct {
	users     *user.Service
	customers *customer.Service
	employees *employee.Service
}

// NewService builds a profile service.
func NewService(api apiclient.Requester) *Service {
	return &Service{
		users:     user.NewService(api),
		customers: customer.NewService(api),
		employees: employee.NewService(api),
	}
}

// Load fetches the account and the role record concurrently and merges
// them over the session identity. An account or role record the API will
// not show (403/404) is skipped.
func (s *Service) Load(ctx context.Context, sess Identity) (Profile, error) {
	current, ok := sess.User()
	if !ok {
		return Profile{}, session.ErrNotAuthenticated
	}

	var (
		account *user.Account
		cust    *customer.Customer
		emp     *employee.Employee
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.users.Get(gctx, current.ID)
		if skippable(err) {
			return nil
		}
		if err != nil {
			return err
		}
		account = &a
		return nil
	})
	switch current.Role {
	case identity.RoleEmployee:
		g.Go(func() error {
			e, err := s.employees.Get(gctx, current.ID)
			if skippable(err) {
				return nil
			}
			if err != nil {
				return err
			}
			emp = &e
			return nil
		})
	case identity.RoleCustomer:
		g.Go(func() error {
			c, err := s.customers.Get(gctx, current.ID)
			if skippable(err) {
				return nil
			}
			if err != nil {
				return err
			}
			cust = &c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Profile{}, err
	}

	p := Profile{User: current, Customer: cust, Employee: emp}
	if account != nil {
		p.User = merge(current, *account)
		p.CreatedAt = account.CreatedAt
		p.UpdatedAt = account.UpdatedAt
	}
	return p, nil
}

// Update saves the account fields, then the role record, and feeds the
// resulting identity fields back into the session.
func (s *Service) Update(ctx context.Context, sess Identity, in UpdateInput) (Profile, error) {
	current, ok := sess.User()
	if !ok {
		return Profile{}, session.ErrNotAuthenticated
	}

	account, err := s.users.Update(ctx, current.ID, user.UpdateInput{
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	})
	if err != nil {
		return Profile{}, err
	}

	p := Profile{}
	switch current.Role {
	case identity.RoleEmployee:
		if in.Position != nil {
			e, err := s.employees.Update(ctx, current.ID, employee.UpdateInput{Position: in.Position})
			if err != nil {
				return Profile{}, err
			}
			p.Employee = &e
		}
	case identity.RoleCustomer:
		if in.Address != nil {
			c, err := s.customers.Update(ctx, current.ID, customer.UpdateInput{Address: in.Address})
			if err != nil {
				return Profile{}, err
			}
			p.Customer = &c
		}
	}

	patch := identity.Patch{Name: in.Name, Email: in.Email, PhoneNumber: in.PhoneNumber}
	if account.ID == current.ID {
		if account.Name != "" {
			patch.Name = &account.Name
		}
		if account.Email != "" {
			patch.Email = &account.Email
		}
		if account.PhoneNumber != "" {
			patch.PhoneNumber = &account.PhoneNumber
		}
	}
	updated, err := sess.UpdateIdentity(ctx, patch)
	if err != nil {
		return Profile{}, err
	}
	p.User = updated
	p.CreatedAt = account.CreatedAt
	p.UpdatedAt = account.UpdatedAt
	return p, nil
}

// merge lays the fetched account over the session user without touching
// id or role.
func merge(u identity.User, a user.Account) identity.User {
	patch := identity.Patch{}
	if a.Name != "" {
		patch.Name = &a.Name
	}
	if a.Email != "" {
		patch.Email = &a.Email
	}
	if a.PhoneNumber != "" {
		patch.PhoneNumber = &a.PhoneNumber
	}
	return u.Apply(patch)
}

func skippable(err error) bool {
	var herr *apiclient.HTTPError
	if !errors.As(err, &herr) {
		return false
	}
	return herr.Status == http.StatusForbidden || herr.Status == http.StatusNotFound
}
