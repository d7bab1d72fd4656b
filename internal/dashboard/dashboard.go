// Package dashboard summarises the loans visible to a session.
package dashboard

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/apiclient"
	"github.com/creditor/creditor_console/internal/identity"
	"github.com/creditor/creditor_console/internal/loan"
	"github.com/creditor/creditor_console/internal/middleware"
	"github.com/creditor/creditor_console/internal/money"
)

// Summary counts loans by status. Amounts are the API's figures added up.
type Summary struct {
	Total       int          `json:"total"`
	Active      int          `json:"active"`
	Paid        int          `json:"paid"`
	Defaulted   int          `json:"defaulted"`
	Lent        money.Amount `json:"lent"`
	Outstanding money.Amount `json:"outstanding"`
}

// Dashboard is what the landing page renders.
type Dashboard struct {
	Title   string      `json:"title"`
	Summary Summary     `json:"summary"`
	Recent  []loan.Loan `json:"recent"`
}

const recentLimit = 5

// Summarize counts loans by current status.
func Summarize(loans []loan.Loan) Summary {
	var s Summary
	for _, l := range loans {
		s.Total++
		s.Lent += l.LoanAmount
		switch l.CurrentStatus {
		case loan.StatusActive:
			s.Active++
			s.Outstanding += l.PrincipleAmount + l.InterestAmount + l.OverdueAmount
		case loan.StatusPaid:
			s.Paid++
		case loan.StatusDefaulted:
			s.Defaulted++
			s.Outstanding += l.PrincipleAmount + l.InterestAmount + l.OverdueAmount
		}
	}
	s.Lent = s.Lent.Round2()
	s.Outstanding = s.Outstanding.Round2()
	return s
}

// Load builds the dashboard for u. The API already limits customers to
// their own loans.
func Load(ctx context.Context, api apiclient.Requester, u identity.User) (Dashboard, error) {
	loans, err := loan.NewService(api).List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	title := "Loans"
	if u.Role == identity.RoleCustomer {
		title = "My Loans"
	}
	recent := loans
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return Dashboard{Title: title, Summary: Summarize(loans), Recent: recent}, nil
}

// Handler serves GET /dashboard.
func Handler(client func(*fiber.Ctx) apiclient.Requester) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, _ := middleware.Session(c).User()
		d, err := Load(c.UserContext(), client(c), u)
		if err != nil {
			return middleware.UpstreamError(c, err)
		}
		return c.JSON(d)
	}
}
