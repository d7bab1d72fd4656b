package loan

import (
	"errors"

	"github.com/creditor/creditor_console/internal/money"
)

var (
	ErrEmptyPayment      = errors.New("please enter a payment amount")
	ErrPrincipalExceeded = errors.New("principle payment cannot exceed the principle amount")
	ErrNegativePayment   = errors.New("principle payment cannot be negative")
)

// PreparePayment builds the payment for l. Interest is always paid in full.
// A nil principal pays off the remaining principal. Amounts are rounded to
// cents before the checks run.
func PreparePayment(l Loan, principal *money.Amount) (Payment, error) {
	p := l.PrincipleAmount
	if principal != nil {
		p = *principal
	}

	payment := Payment{
		PrinciplePayment: p.Round2(),
		InterestPayment:  l.InterestAmount.Round2(),
		CustomerID:       l.CustomerID,
	}

	switch {
	case payment.PrinciplePayment < 0:
		return Payment{}, ErrNegativePayment
	case payment.PrinciplePayment == 0 && payment.InterestPayment == 0:
		return Payment{}, ErrEmptyPayment
	case payment.PrinciplePayment > l.PrincipleAmount.Round2():
		return Payment{}, ErrPrincipalExceeded
	}
	return payment, nil
}
