package transaction

import "github.com/creditor/creditor_console/internal/money"

// Direction is whether money came in or went out.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Known transaction purposes.
const (
	PurposePrinciplePayment = "loan_principle_payment"
	PurposeInterestPayment  = "loan_interest_payment"
	PurposeDisbursement     = "loan_disbursement"
)

// DirectionFor returns the direction implied by purpose. Disbursements go
// out; everything else comes in.
func DirectionFor(purpose string) Direction {
	if purpose == PurposeDisbursement {
		return DirectionOut
	}
	return DirectionIn
}

// Transaction is a recorded money movement on a loan.
type Transaction struct {
	ID                   int64        `json:"id"`
	LoanID               int64        `json:"loan_id"`
	CustomerID           int64        `json:"customer_id"`
	EmployeeID           int64        `json:"employee_id,omitempty"`
	TransactionAmount    money.Amount `json:"transaction_amount"`
	TransactionDirection Direction    `json:"transaction_direction"`
	TransactionPurpose   string       `json:"transaction_purpose"`
	PrincipleAmount      money.Amount `json:"principle_amount,omitempty"`
	CustomerFirstName    string       `json:"customer_first_name,omitempty"`
	CustomerLastName     string       `json:"customer_last_name,omitempty"`
	CreatedAt            string       `json:"created_at,omitempty"`
	UpdatedAt            string       `json:"updated_at,omitempty"`
}

// Input records or edits a transaction.
type Input struct {
	TransactionAmount    money.Amount `json:"transaction_amount"`
	LoanID               int64        `json:"loan_id"`
	CustomerID           int64        `json:"customer_id"`
	TransactionPurpose   string       `json:"transaction_purpose"`
	TransactionDirection Direction    `json:"transaction_direction,omitempty"`
}
