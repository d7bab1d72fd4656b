package loan

import "github.com/creditor/creditor_console/internal/money"

// Status is the lifecycle state the lending API reports for a loan.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaid      Status = "paid"
	StatusDefaulted Status = "defaulted"
)

// Loan is a loan record as the API returns it. Amounts and day counts are
// computed upstream and only displayed.
type Loan struct {
	ID            int64  `json:"id"`
	CustomerID    int64  `json:"customer_id"`
	EmployeeID    int64  `json:"employee_id,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	CurrentStatus Status `json:"current_status"`

	LoanAmount      money.Amount `json:"loan_amount"`
	PrincipleAmount money.Amount `json:"principle_amount"`
	InterestAmount  money.Amount `json:"interest_amount"`
	OverdueAmount   money.Amount `json:"overdue_amount"`
	PaidAmount      money.Amount `json:"paid_amount"`
	PaidInterest    money.Amount `json:"paid_interest"`
	TotalAmount     money.Amount `json:"total_amount"`
	InterestRate    money.Amount `json:"interest_rate"`
	OverdueRate     money.Amount `json:"overdue_rate"`

	LoanPeriod    int `json:"loan_period"`
	InterestDays  int `json:"interest_days"`
	OverdueDays   int `json:"overdue_days"`
	WaitingDays   int `json:"waiting_days"`
	RemainingDays int `json:"remaining_days"`

	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	DefaultDate string `json:"default_date,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CreateInput opens a loan for a customer.
type CreateInput struct {
	CustomerID int64        `json:"customer_id"`
	LoanAmount money.Amount `json:"loan_amount"`
}

// UpdateInput carries the fields staff may edit. Nil fields are omitted.
type UpdateInput struct {
	LoanAmount    *money.Amount `json:"loan_amount,omitempty"`
	CurrentStatus *Status       `json:"current_status,omitempty"`
	StartDate     *string       `json:"start_date,omitempty"`
	EndDate       *string       `json:"end_date,omitempty"`
}

// Payment is the body of PUT /api/loans/:id/payment.
type Payment struct {
	PrinciplePayment money.Amount `json:"principle_payment"`
	InterestPayment  money.Amount `json:"interest_payment"`
	CustomerID       int64        `json:"customer_id"`
}

// Extension asks for more days on a loan.
type Extension struct {
	Days   int    `json:"days"`
	Reason string `json:"reason,omitempty"`
}

// Decision values accepted by the loan application process endpoint.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Decision approves or rejects a loan application.
type Decision struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes,omitempty"`
}
