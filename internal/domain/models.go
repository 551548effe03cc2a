// Package domain holds the entities, value types and typed errors shared
// across the loan-desk service layers.
package domain

import "time"

// User is a registered account. PasswordHash never leaves the store layer;
// the JSON tag keeps it out of every response.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal returns the policy-facing view of the user.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

// LoanApplication is a borrower's request for a loan. It is owned by the
// borrower who created it until a reviewer mutates its status.
type LoanApplication struct {
	ID              string            `json:"id"`
	BorrowerID      string            `json:"borrowerId"`
	LoanType        string            `json:"loanType"`
	RequestedAmount float64           `json:"requestedAmount"`
	TermMonths      int               `json:"termMonths"`
	Purpose         string            `json:"purpose,omitempty"`
	EmploymentType  string            `json:"employmentType,omitempty"`
	MonthlyIncome   float64           `json:"monthlyIncome,omitempty"`
	ExistingEMI     float64           `json:"existingEMI,omitempty"`
	Status          ApplicationStatus `json:"status"`
	SubmittedAt     time.Time         `json:"submittedAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// LoanRecord is a funded loan. MonthlyPayment is derived by the
// amortization engine at creation time and never edited directly.
type LoanRecord struct {
	ID               string     `json:"id"`
	LoanName         string     `json:"loanName"`
	LoanType         string     `json:"loanType"`
	LenderID         string     `json:"lenderId"`
	BorrowerID       string     `json:"borrowerId"`
	Principal        float64    `json:"principal"`
	AnnualRate       float64    `json:"annualRatePercent"`
	TermMonths       int        `json:"termMonths"`
	StartDate        time.Time  `json:"startDate"`
	Status           LoanStatus `json:"status"`
	MonthlyPayment   float64    `json:"monthlyPayment"`
	RemainingBalance float64    `json:"remainingBalance"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// OwnedBy reports whether the principal participates in the loan, either
// as the lender who originated it or the borrower it is attached to.
func (l *LoanRecord) OwnedBy(principalID string) bool {
	return l.LenderID == principalID || l.BorrowerID == principalID
}

// Payment is a single posting against a loan's remaining balance.
type Payment struct {
	ID        string    `json:"id"`
	LoanID    string    `json:"loanId"`
	PayerID   string    `json:"payerId"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paidAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoanProduct is a catalog entry: a loan type with its default annual rate
// and the amount/tenure window a lender offers it in. This is configuration
// data consumed by the quote endpoint, not calculation logic.
type LoanProduct struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Rate      float64   `json:"rate"`
	MinAmount float64   `json:"minAmount"`
	MaxAmount float64   `json:"maxAmount"`
	MinTenure int       `json:"minTenure"`
	MaxTenure int       `json:"maxTenure"`
	LenderID  string    `json:"lenderId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ============================================================
// Request / response payloads
// ============================================================

// CreateApplicationRequest is the borrower-facing submission body.
type CreateApplicationRequest struct {
	LoanType        string  `json:"loanType"`
	RequestedAmount float64 `json:"requestedAmount"`
	TermMonths      int     `json:"termMonths"`
	Purpose         string  `json:"purpose"`
	EmploymentType  string  `json:"employmentType"`
	MonthlyIncome   float64 `json:"monthlyIncome"`
	ExistingEMI     float64 `json:"existingEMI"`
}

// UpdateApplicationRequest carries the fields a pending application may
// still change. Nil means "leave as is".
type UpdateApplicationRequest struct {
	LoanType        *string  `json:"loanType"`
	RequestedAmount *float64 `json:"requestedAmount"`
	TermMonths      *int     `json:"termMonths"`
	Purpose         *string  `json:"purpose"`
	MonthlyIncome   *float64 `json:"monthlyIncome"`
	ExistingEMI     *float64 `json:"existingEMI"`
}

// ChangeStatusRequest is the reviewer's status mutation body.
type ChangeStatusRequest struct {
	Status ApplicationStatus `json:"status"`
}

// CreateLoanRequest funds a loan. The monthly payment and balance are
// computed server-side; clients cannot supply them.
type CreateLoanRequest struct {
	LoanName   string    `json:"loanName"`
	LoanType   string    `json:"loanType"`
	BorrowerID string    `json:"borrowerId"`
	Principal  float64   `json:"principal"`
	AnnualRate float64   `json:"annualRatePercent"`
	TermMonths int       `json:"termMonths"`
	StartDate  time.Time `json:"startDate"`
}

// UpdateLoanRequest carries the post-funding edits a participant may
// make. Nil fields are left untouched.
type UpdateLoanRequest struct {
	LoanName *string     `json:"loanName"`
	Status   *LoanStatus `json:"status"`
}

// CreatePaymentRequest posts a payment against a loan.
type CreatePaymentRequest struct {
	LoanID string  `json:"loanId"`
	Amount float64 `json:"amount"`
}

// QuoteRequest asks for an EMI quote. Rate is optional; when zero the
// product's default rate applies.
type QuoteRequest struct {
	Amount     float64 `json:"amount"`
	TermMonths int     `json:"termMonths"`
	Rate       float64 `json:"rate,omitempty"`
}

// QuoteResponse carries engine output rounded for the wire.
type QuoteResponse struct {
	LoanType       string  `json:"loanType"`
	Amount         float64 `json:"amount"`
	Rate           float64 `json:"rate"`
	TermMonths     int     `json:"termMonths"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
	TotalInterest  float64 `json:"totalInterest"`
}

// UpdateProductRequest lets a lender revise a catalog entry.
type UpdateProductRequest struct {
	Rate      *float64 `json:"rate"`
	MinAmount *float64 `json:"minAmount"`
	MaxAmount *float64 `json:"maxAmount"`
	MinTenure *int     `json:"minTenure"`
	MaxTenure *int     `json:"maxTenure"`
}

// UpdateUserRequest covers the self-service profile fields.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SuccessResponse is a plain message body for mutations with no payload.
type SuccessResponse struct {
	Message string `json:"message"`
}
