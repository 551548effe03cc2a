package port

import (
	"context"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

// LoanStore handles loan record data operations.
type LoanStore interface {
	CreateLoan(ctx context.Context, loan *domain.LoanRecord) (*domain.LoanRecord, error)
	GetLoan(ctx context.Context, loanID string) (*domain.LoanRecord, error)
	ListLoans(ctx context.Context) ([]domain.LoanRecord, error)
	UpdateLoan(ctx context.Context, loan *domain.LoanRecord) (*domain.LoanRecord, error)
	DeleteLoan(ctx context.Context, loanID string) error
}

// PaymentStore handles payment data operations.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	ListPayments(ctx context.Context) ([]domain.Payment, error)
	ListPaymentsByLoan(ctx context.Context, loanID string) ([]domain.Payment, error)
}
