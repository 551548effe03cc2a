package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/amortize"
	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/policy"
	"github.com/rsinghal/loan-desk-api/internal/port"
)

var paymentTracer = otel.Tracer("service/payments")

// PaymentService posts payments against loans and keeps balances current.
type PaymentService struct {
	payments port.PaymentStore
	loans    port.LoanStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(payments port.PaymentStore, loans port.LoanStore, metrics *observability.Metrics, logger *zap.Logger) *PaymentService {
	return &PaymentService{payments: payments, loans: loans, metrics: metrics, logger: logger}
}

// Create posts a payment. The loan's remaining balance drops by the
// amount; when it falls within the settlement tolerance of zero the loan
// flips to paid.
func (s *PaymentService) Create(ctx context.Context, p domain.Principal, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.Create")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", req.LoanID))

	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be greater than zero"}
	}

	loan, err := s.loans.GetLoan(ctx, req.LoanID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizePayment(p, domain.ActionCreate, loan); err != nil {
		return nil, err
	}
	if loan.Status == domain.LoanPaid {
		return nil, &domain.ErrValidation{Field: "loanId", Message: "loan is already paid off"}
	}
	if req.Amount > loan.RemainingBalance+amortize.BalanceTolerance {
		return nil, &domain.ErrValidation{Field: "amount", Message: "exceeds remaining balance"}
	}

	payment, err := s.payments.CreatePayment(ctx, &domain.Payment{
		LoanID:  loan.ID,
		PayerID: p.ID,
		Amount:  req.Amount,
	})
	if err != nil {
		return nil, err
	}

	loan.RemainingBalance = amortize.Round2(loan.RemainingBalance - req.Amount)
	if loan.RemainingBalance <= amortize.BalanceTolerance {
		loan.RemainingBalance = 0
		loan.Status = domain.LoanPaid
	}
	if _, err := s.loans.UpdateLoan(ctx, loan); err != nil {
		return nil, err
	}

	s.logger.Info("payment posted",
		zap.String("payment_id", payment.ID),
		zap.String("loan_id", loan.ID),
		zap.Float64("amount", req.Amount),
		zap.Float64("remaining", loan.RemainingBalance),
	)
	return payment, nil
}

// Get returns one payment if the caller participates in its loan.
func (s *PaymentService) Get(ctx context.Context, p domain.Principal, paymentID string) (*domain.Payment, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.Get")
	defer span.End()

	payment, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	loan, err := s.loans.GetLoan(ctx, payment.LoanID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizePayment(p, domain.ActionRead, loan); err != nil {
		return nil, err
	}
	return payment, nil
}

// List returns the payments visible to the caller, scoped through the
// loans they participate in.
func (s *PaymentService) List(ctx context.Context, p domain.Principal) ([]domain.Payment, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.List")
	defer span.End()

	payments, err := s.payments.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	loans, err := s.loans.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	return policy.ScopePayments(p, payments, loans), nil
}

// ListByLoan returns a single loan's payment history.
func (s *PaymentService) ListByLoan(ctx context.Context, p domain.Principal, loanID string) ([]domain.Payment, error) {
	ctx, span := paymentTracer.Start(ctx, "PaymentService.ListByLoan")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID))

	loan, err := s.loans.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizePayment(p, domain.ActionRead, loan); err != nil {
		return nil, err
	}
	return s.payments.ListPaymentsByLoan(ctx, loanID)
}

// Payments follow the ownership of the loan they post against.
func (s *PaymentService) authorizePayment(p domain.Principal, action domain.Action, loan *domain.LoanRecord) error {
	owner := ""
	if loan.OwnedBy(p.ID) {
		owner = p.ID
	}
	res := policy.Resource{Kind: domain.ResourcePayment, OwnerID: owner}
	return decide(s.metrics, policy.Authorize(p, action, res))
}
