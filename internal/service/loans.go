package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/amortize"
	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/policy"
	"github.com/rsinghal/loan-desk-api/internal/port"
)

var loanTracer = otel.Tracer("service/loans")

// LoanService handles funded loans: origination, payoff planning and
// amortization schedules.
type LoanService struct {
	store   port.LoanStore
	users   port.UserStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewLoanService creates a new loan service.
func NewLoanService(store port.LoanStore, users port.UserStore, metrics *observability.Metrics, logger *zap.Logger) *LoanService {
	return &LoanService{store: store, users: users, metrics: metrics, logger: logger}
}

// Create funds a loan. Only lenders originate; the monthly payment and
// opening balance come from the amortization engine, never the request.
func (s *LoanService) Create(ctx context.Context, p domain.Principal, req *domain.CreateLoanRequest) (*domain.LoanRecord, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Create")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionCreate, policy.Resource{Kind: domain.ResourceLoan})); err != nil {
		return nil, err
	}

	if req.BorrowerID == "" {
		return nil, &domain.ErrValidation{Field: "borrowerId", Message: "borrower is required"}
	}
	borrower, err := s.users.GetUser(ctx, req.BorrowerID)
	if err != nil {
		return nil, err
	}
	if borrower.Role != domain.RoleBorrower {
		return nil, &domain.ErrValidation{Field: "borrowerId", Message: "user is not a borrower"}
	}

	result, err := amortize.Compute(amortize.Terms{
		Principal:  req.Principal,
		AnnualRate: req.AnnualRate,
		TermMonths: req.TermMonths,
	})
	if err != nil {
		return nil, err
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = time.Now()
	}

	created, err := s.store.CreateLoan(ctx, &domain.LoanRecord{
		LoanName:         req.LoanName,
		LoanType:         req.LoanType,
		LenderID:         p.ID,
		BorrowerID:       req.BorrowerID,
		Principal:        req.Principal,
		AnnualRate:       req.AnnualRate,
		TermMonths:       req.TermMonths,
		StartDate:        startDate,
		Status:           domain.LoanActive,
		MonthlyPayment:   amortize.Round2(result.MonthlyPayment),
		RemainingBalance: req.Principal,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan funded",
		zap.String("loan_id", created.ID),
		zap.String("lender_id", p.ID),
		zap.String("borrower_id", req.BorrowerID),
		zap.Float64("principal", req.Principal),
	)
	return created, nil
}

// Get returns one loan if the caller participates in it.
func (s *LoanService) Get(ctx context.Context, p domain.Principal, loanID string) (*domain.LoanRecord, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Get")
	defer span.End()

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeLoan(p, domain.ActionRead, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// Update revises the fields a participant may change after funding: the
// display name, and the status toggle between active and paid. Marking a
// loan paid settles it; the balance drops to zero.
func (s *LoanService) Update(ctx context.Context, p domain.Principal, loanID string, req *domain.UpdateLoanRequest) (*domain.LoanRecord, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID))

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeLoan(p, domain.ActionUpdate, loan); err != nil {
		return nil, err
	}

	if req.LoanName != nil {
		loan.LoanName = *req.LoanName
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.LoanActive:
			loan.Status = domain.LoanActive
		case domain.LoanPaid:
			loan.Status = domain.LoanPaid
			loan.RemainingBalance = 0
		default:
			return nil, &domain.ErrValidation{Field: "status", Message: "must be active or paid"}
		}
	}

	updated, err := s.store.UpdateLoan(ctx, loan)
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan updated",
		zap.String("loan_id", loanID),
		zap.String("status", string(updated.Status)),
		zap.String("by", p.ID),
	)
	return updated, nil
}

// List returns the loans visible to the caller.
func (s *LoanService) List(ctx context.Context, p domain.Principal) ([]domain.LoanRecord, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.List")
	defer span.End()

	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	return policy.ScopeLoans(p, loans), nil
}

// Delete removes a loan. Only the originating lender (or admin) may.
func (s *LoanService) Delete(ctx context.Context, p domain.Principal, loanID string) error {
	ctx, span := loanTracer.Start(ctx, "LoanService.Delete")
	defer span.End()

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if err := s.authorizeLoan(p, domain.ActionDelete, loan); err != nil {
		return err
	}

	if err := s.store.DeleteLoan(ctx, loanID); err != nil {
		return err
	}
	s.logger.Info("loan deleted", zap.String("loan_id", loanID), zap.String("by", p.ID))
	return nil
}

// Schedule computes the full amortization schedule for a loan the caller
// may see.
func (s *LoanService) Schedule(ctx context.Context, p domain.Principal, loanID string) ([]amortize.ScheduledPayment, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.Schedule")
	defer span.End()
	span.SetAttributes(attribute.String("loan.id", loanID))

	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeLoan(p, domain.ActionRead, loan); err != nil {
		return nil, err
	}

	return amortize.Schedule(amortize.Terms{
		Principal:  loan.Principal,
		AnnualRate: loan.AnnualRate,
		TermMonths: loan.TermMonths,
	}, loan.StartDate)
}

// SnowballPlan orders the caller's active loans smallest balance first
// and reports the extra payment freed once the first is cleared.
func (s *LoanService) SnowballPlan(ctx context.Context, p domain.Principal) (*amortize.PayoffPlan, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.SnowballPlan")
	defer span.End()

	loans, err := s.activeLoans(ctx, p)
	if err != nil {
		return nil, err
	}
	plan := amortize.PlanSnowball(loans)
	return &plan, nil
}

// AvalanchePlan orders the caller's active loans highest rate first.
func (s *LoanService) AvalanchePlan(ctx context.Context, p domain.Principal) (*amortize.PayoffPlan, error) {
	ctx, span := loanTracer.Start(ctx, "LoanService.AvalanchePlan")
	defer span.End()

	loans, err := s.activeLoans(ctx, p)
	if err != nil {
		return nil, err
	}
	plan := amortize.PlanAvalanche(loans)
	return &plan, nil
}

func (s *LoanService) activeLoans(ctx context.Context, p domain.Principal) ([]domain.LoanRecord, error) {
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}

	visible := policy.ScopeLoans(p, loans)
	active := make([]domain.LoanRecord, 0, len(visible))
	for _, l := range visible {
		if l.Status == domain.LoanActive {
			active = append(active, l)
		}
	}
	return active, nil
}

func (s *LoanService) authorizeLoan(p domain.Principal, action domain.Action, loan *domain.LoanRecord) error {
	owner := ""
	if loan.OwnedBy(p.ID) {
		owner = p.ID
	}
	res := policy.Resource{Kind: domain.ResourceLoan, OwnerID: owner}
	return decide(s.metrics, policy.Authorize(p, action, res))
}
