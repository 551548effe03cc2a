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

var appTracer = otel.Tracer("service/applications")

// notifyTimeout bounds the webhook delivery that runs outside the request.
const notifyTimeout = 10 * time.Second

// ApplicationService handles the loan application lifecycle.
type ApplicationService struct {
	store    port.ApplicationStore
	notifier port.StatusNotifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewApplicationService creates a new application service.
func NewApplicationService(store port.ApplicationStore, notifier port.StatusNotifier, metrics *observability.Metrics, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Create submits a new application for the calling borrower. The borrower
// id always comes from the authenticated principal, never the body.
func (s *ApplicationService) Create(ctx context.Context, p domain.Principal, req *domain.CreateApplicationRequest) (*domain.LoanApplication, error) {
	ctx, span := appTracer.Start(ctx, "ApplicationService.Create")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionCreate, policy.Resource{Kind: domain.ResourceApplication})); err != nil {
		return nil, err
	}

	if req.LoanType == "" {
		return nil, &domain.ErrValidation{Field: "loanType", Message: "loan type is required"}
	}
	// Requested terms must be within what the amortization engine accepts,
	// otherwise an approved application could never be funded.
	if err := validateRequestedTerms(req.RequestedAmount, req.TermMonths); err != nil {
		return nil, err
	}

	created, err := s.store.CreateApplication(ctx, &domain.LoanApplication{
		BorrowerID:      p.ID,
		LoanType:        req.LoanType,
		RequestedAmount: req.RequestedAmount,
		TermMonths:      req.TermMonths,
		Purpose:         req.Purpose,
		EmploymentType:  req.EmploymentType,
		MonthlyIncome:   req.MonthlyIncome,
		ExistingEMI:     req.ExistingEMI,
		Status:          domain.StatusPending,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("application submitted",
		zap.String("application_id", created.ID),
		zap.String("borrower_id", p.ID),
		zap.String("loan_type", created.LoanType),
	)
	return created, nil
}

// Get returns one application if the caller may see it.
func (s *ApplicationService) Get(ctx context.Context, p domain.Principal, appID string) (*domain.LoanApplication, error) {
	ctx, span := appTracer.Start(ctx, "ApplicationService.Get")
	defer span.End()

	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	res := policy.Resource{Kind: domain.ResourceApplication, OwnerID: app.BorrowerID, Status: app.Status}
	if err := decide(s.metrics, policy.Authorize(p, domain.ActionRead, res)); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns the applications visible to the caller: borrowers their
// own, reviewers and analysts all.
func (s *ApplicationService) List(ctx context.Context, p domain.Principal) ([]domain.LoanApplication, error) {
	ctx, span := appTracer.Start(ctx, "ApplicationService.List")
	defer span.End()

	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, err
	}
	return policy.ScopeApplications(p, apps), nil
}

// Update revises an application. The owning borrower may edit only while
// it is pending; reviewers may edit at any status.
func (s *ApplicationService) Update(ctx context.Context, p domain.Principal, appID string, req *domain.UpdateApplicationRequest) (*domain.LoanApplication, error) {
	ctx, span := appTracer.Start(ctx, "ApplicationService.Update")
	defer span.End()

	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return nil, err
	}

	res := policy.Resource{Kind: domain.ResourceApplication, OwnerID: app.BorrowerID, Status: app.Status}
	d := policy.Authorize(p, domain.ActionUpdate, res)
	s.metrics.IncrAuthzDecision(d.Allowed)
	if !d.Allowed {
		if d.Reason == policy.ReasonNotMutable {
			return nil, &domain.ErrNotMutable{Status: string(app.Status)}
		}
		return nil, d.Err()
	}

	if req.LoanType != nil {
		app.LoanType = *req.LoanType
	}
	if req.RequestedAmount != nil {
		app.RequestedAmount = *req.RequestedAmount
	}
	if req.TermMonths != nil {
		app.TermMonths = *req.TermMonths
	}
	if req.Purpose != nil {
		app.Purpose = *req.Purpose
	}
	if req.MonthlyIncome != nil {
		app.MonthlyIncome = *req.MonthlyIncome
	}
	if req.ExistingEMI != nil {
		app.ExistingEMI = *req.ExistingEMI
	}

	if err := validateRequestedTerms(app.RequestedAmount, app.TermMonths); err != nil {
		return nil, err
	}

	return s.store.UpdateApplication(ctx, app)
}

// Delete withdraws an application under the same mutability rules as
// Update.
func (s *ApplicationService) Delete(ctx context.Context, p domain.Principal, appID string) error {
	ctx, span := appTracer.Start(ctx, "ApplicationService.Delete")
	defer span.End()

	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return err
	}

	res := policy.Resource{Kind: domain.ResourceApplication, OwnerID: app.BorrowerID, Status: app.Status}
	d := policy.Authorize(p, domain.ActionDelete, res)
	s.metrics.IncrAuthzDecision(d.Allowed)
	if !d.Allowed {
		if d.Reason == policy.ReasonNotMutable {
			return &domain.ErrNotMutable{Status: string(app.Status)}
		}
		return d.Err()
	}

	if err := s.store.DeleteApplication(ctx, appID); err != nil {
		return err
	}
	s.logger.Info("application deleted",
		zap.String("application_id", appID),
		zap.String("by", p.ID),
	)
	return nil
}

// ChangeStatus moves an application through the review state machine.
// The store applies the transition as a compare-and-swap, so two reviewers
// racing on the same application produce exactly one transition.
func (s *ApplicationService) ChangeStatus(ctx context.Context, p domain.Principal, appID string, target domain.ApplicationStatus) (*domain.LoanApplication, error) {
	ctx, span := appTracer.Start(ctx, "ApplicationService.ChangeStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("application.id", appID),
		attribute.String("status.target", string(target)),
	)

	app, err := s.store.GetApplication(ctx, appID)
	if err != nil {
		return nil, err
	}

	res := policy.Resource{Kind: domain.ResourceApplication, OwnerID: app.BorrowerID, Status: app.Status}
	if err := decide(s.metrics, policy.Authorize(p, domain.ActionChangeStatus, res)); err != nil {
		return nil, err
	}

	if err := policy.CanTransition(app.Status, target); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateApplicationStatus(ctx, appID, app.Status, target)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrStatusTransition(string(app.Status), string(target))
	s.logger.Info("application status changed",
		zap.String("application_id", appID),
		zap.String("from", string(app.Status)),
		zap.String("to", string(target)),
		zap.String("by", p.ID),
	)

	s.notifyAsync(port.StatusChangeEvent{
		ApplicationID: updated.ID,
		BorrowerID:    updated.BorrowerID,
		From:          string(app.Status),
		To:            string(target),
		ChangedBy:     p.ID,
		ChangedAt:     updated.UpdatedAt.UTC().Format(time.RFC3339),
	})

	return updated, nil
}

func validateRequestedTerms(amount float64, termMonths int) error {
	if amount <= 0 {
		return &domain.ErrInvalidTerms{Field: "requestedAmount", Message: "must be greater than zero"}
	}
	if amount > amortize.MaxPrincipal {
		return &domain.ErrInvalidTerms{Field: "requestedAmount", Message: "exceeds maximum loan amount"}
	}
	if termMonths <= 0 {
		return &domain.ErrInvalidTerms{Field: "termMonths", Message: "must be greater than zero"}
	}
	if termMonths > amortize.MaxTermMonths {
		return &domain.ErrInvalidTerms{Field: "termMonths", Message: "exceeds maximum term"}
	}
	return nil
}

// notifyAsync delivers the event off the request path. The transition has
// already committed; delivery failures are logged and counted, never
// surfaced to the reviewer.
func (s *ApplicationService) notifyAsync(event port.StatusChangeEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.NotifyStatusChange(ctx, event); err != nil {
			s.metrics.IncrExternalError("webhook")
			s.logger.Warn("status webhook delivery failed",
				zap.String("application_id", event.ApplicationID),
				zap.Error(err),
			)
		}
	}()
}
