package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/policy"
	"github.com/rsinghal/loan-desk-api/internal/port"
)

var analyticsTracer = otel.Tracer("service/analytics")

// AnalyticsService aggregates portfolio-wide figures for analysts.
type AnalyticsService struct {
	applications port.ApplicationStore
	loans        port.LoanStore
	payments     port.PaymentStore
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(applications port.ApplicationStore, loans port.LoanStore, payments port.PaymentStore, metrics *observability.Metrics, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		applications: applications,
		loans:        loans,
		payments:     payments,
		metrics:      metrics,
		logger:       logger,
	}
}

// Dashboard aggregates application, loan and payment totals. The three
// collections are fetched concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, p domain.Principal) (*domain.DashboardStats, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.Dashboard")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionRead, policy.Resource{Kind: domain.ResourceAnalytics})); err != nil {
		return nil, err
	}

	var (
		apps     []domain.LoanApplication
		loans    []domain.LoanRecord
		payments []domain.Payment
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		apps, err = s.applications.ListApplications(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		loans, err = s.loans.ListLoans(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.payments.ListPayments(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{}

	stats.Applications.Total = len(apps)
	for _, a := range apps {
		switch a.Status {
		case domain.StatusPending:
			stats.Applications.Pending++
		case domain.StatusUnderReview:
			stats.Applications.UnderReview++
		case domain.StatusApproved:
			stats.Applications.Approved++
		case domain.StatusRejected:
			stats.Applications.Rejected++
		}
	}

	stats.Loans.Total = len(loans)
	for _, l := range loans {
		if l.Status == domain.LoanActive {
			stats.Loans.Active++
		}
		stats.Loans.TotalAmount += l.Principal
	}

	stats.Payments.Total = len(payments)
	for _, pay := range payments {
		stats.Payments.TotalAmount += pay.Amount
	}

	return stats, nil
}

// ApplicationStats groups applications by status, loan type and
// submission month for charting.
func (s *AnalyticsService) ApplicationStats(ctx context.Context, p domain.Principal) (*domain.ApplicationStats, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.ApplicationStats")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionRead, policy.Resource{Kind: domain.ResourceAnalytics})); err != nil {
		return nil, err
	}

	apps, err := s.applications.ListApplications(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.ApplicationStats{
		ByStatus:   make(map[string]int),
		ByLoanType: make(map[string]int),
		ByMonth:    make(map[string]int),
	}
	for _, a := range apps {
		stats.ByStatus[string(a.Status)]++
		stats.ByLoanType[a.LoanType]++
		stats.ByMonth[a.SubmittedAt.Format("2006-01")]++
	}
	return stats, nil
}

// Ops exposes the process's operational counters.
func (s *AnalyticsService) Ops(ctx context.Context, p domain.Principal) (*domain.OpsSnapshot, error) {
	_, span := analyticsTracer.Start(ctx, "AnalyticsService.Ops")
	defer span.End()

	if err := decide(s.metrics, policy.Authorize(p, domain.ActionRead, policy.Resource{Kind: domain.ResourceAnalytics})); err != nil {
		return nil, err
	}
	return s.metrics.OpsSnapshot(), nil
}
