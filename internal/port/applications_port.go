package port

import (
	"context"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

// ApplicationStore handles loan application data operations.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *domain.LoanApplication) (*domain.LoanApplication, error)
	GetApplication(ctx context.Context, appID string) (*domain.LoanApplication, error)
	ListApplications(ctx context.Context) ([]domain.LoanApplication, error)
	UpdateApplication(ctx context.Context, app *domain.LoanApplication) (*domain.LoanApplication, error)
	DeleteApplication(ctx context.Context, appID string) error

	// UpdateApplicationStatus moves an application from one status to
	// another atomically. It fails with ErrConflict when the stored
	// status no longer matches from, so concurrent reviewers can apply
	// at most one transition.
	UpdateApplicationStatus(ctx context.Context, appID string, from, to domain.ApplicationStatus) (*domain.LoanApplication, error)
}
