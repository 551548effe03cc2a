package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

func (s *Store) CreateApplication(ctx context.Context, app *domain.LoanApplication) (*domain.LoanApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *app
	if created.ID == "" {
		created.ID = newID()
	}
	now := s.now()
	if created.SubmittedAt.IsZero() {
		created.SubmittedAt = now
	}
	created.UpdatedAt = now
	s.applications[created.ID] = created
	return &created, nil
}

func (s *Store) GetApplication(ctx context.Context, appID string) (*domain.LoanApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.applications[appID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "application", ID: appID}
	}
	return &a, nil
}

func (s *Store) ListApplications(ctx context.Context) ([]domain.LoanApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]domain.LoanApplication, 0, len(s.applications))
	for _, a := range s.applications {
		apps = append(apps, a)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].SubmittedAt.Before(apps[j].SubmittedAt) })
	return apps, nil
}

func (s *Store) UpdateApplication(ctx context.Context, app *domain.LoanApplication) (*domain.LoanApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[app.ID]; !ok {
		return nil, &domain.ErrNotFound{Resource: "application", ID: app.ID}
	}

	updated := *app
	updated.UpdatedAt = s.now()
	s.applications[updated.ID] = updated
	return &updated, nil
}

func (s *Store) DeleteApplication(ctx context.Context, appID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[appID]; !ok {
		return &domain.ErrNotFound{Resource: "application", ID: appID}
	}
	delete(s.applications, appID)
	return nil
}

// UpdateApplicationStatus applies a compare-and-swap on the status field.
// When two reviewers race on the same transition, exactly one wins; the
// loser sees ErrConflict and rereads.
func (s *Store) UpdateApplicationStatus(ctx context.Context, appID string, from, to domain.ApplicationStatus) (*domain.LoanApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[appID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "application", ID: appID}
	}
	if a.Status != from {
		return nil, &domain.ErrConflict{
			Message: fmt.Sprintf("application status changed concurrently: expected %s, found %s", from, a.Status),
		}
	}

	a.Status = to
	a.UpdatedAt = s.now()
	s.applications[appID] = a
	return &a, nil
}
