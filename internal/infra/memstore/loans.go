package memstore

import (
	"context"
	"sort"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

func (s *Store) CreateLoan(ctx context.Context, loan *domain.LoanRecord) (*domain.LoanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *loan
	if created.ID == "" {
		created.ID = newID()
	}
	now := s.now()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	s.loans[created.ID] = created
	return &created, nil
}

func (s *Store) GetLoan(ctx context.Context, loanID string) (*domain.LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.loans[loanID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "loan", ID: loanID}
	}
	return &l, nil
}

func (s *Store) ListLoans(ctx context.Context) ([]domain.LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loans := make([]domain.LoanRecord, 0, len(s.loans))
	for _, l := range s.loans {
		loans = append(loans, l)
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].CreatedAt.Before(loans[j].CreatedAt) })
	return loans, nil
}

func (s *Store) UpdateLoan(ctx context.Context, loan *domain.LoanRecord) (*domain.LoanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loans[loan.ID]; !ok {
		return nil, &domain.ErrNotFound{Resource: "loan", ID: loan.ID}
	}

	updated := *loan
	updated.UpdatedAt = s.now()
	s.loans[updated.ID] = updated
	return &updated, nil
}

func (s *Store) DeleteLoan(ctx context.Context, loanID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loans[loanID]; !ok {
		return &domain.ErrNotFound{Resource: "loan", ID: loanID}
	}
	delete(s.loans, loanID)
	return nil
}
