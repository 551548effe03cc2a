package memstore

import (
	"context"
	"sort"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

func (s *Store) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *payment
	if created.ID == "" {
		created.ID = newID()
	}
	now := s.now()
	if created.PaidAt.IsZero() {
		created.PaidAt = now
	}
	created.CreatedAt = now
	s.payments[created.ID] = created
	return &created, nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "payment", ID: paymentID}
	}
	return &p, nil
}

func (s *Store) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := make([]domain.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		payments = append(payments, p)
	}
	sortPayments(payments)
	return payments, nil
}

func (s *Store) ListPaymentsByLoan(ctx context.Context, loanID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := make([]domain.Payment, 0)
	for _, p := range s.payments {
		if p.LoanID == loanID {
			payments = append(payments, p)
		}
	}
	sortPayments(payments)
	return payments, nil
}

func sortPayments(payments []domain.Payment) {
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaidAt.Before(payments[j].PaidAt) })
}
