package memstore

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

// Seed loads the demo accounts and the default product catalog. Intended
// for local development; production deployments start empty and create
// accounts through the API.
func (s *Store) Seed(ctx context.Context, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := []domain.User{
		{ID: "1", Username: "admin", Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: "2", Username: "lender1", Email: "lender@example.com", Role: domain.RoleLender},
		{ID: "3", Username: "borrower1", Email: "borrower@example.com", Role: domain.RoleBorrower},
		{ID: "4", Username: "analyst1", Email: "analyst@example.com", Role: domain.RoleFinancialAnalyst},
	}
	for _, u := range users {
		u.PasswordHash = string(hash)
		if _, err := s.CreateUser(ctx, &u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	for _, p := range DefaultProducts() {
		if _, err := s.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Type, err)
		}
	}
	return nil
}

// DefaultProducts is the stock rate table: one product per loan type with
// its default annual rate and amount/tenure window.
func DefaultProducts() []domain.LoanProduct {
	return []domain.LoanProduct{
		{Type: "personal", Name: "Personal Loan", Rate: 12.5, MinAmount: 50_000, MaxAmount: 500_000, MinTenure: 12, MaxTenure: 60},
		{Type: "home", Name: "Home Loan", Rate: 8.5, MinAmount: 500_000, MaxAmount: 10_000_000, MinTenure: 60, MaxTenure: 300},
		{Type: "car", Name: "Car Loan", Rate: 9.5, MinAmount: 100_000, MaxAmount: 5_000_000, MinTenure: 12, MaxTenure: 84},
		{Type: "education", Name: "Education Loan", Rate: 10.5, MinAmount: 50_000, MaxAmount: 2_000_000, MinTenure: 60, MaxTenure: 180},
	}
}
