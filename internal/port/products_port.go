package port

import (
	"context"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

// ProductStore handles loan product catalog data operations.
type ProductStore interface {
	CreateProduct(ctx context.Context, product *domain.LoanProduct) (*domain.LoanProduct, error)
	GetProduct(ctx context.Context, productID string) (*domain.LoanProduct, error)
	GetProductByType(ctx context.Context, loanType string) (*domain.LoanProduct, error)
	ListProducts(ctx context.Context) ([]domain.LoanProduct, error)
	UpdateProduct(ctx context.Context, product *domain.LoanProduct) (*domain.LoanProduct, error)
	DeleteProduct(ctx context.Context, productID string) error
}
