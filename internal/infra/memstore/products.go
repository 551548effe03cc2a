package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

func (s *Store) CreateProduct(ctx context.Context, product *domain.LoanProduct) (*domain.LoanProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if strings.EqualFold(existing.Type, product.Type) {
			return nil, &domain.ErrConflict{Message: "product type already exists"}
		}
	}

	created := *product
	if created.ID == "" {
		created.ID = newID()
	}
	created.UpdatedAt = s.now()
	s.products[created.ID] = created
	return &created, nil
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*domain.LoanProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "product", ID: productID}
	}
	return &p, nil
}

func (s *Store) GetProductByType(ctx context.Context, loanType string) (*domain.LoanProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if strings.EqualFold(p.Type, loanType) {
			found := p
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "product", ID: loanType}
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.LoanProduct, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Type < products[j].Type })
	return products, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product *domain.LoanProduct) (*domain.LoanProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return nil, &domain.ErrNotFound{Resource: "product", ID: product.ID}
	}

	updated := *product
	updated.UpdatedAt = s.now()
	s.products[updated.ID] = updated
	return &updated, nil
}

func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return &domain.ErrNotFound{Resource: "product", ID: productID}
	}
	delete(s.products, productID)
	return nil
}
