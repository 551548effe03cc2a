package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/amortize"
	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/port"
)

var productTracer = otel.Tracer("service/products")

// ProductService serves the loan product catalog and computes EMI quotes
// against it.
type ProductService struct {
	store      port.ProductStore
	quoteCache port.Cache[domain.QuoteResponse]
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewProductService creates a new product service.
func NewProductService(store port.ProductStore, quoteCache port.Cache[domain.QuoteResponse], metrics *observability.Metrics, logger *zap.Logger) *ProductService {
	return &ProductService{
		store:      store,
		quoteCache: quoteCache,
		metrics:    metrics,
		logger:     logger,
	}
}

// List returns the catalog. Every authenticated role may browse it.
func (s *ProductService) List(ctx context.Context) ([]domain.LoanProduct, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.List")
	defer span.End()

	return s.store.ListProducts(ctx)
}

// Get returns one product by loan type.
func (s *ProductService) Get(ctx context.Context, loanType string) (*domain.LoanProduct, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.Get")
	defer span.End()

	return s.store.GetProductByType(ctx, loanType)
}

// Update revises a catalog entry. Lenders and admins only; the handler
// enforces the role, the service validates the window.
func (s *ProductService) Update(ctx context.Context, p domain.Principal, loanType string, req *domain.UpdateProductRequest) (*domain.LoanProduct, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.Update")
	defer span.End()

	if p.Role != domain.RoleLender && p.Role != domain.RoleAdmin {
		return nil, &domain.ErrForbidden{Reason: "only lenders may revise the catalog"}
	}

	product, err := s.store.GetProductByType(ctx, loanType)
	if err != nil {
		return nil, err
	}

	if req.Rate != nil {
		if *req.Rate <= 0 || *req.Rate > amortize.MaxAnnualRate {
			return nil, &domain.ErrInvalidTerms{Field: "rate", Message: "rate out of range"}
		}
		product.Rate = *req.Rate
	}
	if req.MinAmount != nil {
		product.MinAmount = *req.MinAmount
	}
	if req.MaxAmount != nil {
		product.MaxAmount = *req.MaxAmount
	}
	if req.MinTenure != nil {
		product.MinTenure = *req.MinTenure
	}
	if req.MaxTenure != nil {
		product.MaxTenure = *req.MaxTenure
	}
	if product.MinAmount > product.MaxAmount {
		return nil, &domain.ErrValidation{Field: "minAmount", Message: "minimum exceeds maximum"}
	}
	if product.MinTenure > product.MaxTenure {
		return nil, &domain.ErrValidation{Field: "minTenure", Message: "minimum exceeds maximum"}
	}
	product.LenderID = p.ID

	updated, err := s.store.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated",
		zap.String("loan_type", updated.Type),
		zap.Float64("rate", updated.Rate),
		zap.String("by", p.ID),
	)
	return updated, nil
}

// Quote computes the EMI for an amount and tenure against a product.
// The amount and tenure must fall inside the product's window. Identical
// quotes are served from cache until the catalog entry changes rates.
func (s *ProductService) Quote(ctx context.Context, loanType string, req *domain.QuoteRequest) (*domain.QuoteResponse, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.Quote")
	defer span.End()
	span.SetAttributes(attribute.String("loan.type", loanType))

	product, err := s.store.GetProductByType(ctx, loanType)
	if err != nil {
		return nil, err
	}

	rate := req.Rate
	if rate == 0 {
		rate = product.Rate
	}

	if req.Amount < product.MinAmount || req.Amount > product.MaxAmount {
		return nil, &domain.ErrInvalidTerms{
			Field:   "amount",
			Message: fmt.Sprintf("must be between %.0f and %.0f for %s loans", product.MinAmount, product.MaxAmount, product.Type),
		}
	}
	if req.TermMonths < product.MinTenure || req.TermMonths > product.MaxTenure {
		return nil, &domain.ErrInvalidTerms{
			Field:   "termMonths",
			Message: fmt.Sprintf("must be between %d and %d for %s loans", product.MinTenure, product.MaxTenure, product.Type),
		}
	}

	cacheKey := fmt.Sprintf("%s:%.2f:%.4f:%d", product.Type, req.Amount, rate, req.TermMonths)
	if cached, ok := s.quoteCache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("quotes")
		return &cached, nil
	}
	s.metrics.IncrCacheMiss("quotes")

	result, err := amortize.Compute(amortize.Terms{
		Principal:  req.Amount,
		AnnualRate: rate,
		TermMonths: req.TermMonths,
	})
	if err != nil {
		return nil, err
	}

	quote := domain.QuoteResponse{
		LoanType:       product.Type,
		Amount:         req.Amount,
		Rate:           rate,
		TermMonths:     req.TermMonths,
		MonthlyPayment: amortize.Round2(result.MonthlyPayment),
		TotalPayment:   amortize.Round2(result.TotalPayment),
		TotalInterest:  amortize.Round2(result.TotalInterest),
	}
	s.quoteCache.Set(cacheKey, quote)
	s.metrics.IncrQuote(product.Type)

	return &quote, nil
}
