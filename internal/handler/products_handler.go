package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/service"
)

func listProductsHandler(prodSvc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/products")
		defer span.End()

		products, err := prodSvc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, products)
	}
}

func getProductHandler(prodSvc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/products/{loanType}")
		defer span.End()

		product, err := prodSvc.Get(ctx, chi.URLParam(r, "loanType"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, product)
	}
}

func updateProductHandler(prodSvc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/products/{loanType}")
		defer span.End()

		var req domain.UpdateProductRequest
		if !decodeBody(w, r, &req) {
			return
		}

		product, err := prodSvc.Update(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "loanType"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, product)
	}
}

func quoteHandler(prodSvc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/products/{loanType}/quote")
		defer span.End()

		var req domain.QuoteRequest
		if !decodeBody(w, r, &req) {
			return
		}

		quote, err := prodSvc.Quote(ctx, chi.URLParam(r, "loanType"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, quote)
	}
}
