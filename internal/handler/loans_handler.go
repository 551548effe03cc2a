package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/service"
)

func createLoanHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/loans")
		defer span.End()

		var req domain.CreateLoanRequest
		if !decodeBody(w, r, &req) {
			return
		}

		loan, err := loanSvc.Create(ctx, PrincipalFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, loan)
	}
}

func listLoansHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/loans")
		defer span.End()

		loans, err := loanSvc.List(ctx, PrincipalFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, loans)
	}
}

func getLoanHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/loans/{loanId}")
		defer span.End()

		loan, err := loanSvc.Get(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "loanId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, loan)
	}
}

func updateLoanHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/loans/{loanId}")
		defer span.End()

		var req domain.UpdateLoanRequest
		if !decodeBody(w, r, &req) {
			return
		}

		loan, err := loanSvc.Update(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "loanId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, loan)
	}
}

func deleteLoanHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/loans/{loanId}")
		defer span.End()

		if err := loanSvc.Delete(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "loanId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "loan deleted"})
	}
}

func loanScheduleHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/loans/{loanId}/schedule")
		defer span.End()

		schedule, err := loanSvc.Schedule(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "loanId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, schedule)
	}
}

func snowballHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/loans/strategy/snowball")
		defer span.End()

		plan, err := loanSvc.SnowballPlan(ctx, PrincipalFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, plan)
	}
}

func avalancheHandler(loanSvc *service.LoanService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/loans/strategy/avalanche")
		defer span.End()

		plan, err := loanSvc.AvalanchePlan(ctx, PrincipalFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, plan)
	}
}
