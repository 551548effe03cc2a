package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/service"
)

func createApplicationHandler(appSvc *service.ApplicationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/applications")
		defer span.End()

		var req domain.CreateApplicationRequest
		if !decodeBody(w, r, &req) {
			return
		}

		app, err := appSvc.Create(ctx, PrincipalFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, app)
	}
}

func listApplicationsHandler(appSvc *service.ApplicationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/applications")
		defer span.End()

		apps, err := appSvc.List(ctx, PrincipalFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, apps)
	}
}

func getApplicationHandler(appSvc *service.ApplicationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/applications/{appId}")
		defer span.End()

		app, err := appSvc.Get(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "appId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, app)
	}
}

func updateApplicationHandler(appSvc *service.ApplicationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/applications/{appId}")
		defer span.End()

		var req domain.UpdateApplicationRequest
		if !decodeBody(w, r, &req) {
			return
		}

		app, err := appSvc.Update(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "appId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, app)
	}
}

func deleteApplicationHandler(appSvc *service.ApplicationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /api/applications/{appId}")
		defer span.End()

		if err := appSvc.Delete(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "appId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "application deleted"})
	}
}

func changeStatusHandler(appSvc *service.ApplicationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /api/applications/{appId}/status")
		defer span.End()

		var req domain.ChangeStatusRequest
		if !decodeBody(w, r, &req) {
			return
		}

		app, err := appSvc.ChangeStatus(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "appId"), req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, app)
	}
}
