package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/service"
)

var tracer = otel.Tracer("handler")

// Services bundles the service layer for the router.
type Services struct {
	Auth         *service.AuthService
	Users        *service.UserService
	Applications *service.ApplicationService
	Loans        *service.LoanService
	Payments     *service.PaymentService
	Products     *service.ProductService
	Analytics    *service.AnalyticsService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {

		// Authentication (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
				r.Get("/me", authMeHandler(svcs.Users, logger))
			})
		})

		// Everything else requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Users
			r.Get("/users", listUsersHandler(svcs.Users, logger))
			r.Get("/users/{userId}", getUserHandler(svcs.Users, logger))
			r.Put("/users/{userId}", updateUserHandler(svcs.Users, logger))
			r.Delete("/users/{userId}", deleteUserHandler(svcs.Users, logger))

			// Loan applications
			r.Post("/applications", createApplicationHandler(svcs.Applications, logger))
			r.Get("/applications", listApplicationsHandler(svcs.Applications, logger))
			r.Get("/applications/{appId}", getApplicationHandler(svcs.Applications, logger))
			r.Put("/applications/{appId}", updateApplicationHandler(svcs.Applications, logger))
			r.Delete("/applications/{appId}", deleteApplicationHandler(svcs.Applications, logger))
			r.Patch("/applications/{appId}/status", changeStatusHandler(svcs.Applications, logger))

			// Loans
			r.Post("/loans", createLoanHandler(svcs.Loans, logger))
			r.Get("/loans", listLoansHandler(svcs.Loans, logger))
			r.Get("/loans/strategy/snowball", snowballHandler(svcs.Loans, logger))
			r.Get("/loans/strategy/avalanche", avalancheHandler(svcs.Loans, logger))
			r.Get("/loans/{loanId}", getLoanHandler(svcs.Loans, logger))
			r.Put("/loans/{loanId}", updateLoanHandler(svcs.Loans, logger))
			r.Delete("/loans/{loanId}", deleteLoanHandler(svcs.Loans, logger))
			r.Get("/loans/{loanId}/schedule", loanScheduleHandler(svcs.Loans, logger))
			r.Get("/loans/{loanId}/payments", loanPaymentsHandler(svcs.Payments, logger))

			// Payments
			r.Post("/payments", createPaymentHandler(svcs.Payments, logger))
			r.Get("/payments", listPaymentsHandler(svcs.Payments, logger))
			r.Get("/payments/{paymentId}", getPaymentHandler(svcs.Payments, logger))

			// Product catalog + quotes
			r.Get("/products", listProductsHandler(svcs.Products, logger))
			r.Get("/products/{loanType}", getProductHandler(svcs.Products, logger))
			r.Put("/products/{loanType}", updateProductHandler(svcs.Products, logger))
			r.Post("/products/{loanType}/quote", quoteHandler(svcs.Products, logger))

			// Analytics
			r.Get("/analytics/dashboard", dashboardHandler(svcs.Analytics, logger))
			r.Get("/analytics/applications", applicationStatsHandler(svcs.Analytics, logger))
			r.Get("/analytics/ops", opsHandler(svcs.Analytics, logger))
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
