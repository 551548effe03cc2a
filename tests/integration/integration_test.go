package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/handler"
	"github.com/rsinghal/loan-desk-api/internal/infra/cache"
	"github.com/rsinghal/loan-desk-api/internal/infra/client"
	"github.com/rsinghal/loan-desk-api/internal/infra/memstore"
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/infra/resilience"
	"github.com/rsinghal/loan-desk-api/internal/port"
	"github.com/rsinghal/loan-desk-api/internal/service"
)

const seedPassword = "password123"

func buildRouter(t *testing.T, notifier port.StatusNotifier) http.Handler {
	t.Helper()

	store := memstore.New()
	if err := store.Seed(context.Background(), seedPassword); err != nil {
		t.Fatalf("seed: %v", err)
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	authSvc := service.NewAuthService(store, "integration-secret", 15*time.Minute, 24*time.Hour, logger)
	svcs := handler.Services{
		Auth:         authSvc,
		Users:        service.NewUserService(store, metrics, logger),
		Applications: service.NewApplicationService(store, notifier, metrics, logger),
		Loans:        service.NewLoanService(store, store, metrics, logger),
		Payments:     service.NewPaymentService(store, store, metrics, logger),
		Products:     service.NewProductService(store, cache.New[domain.QuoteResponse](time.Minute), metrics, logger),
		Analytics:    service.NewAnalyticsService(store, store, store, metrics, logger),
	}

	return handler.NewRouter(svcs, metrics, logger)
}

func call(t *testing.T, router http.Handler, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code
}

// TestIntegration_LoanLifecycle walks the whole path: a borrower applies,
// a lender approves and funds, payments retire the loan, and the analyst
// sees it all on the dashboard.
func TestIntegration_LoanLifecycle(t *testing.T) {
	// Webhook target capturing status-change deliveries.
	var mu sync.Mutex
	var events []port.StatusChangeEvent
	delivered := make(chan struct{}, 8)
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev port.StatusChangeEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		delivered <- struct{}{}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer webhook.Close()

	cb := resilience.NewCircuitBreaker("integration-webhook")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	notifier := client.NewWebhookNotifier(&http.Client{Timeout: 5 * time.Second}, webhook.URL, cb, cfg)

	router := buildRouter(t, notifier)

	// --- Login everyone ---
	var borrower, lender, analyst domain.LoginResponse
	if code := call(t, router, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Username: "borrower1", Password: seedPassword}, &borrower); code != http.StatusOK {
		t.Fatalf("borrower login: %d", code)
	}
	if code := call(t, router, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Username: "lender1", Password: seedPassword}, &lender); code != http.StatusOK {
		t.Fatalf("lender login: %d", code)
	}
	if code := call(t, router, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{Username: "analyst1", Password: seedPassword}, &analyst); code != http.StatusOK {
		t.Fatalf("analyst login: %d", code)
	}

	// --- Borrower checks a quote, then applies ---
	var quote domain.QuoteResponse
	if code := call(t, router, http.MethodPost, "/api/products/personal/quote", borrower.AccessToken, domain.QuoteRequest{Amount: 120000, TermMonths: 24}, &quote); code != http.StatusOK {
		t.Fatalf("quote: %d", code)
	}
	if quote.MonthlyPayment <= 0 {
		t.Fatalf("quote monthly payment not positive: %f", quote.MonthlyPayment)
	}

	var app domain.LoanApplication
	if code := call(t, router, http.MethodPost, "/api/applications", borrower.AccessToken, domain.CreateApplicationRequest{
		LoanType:        "personal",
		RequestedAmount: 120000,
		TermMonths:      24,
		Purpose:         "debt consolidation",
		MonthlyIncome:   85000,
	}, &app); code != http.StatusCreated {
		t.Fatalf("create application: %d", code)
	}

	// --- Lender moves it to review, then approves ---
	if code := call(t, router, http.MethodPatch, "/api/applications/"+app.ID+"/status", lender.AccessToken, domain.ChangeStatusRequest{Status: domain.StatusUnderReview}, &app); code != http.StatusOK {
		t.Fatalf("to under_review: %d", code)
	}
	if code := call(t, router, http.MethodPatch, "/api/applications/"+app.ID+"/status", lender.AccessToken, domain.ChangeStatusRequest{Status: domain.StatusApproved}, &app); code != http.StatusOK {
		t.Fatalf("approve: %d", code)
	}
	if app.Status != domain.StatusApproved {
		t.Fatalf("expected approved, got %q", app.Status)
	}

	// Both transitions are delivered to the webhook asynchronously.
	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for webhook delivery")
		}
	}
	mu.Lock()
	if len(events) != 2 {
		t.Fatalf("expected 2 webhook events, got %d", len(events))
	}
	if events[1].To != string(domain.StatusApproved) {
		t.Errorf("expected approval event, got %q", events[1].To)
	}
	mu.Unlock()

	// --- Lender funds the loan ---
	var loan domain.LoanRecord
	if code := call(t, router, http.MethodPost, "/api/loans", lender.AccessToken, domain.CreateLoanRequest{
		LoanName:   "personal-120k",
		LoanType:   "personal",
		BorrowerID: borrower.User.ID,
		Principal:  120000,
		AnnualRate: 12.5,
		TermMonths: 24,
	}, &loan); code != http.StatusCreated {
		t.Fatalf("create loan: %d", code)
	}
	if loan.MonthlyPayment <= 0 {
		t.Fatalf("loan monthly payment not positive: %f", loan.MonthlyPayment)
	}
	if loan.RemainingBalance != 120000 {
		t.Fatalf("expected balance 120000, got %f", loan.RemainingBalance)
	}

	// --- Borrower sees the loan and its schedule ---
	var schedule []json.RawMessage
	if code := call(t, router, http.MethodGet, "/api/loans/"+loan.ID+"/schedule", borrower.AccessToken, nil, &schedule); code != http.StatusOK {
		t.Fatalf("schedule: %d", code)
	}
	if len(schedule) != 24 {
		t.Fatalf("expected 24 schedule rows, got %d", len(schedule))
	}

	// --- Borrower pays a chunk, then the rest ---
	var payment domain.Payment
	if code := call(t, router, http.MethodPost, "/api/payments", borrower.AccessToken, domain.CreatePaymentRequest{
		LoanID: loan.ID,
		Amount: 20000,
	}, &payment); code != http.StatusCreated {
		t.Fatalf("first payment: %d", code)
	}

	if code := call(t, router, http.MethodGet, "/api/loans/"+loan.ID, borrower.AccessToken, nil, &loan); code != http.StatusOK {
		t.Fatalf("reload loan: %d", code)
	}
	if loan.RemainingBalance != 100000 {
		t.Fatalf("expected balance 100000, got %f", loan.RemainingBalance)
	}

	if code := call(t, router, http.MethodPost, "/api/payments", borrower.AccessToken, domain.CreatePaymentRequest{
		LoanID: loan.ID,
		Amount: 100000,
	}, &payment); code != http.StatusCreated {
		t.Fatalf("final payment: %d", code)
	}

	if code := call(t, router, http.MethodGet, "/api/loans/"+loan.ID, borrower.AccessToken, nil, &loan); code != http.StatusOK {
		t.Fatalf("reload paid loan: %d", code)
	}
	if loan.Status != domain.LoanPaid {
		t.Fatalf("expected paid loan, got %q", loan.Status)
	}
	if loan.RemainingBalance != 0 {
		t.Fatalf("expected zero balance, got %f", loan.RemainingBalance)
	}

	// Overpaying a settled loan is rejected.
	if code := call(t, router, http.MethodPost, "/api/payments", borrower.AccessToken, domain.CreatePaymentRequest{
		LoanID: loan.ID,
		Amount: 50,
	}, nil); code != http.StatusBadRequest {
		t.Fatalf("payment on paid loan: expected 400, got %d", code)
	}

	// --- Analyst dashboard reflects the activity ---
	var stats domain.DashboardStats
	if code := call(t, router, http.MethodGet, "/api/analytics/dashboard", analyst.AccessToken, nil, &stats); code != http.StatusOK {
		t.Fatalf("dashboard: %d", code)
	}
	if stats.Applications.Approved != 1 {
		t.Errorf("expected 1 approved application, got %d", stats.Applications.Approved)
	}
	if stats.Loans.Total != 1 {
		t.Errorf("expected 1 loan, got %d", stats.Loans.Total)
	}
	if stats.Payments.Total != 2 {
		t.Errorf("expected 2 payments, got %d", stats.Payments.Total)
	}
	if stats.Payments.TotalAmount != 120000 {
		t.Errorf("expected 120000 paid, got %f", stats.Payments.TotalAmount)
	}
}

// TestIntegration_RegisterAndRefresh covers signup and token rotation.
func TestIntegration_RegisterAndRefresh(t *testing.T) {
	router := buildRouter(t, client.NoopNotifier{})

	var reg domain.RegisterResponse
	if code := call(t, router, http.MethodPost, "/api/auth/register", "", domain.RegisterRequest{
		Username: "newborrower",
		Email:    "new@example.com",
		Password: "s3cretpass",
		Role:     domain.RoleBorrower,
	}, &reg); code != http.StatusCreated {
		t.Fatalf("register: %d", code)
	}
	if reg.AccessToken == "" || reg.RefreshToken == "" {
		t.Fatal("expected a token pair on registration")
	}

	var refreshed domain.LoginResponse
	if code := call(t, router, http.MethodPost, "/api/auth/refresh", "", domain.RefreshRequest{RefreshToken: reg.RefreshToken}, &refreshed); code != http.StatusOK {
		t.Fatalf("refresh: %d", code)
	}
	if refreshed.RefreshToken == reg.RefreshToken {
		t.Error("expected refresh token rotation")
	}

	// The old refresh token is dead after rotation.
	if code := call(t, router, http.MethodPost, "/api/auth/refresh", "", domain.RefreshRequest{RefreshToken: reg.RefreshToken}, nil); code != http.StatusUnauthorized {
		t.Fatalf("stale refresh: expected 401, got %d", code)
	}

	// Logout invalidates the current refresh token.
	if code := call(t, router, http.MethodPost, "/api/auth/logout", refreshed.AccessToken, domain.RefreshRequest{RefreshToken: refreshed.RefreshToken}, nil); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	if code := call(t, router, http.MethodPost, "/api/auth/refresh", "", domain.RefreshRequest{RefreshToken: refreshed.RefreshToken}, nil); code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: expected 401, got %d", code)
	}
}
