package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/handler"
	"github.com/rsinghal/loan-desk-api/internal/infra/cache"
	"github.com/rsinghal/loan-desk-api/internal/infra/client"
	"github.com/rsinghal/loan-desk-api/internal/infra/memstore"
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memstore.New()
	if err := store.Seed(context.Background(), "password123"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	authSvc := service.NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, logger)
	svcs := handler.Services{
		Auth:         authSvc,
		Users:        service.NewUserService(store, metrics, logger),
		Applications: service.NewApplicationService(store, client.NoopNotifier{}, metrics, logger),
		Loans:        service.NewLoanService(store, store, metrics, logger),
		Payments:     service.NewPaymentService(store, store, metrics, logger),
		Products:     service.NewProductService(store, cache.New[domain.QuoteResponse](time.Minute), metrics, logger),
		Analytics:    service.NewAnalyticsService(store, store, store, metrics, logger),
	}

	return handler.NewRouter(svcs, metrics, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, username, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{
		Username: username,
		Password: password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}

	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/applications"},
		{http.MethodGet, "/api/loans"},
		{http.MethodGet, "/api/payments"},
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/analytics/dashboard"},
	}

	for _, route := range routes {
		rec := doJSON(t, router, route.method, route.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/loans", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestLoginAndMe(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "borrower1", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var user domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.Username != "borrower1" {
		t.Errorf("expected borrower1, got %q", user.Username)
	}
	if user.Role != domain.RoleBorrower {
		t.Errorf("expected borrower role, got %q", user.Role)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", domain.LoginRequest{
		Username: "borrower1",
		Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", domain.RegisterRequest{
		Username: "newuser",
		Email:    "not-an-email",
		Password: "password123",
		Role:     domain.RoleBorrower,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBorrowerCannotListUsers(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "borrower1", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminListsUsers(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "admin", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/users", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var users []domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 4 {
		t.Errorf("expected 4 seeded users, got %d", len(users))
	}
}

func TestApplicationNotFound(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "admin", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/applications/missing", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestApplicationStatusFlow(t *testing.T) {
	router := newTestRouter(t)
	borrowerToken := login(t, router, "borrower1", "password123")
	lenderToken := login(t, router, "lender1", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/applications", borrowerToken, domain.CreateApplicationRequest{
		LoanType:        "personal",
		RequestedAmount: 100000,
		TermMonths:      36,
		Purpose:         "home renovation",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create application: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var app domain.LoanApplication
	if err := json.Unmarshal(rec.Body.Bytes(), &app); err != nil {
		t.Fatalf("decode application: %v", err)
	}
	if app.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %q", app.Status)
	}

	// Borrowers cannot review their own applications.
	rec = doJSON(t, router, http.MethodPatch, "/api/applications/"+app.ID+"/status", borrowerToken, domain.ChangeStatusRequest{
		Status: domain.StatusApproved,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("borrower status change: expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/applications/"+app.ID+"/status", lenderToken, domain.ChangeStatusRequest{
		Status: domain.StatusApproved,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("lender status change: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Approved is terminal.
	rec = doJSON(t, router, http.MethodPatch, "/api/applications/"+app.ID+"/status", lenderToken, domain.ChangeStatusRequest{
		Status: domain.StatusRejected,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("terminal transition: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestQuoteEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "borrower1", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/products/personal/quote", token, domain.QuoteRequest{
		Amount:     100000,
		TermMonths: 36,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var quote domain.QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &quote); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if quote.MonthlyPayment <= 0 {
		t.Errorf("expected positive monthly payment, got %f", quote.MonthlyPayment)
	}
}

func TestQuoteOutsideProductWindow(t *testing.T) {
	router := newTestRouter(t)
	token := login(t, router, "borrower1", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/products/personal/quote", token, domain.QuoteRequest{
		Amount:     1000, // below the personal product minimum
		TermMonths: 36,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestLoanUpdateRoute(t *testing.T) {
	router := newTestRouter(t)
	lenderToken := login(t, router, "lender1", "password123")
	borrowerToken := login(t, router, "borrower1", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/loans", lenderToken, domain.CreateLoanRequest{
		LoanName:   "starter loan",
		LoanType:   "personal",
		BorrowerID: "3",
		Principal:  100000,
		AnnualRate: 12.5,
		TermMonths: 24,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create loan: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var loan domain.LoanRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &loan); err != nil {
		t.Fatalf("decode loan: %v", err)
	}

	name := "renamed loan"
	rec = doJSON(t, router, http.MethodPut, "/api/loans/"+loan.ID, lenderToken, domain.UpdateLoanRequest{LoanName: &name})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The borrower participates and may settle the loan by hand.
	paid := domain.LoanPaid
	rec = doJSON(t, router, http.MethodPut, "/api/loans/"+loan.ID, borrowerToken, domain.UpdateLoanRequest{Status: &paid})
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loan); err != nil {
		t.Fatalf("decode updated loan: %v", err)
	}
	if loan.Status != domain.LoanPaid || loan.RemainingBalance != 0 {
		t.Errorf("loan = %s / balance %v, want paid / 0", loan.Status, loan.RemainingBalance)
	}

	// Non-participants get a 403 regardless of role.
	analystToken := login(t, router, "analyst1", "password123")
	rec = doJSON(t, router, http.MethodPut, "/api/loans/"+loan.ID, analystToken, domain.UpdateLoanRequest{LoanName: &name})
	if rec.Code != http.StatusForbidden {
		t.Errorf("analyst update: expected 403, got %d", rec.Code)
	}
}

func TestOpsCountersReflectTraffic(t *testing.T) {
	router := newTestRouter(t)
	borrowerToken := login(t, router, "borrower1", "password123")
	analystToken := login(t, router, "analyst1", "password123")

	// One allowed consultation and one denied one.
	if rec := doJSON(t, router, http.MethodGet, "/api/users/3", borrowerToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("self read: expected 200, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/users/1", borrowerToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign read: expected 403, got %d", rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/analytics/ops", analystToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ops: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var snap domain.OpsSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.TotalRequests == 0 {
		t.Error("request counter never moved")
	}
	if snap.AuthzAllowed == 0 {
		t.Error("allow counter never moved")
	}
	if snap.AuthzDenied == 0 {
		t.Error("deny counter never moved")
	}
	if snap.ErrorRate <= 0 {
		t.Errorf("error rate = %v after a 403, want > 0", snap.ErrorRate)
	}
}

func TestAnalyticsRequiresAnalyst(t *testing.T) {
	router := newTestRouter(t)
	borrowerToken := login(t, router, "borrower1", "password123")
	analystToken := login(t, router, "analyst1", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/analytics/dashboard", borrowerToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("borrower dashboard: expected 403, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/analytics/dashboard", analystToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("analyst dashboard: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
