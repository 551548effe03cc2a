package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/infra/client"
	"github.com/rsinghal/loan-desk-api/internal/infra/resilience"
	"github.com/rsinghal/loan-desk-api/internal/port"
)

func testConfig() resilience.Config {
	return resilience.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxConcurrency: 4,
	}
}

func TestWebhookNotifier_Delivers(t *testing.T) {
	var received port.StatusChangeEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode event: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := client.NewWebhookNotifier(srv.Client(), srv.URL, resilience.NewCircuitBreaker("webhook"), testConfig())

	event := port.StatusChangeEvent{
		ApplicationID: "app-1",
		From:          "pending",
		To:            "approved",
		ChangedBy:     "officer-1",
	}
	if err := n.NotifyStatusChange(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if received.ApplicationID != "app-1" || received.To != "approved" {
		t.Errorf("server received %+v", received)
	}
}

func TestWebhookNotifier_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := client.NewWebhookNotifier(srv.Client(), srv.URL, resilience.NewCircuitBreaker("webhook"), testConfig())

	if err := n.NotifyStatusChange(context.Background(), port.StatusChangeEvent{ApplicationID: "app-1"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestWebhookNotifier_FailureWrapsExternalServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := client.NewWebhookNotifier(srv.Client(), srv.URL, resilience.NewCircuitBreaker("webhook"), testConfig())

	err := n.NotifyStatusChange(context.Background(), port.StatusChangeEvent{ApplicationID: "app-1"})
	var extErr *domain.ErrExternalService
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
	if extErr.Service != "webhook" {
		t.Errorf("service = %s", extErr.Service)
	}
}
