// Package client holds outbound HTTP adapters.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rsinghal/loan-desk-api/internal/domain"
	"github.com/rsinghal/loan-desk-api/internal/infra/resilience"
	"github.com/rsinghal/loan-desk-api/internal/port"
)

var tracer = otel.Tracer("client")

// WebhookNotifier posts application status-change events to a configured
// endpoint. Deliveries are retried with backoff and guarded by a circuit
// breaker so a dead endpoint cannot stall review operations.
type WebhookNotifier struct {
	httpClient *http.Client
	url        string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
}

// NewWebhookNotifier creates the notifier. Deliveries run on caller
// goroutines; the bulkhead caps how many are in flight at once.
func NewWebhookNotifier(httpClient *http.Client, url string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: httpClient,
		url:        url,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
	}
}

// NotifyStatusChange delivers one event. A 2xx response counts as
// delivered; anything else is retried up to the configured attempts.
func (n *WebhookNotifier) NotifyStatusChange(ctx context.Context, event port.StatusChangeEvent) error {
	ctx, span := tracer.Start(ctx, "WebhookNotifier.NotifyStatusChange")
	defer span.End()
	span.SetAttributes(
		attribute.String("application.id", event.ApplicationID),
		attribute.String("status.to", event.To),
	)

	if err := n.bulkhead.Acquire(ctx); err != nil {
		return &domain.ErrExternalService{Service: "webhook", Err: err}
	}
	defer n.bulkhead.Release()

	_, err := n.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, n.cfg, func() error {
			body, err := json.Marshal(event)
			if err != nil {
				return err
			}

			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := n.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("webhook returned status %d", resp.StatusCode)
			}
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return nil, nil
	})

	if err != nil {
		return &domain.ErrExternalService{Service: "webhook", Err: err}
	}
	return nil
}

// NoopNotifier discards events. Used when no webhook URL is configured.
type NoopNotifier struct{}

// NotifyStatusChange drops the event.
func (NoopNotifier) NotifyStatusChange(ctx context.Context, event port.StatusChangeEvent) error {
	return nil
}
