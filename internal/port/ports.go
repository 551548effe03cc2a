// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import "context"

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// StatusNotifier delivers application status-change events to an external
// endpoint. Implementations must not block a request on delivery failures;
// callers treat notification as best-effort.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, event StatusChangeEvent) error
}

// StatusChangeEvent is the payload posted when an application moves
// between statuses.
type StatusChangeEvent struct {
	ApplicationID string `json:"applicationId"`
	BorrowerID    string `json:"borrowerId"`
	From          string `json:"from"`
	To            string `json:"to"`
	ChangedBy     string `json:"changedBy"`
	ChangedAt     string `json:"changedAt"`
}
