package service

import (
	"github.com/rsinghal/loan-desk-api/internal/infra/observability"
	"github.com/rsinghal/loan-desk-api/internal/policy"
)

// decide records the authorization outcome before converting the decision
// into an error. Every policy consultation in this package goes through
// it so the allow/deny counters reflect real traffic.
func decide(m *observability.Metrics, d policy.Decision) error {
	m.IncrAuthzDecision(d.Allowed)
	return d.Err()
}
