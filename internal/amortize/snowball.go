package amortize

import (
	"sort"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

// PlanEntry is one loan annotated with its payoff priority (1-based).
type PlanEntry struct {
	Loan     domain.LoanRecord `json:"loan"`
	Priority int               `json:"priority"`
}

// PayoffPlan orders a set of active loans for accelerated payoff.
// ExtraPayment is the sum of all monthly payments minus the first loan's
// own payment: the amount freed up for the priority-1 loan once minimums
// are covered everywhere else.
type PayoffPlan struct {
	Entries      []PlanEntry `json:"entries"`
	ExtraPayment float64     `json:"extraPayment"`
}

// PlanSnowball orders loans ascending by remaining balance (the snowball
// method: smallest debt first). The sort is stable, so loans with equal
// balances keep their input order. An empty input yields an empty plan.
func PlanSnowball(loans []domain.LoanRecord) PayoffPlan {
	return plan(loans, func(a, b domain.LoanRecord) bool {
		return a.RemainingBalance < b.RemainingBalance
	})
}

// PlanAvalanche orders loans descending by annual rate (highest-cost debt
// first), the interest-minimizing alternative to the snowball.
func PlanAvalanche(loans []domain.LoanRecord) PayoffPlan {
	return plan(loans, func(a, b domain.LoanRecord) bool {
		return a.AnnualRate > b.AnnualRate
	})
}

func plan(loans []domain.LoanRecord, less func(a, b domain.LoanRecord) bool) PayoffPlan {
	if len(loans) == 0 {
		return PayoffPlan{Entries: []PlanEntry{}}
	}

	ordered := make([]domain.LoanRecord, len(loans))
	copy(ordered, loans)
	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j])
	})

	entries := make([]PlanEntry, len(ordered))
	total := 0.0
	for i, loan := range ordered {
		entries[i] = PlanEntry{Loan: loan, Priority: i + 1}
		total += loan.MonthlyPayment
	}

	return PayoffPlan{
		Entries:      entries,
		ExtraPayment: total - ordered[0].MonthlyPayment,
	}
}
