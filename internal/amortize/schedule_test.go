package amortize_test

import (
	"math"
	"testing"
	"time"

	"github.com/rsinghal/loan-desk-api/internal/amortize"
)

func TestSchedule_PrincipalSumsToLoanAmount(t *testing.T) {
	terms := amortize.Terms{Principal: 10000, AnnualRate: 6.8, TermMonths: 36}
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	schedule, err := amortize.Schedule(terms, start)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(schedule) != 36 {
		t.Fatalf("expected 36 entries, got %d", len(schedule))
	}

	totalPrincipal := 0.0
	for _, p := range schedule {
		totalPrincipal += p.Principal
		if p.Interest < 0 || p.Principal < 0 {
			t.Errorf("month %d: negative component %+v", p.Month, p)
		}
	}
	if math.Abs(totalPrincipal-terms.Principal) > 0.01 {
		t.Errorf("principal portions sum to %v, want %v", totalPrincipal, terms.Principal)
	}

	last := schedule[len(schedule)-1]
	if last.Remaining != 0 {
		t.Errorf("final remaining balance must be zero, got %v", last.Remaining)
	}
}

func TestSchedule_BalanceStrictlyDecreases(t *testing.T) {
	schedule, err := amortize.Schedule(amortize.Terms{Principal: 25000, AnnualRate: 4.5, TermMonths: 60}, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	prev := 25000.0
	for _, p := range schedule {
		if p.Remaining >= prev {
			t.Errorf("month %d: balance did not decrease (%v -> %v)", p.Month, prev, p.Remaining)
		}
		prev = p.Remaining
	}
}

func TestSchedule_ZeroRate(t *testing.T) {
	schedule, err := amortize.Schedule(amortize.Terms{Principal: 1200, AnnualRate: 0, TermMonths: 12}, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, p := range schedule {
		if p.Interest != 0 {
			t.Errorf("month %d: expected zero interest, got %v", p.Month, p.Interest)
		}
		if math.Abs(p.Principal-100) > 1e-9 {
			t.Errorf("month %d: expected principal 100, got %v", p.Month, p.Principal)
		}
	}
}

func TestSchedule_DueDatesAdvanceMonthly(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	schedule, err := amortize.Schedule(amortize.Terms{Principal: 1000, AnnualRate: 5, TermMonths: 3}, start)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i, p := range schedule {
		want := start.AddDate(0, i+1, 0)
		if !p.DueDate.Equal(want) {
			t.Errorf("month %d: expected due date %v, got %v", p.Month, want, p.DueDate)
		}
	}
}

func TestSchedule_InvalidTerms(t *testing.T) {
	if _, err := amortize.Schedule(amortize.Terms{Principal: 1000, AnnualRate: 5, TermMonths: 0}, time.Now()); err == nil {
		t.Fatal("expected error for zero-month term")
	}
}
