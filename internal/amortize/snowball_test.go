package amortize_test

import (
	"testing"

	"github.com/rsinghal/loan-desk-api/internal/amortize"
	"github.com/rsinghal/loan-desk-api/internal/domain"
)

func activeLoan(id string, balance, payment, rate float64) domain.LoanRecord {
	return domain.LoanRecord{
		ID:               id,
		Status:           domain.LoanActive,
		RemainingBalance: balance,
		MonthlyPayment:   payment,
		AnnualRate:       rate,
	}
}

func TestPlanSnowball_Empty(t *testing.T) {
	plan := amortize.PlanSnowball(nil)

	if len(plan.Entries) != 0 {
		t.Errorf("expected empty plan, got %d entries", len(plan.Entries))
	}
	if plan.ExtraPayment != 0 {
		t.Errorf("expected zero extra payment, got %v", plan.ExtraPayment)
	}
}

func TestPlanSnowball_OrdersByBalanceAscending(t *testing.T) {
	loans := []domain.LoanRecord{
		activeLoan("a", 5000, 150, 9.5),
		activeLoan("b", 2000, 100, 12.5),
		activeLoan("c", 8000, 250, 8.5),
	}

	plan := amortize.PlanSnowball(loans)

	wantOrder := []string{"b", "a", "c"}
	for i, want := range wantOrder {
		if plan.Entries[i].Loan.ID != want {
			t.Errorf("position %d: expected loan %s, got %s", i, want, plan.Entries[i].Loan.ID)
		}
		if plan.Entries[i].Priority != i+1 {
			t.Errorf("position %d: expected priority %d, got %d", i, i+1, plan.Entries[i].Priority)
		}
	}

	// Extra payment: total monthly payments minus the priority-1 loan's own.
	if got, want := plan.ExtraPayment, 150.0+250.0; got != want {
		t.Errorf("expected extra payment %v, got %v", want, got)
	}
}

func TestPlanSnowball_StableOnTies(t *testing.T) {
	loans := []domain.LoanRecord{
		activeLoan("first", 3000, 90, 10),
		activeLoan("second", 3000, 110, 11),
	}

	plan := amortize.PlanSnowball(loans)

	if plan.Entries[0].Loan.ID != "first" || plan.Entries[1].Loan.ID != "second" {
		t.Errorf("tied balances must keep input order, got %s then %s",
			plan.Entries[0].Loan.ID, plan.Entries[1].Loan.ID)
	}
}

func TestPlanSnowball_DoesNotMutateInput(t *testing.T) {
	loans := []domain.LoanRecord{
		activeLoan("a", 5000, 150, 9.5),
		activeLoan("b", 2000, 100, 12.5),
	}

	amortize.PlanSnowball(loans)

	if loans[0].ID != "a" || loans[1].ID != "b" {
		t.Error("input slice was reordered")
	}
}

func TestPlanAvalanche_OrdersByRateDescending(t *testing.T) {
	loans := []domain.LoanRecord{
		activeLoan("a", 5000, 150, 9.5),
		activeLoan("b", 2000, 100, 12.5),
		activeLoan("c", 8000, 250, 8.5),
	}

	plan := amortize.PlanAvalanche(loans)

	wantOrder := []string{"b", "a", "c"}
	for i, want := range wantOrder {
		if plan.Entries[i].Loan.ID != want {
			t.Errorf("position %d: expected loan %s, got %s", i, want, plan.Entries[i].Loan.ID)
		}
	}
}

func TestPlanSnowball_SingleLoan(t *testing.T) {
	plan := amortize.PlanSnowball([]domain.LoanRecord{activeLoan("only", 4000, 120, 10)})

	if len(plan.Entries) != 1 || plan.Entries[0].Priority != 1 {
		t.Fatalf("expected single priority-1 entry, got %+v", plan.Entries)
	}
	if plan.ExtraPayment != 0 {
		t.Errorf("single loan has no extra payment, got %v", plan.ExtraPayment)
	}
}
