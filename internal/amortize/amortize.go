// Package amortize is the loan math core: fixed-payment amortization,
// month-by-month schedules and debt payoff ordering. Everything here is a
// pure function of its inputs; callers own persistence and rounding for
// display (use Round2 only at the serialization boundary).
package amortize

import (
	"math"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

// Input ceilings. Values beyond these are almost certainly data-entry
// mistakes and would produce meaningless payments.
const (
	MaxPrincipal  = 1_000_000_000.0
	MaxAnnualRate = 1000.0
	MaxTermMonths = 600 // 50 years

	// BalanceTolerance is the residual below which a balance counts as paid.
	BalanceTolerance = 0.01
)

// Terms are the immutable inputs of an amortization computation.
type Terms struct {
	Principal  float64
	AnnualRate float64 // annual percentage, e.g. 4.5 means 4.5%
	TermMonths int
}

// Result is derived from Terms and never stored independently of them.
type Result struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
	TotalInterest  float64 `json:"totalInterest"`
}

// Validate checks the numeric constraints shared by all entry points.
func (t Terms) Validate() error {
	if t.Principal <= 0 {
		return &domain.ErrInvalidTerms{Field: "principal", Message: "must be greater than zero"}
	}
	if t.Principal > MaxPrincipal {
		return &domain.ErrInvalidTerms{Field: "principal", Message: "exceeds maximum supported amount"}
	}
	if t.AnnualRate < 0 {
		return &domain.ErrInvalidTerms{Field: "annualRatePercent", Message: "must not be negative"}
	}
	if t.AnnualRate > MaxAnnualRate {
		return &domain.ErrInvalidTerms{Field: "annualRatePercent", Message: "exceeds maximum supported rate"}
	}
	if t.TermMonths < 1 {
		return &domain.ErrInvalidTerms{Field: "termMonths", Message: "must be at least 1"}
	}
	if t.TermMonths > MaxTermMonths {
		return &domain.ErrInvalidTerms{Field: "termMonths", Message: "exceeds maximum supported term"}
	}
	return nil
}

// MonthlyPayment computes the fixed monthly payment for the given terms
// using the standard annuity formula. A zero rate degenerates to a
// straight-line principal/term split, exactly.
func MonthlyPayment(principal, annualRate float64, termMonths int) (float64, error) {
	t := Terms{Principal: principal, AnnualRate: annualRate, TermMonths: termMonths}
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return monthlyPayment(t), nil
}

// zeroRateEpsilon is the monthly rate below which 1+rate is 1.0 in
// float64 and the annuity denominator collapses to zero.
const zeroRateEpsilon = 1e-12

// monthlyPayment assumes validated terms.
func monthlyPayment(t Terms) float64 {
	monthlyRate := t.AnnualRate / 100 / 12
	if monthlyRate < zeroRateEpsilon {
		return t.Principal / float64(t.TermMonths)
	}
	power := math.Pow(1+monthlyRate, float64(t.TermMonths))
	return t.Principal * (monthlyRate * power) / (power - 1)
}

// Compute derives the full Result for the given terms.
// TotalPayment = MonthlyPayment * TermMonths; TotalInterest is the excess
// over principal and is never negative for valid input.
func Compute(t Terms) (Result, error) {
	if err := t.Validate(); err != nil {
		return Result{}, err
	}
	payment := monthlyPayment(t)
	total := payment * float64(t.TermMonths)
	return Result{
		MonthlyPayment: payment,
		TotalPayment:   total,
		TotalInterest:  total - t.Principal,
	}, nil
}

// MonthlyInterest returns the interest portion of one payment on the
// given remaining balance.
func MonthlyInterest(remaining, annualRate float64) float64 {
	return remaining * annualRate / 100 / 12
}

// Round2 rounds a money amount to 2 decimal places for serialization.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
