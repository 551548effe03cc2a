package amortize

import "time"

// ScheduledPayment is one month of an amortization schedule.
type ScheduledPayment struct {
	Month     int       `json:"month"`
	DueDate   time.Time `json:"dueDate"`
	Payment   float64   `json:"payment"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
	Remaining float64   `json:"remainingBalance"`
}

// Schedule generates the month-by-month breakdown for the given terms,
// starting at startDate. The final payment absorbs the rounding drift so
// the last remaining balance is exactly zero.
func Schedule(t Terms, startDate time.Time) ([]ScheduledPayment, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	payment := monthlyPayment(t)
	remaining := t.Principal
	schedule := make([]ScheduledPayment, 0, t.TermMonths)

	for month := 1; month <= t.TermMonths; month++ {
		interest := MonthlyInterest(remaining, t.AnnualRate)
		principal := payment - interest
		due := payment

		if month == t.TermMonths || principal >= remaining {
			// Last payment clears whatever is left.
			principal = remaining
			due = principal + interest
			remaining = 0
		} else {
			remaining -= principal
		}

		schedule = append(schedule, ScheduledPayment{
			Month:     month,
			DueDate:   startDate.AddDate(0, month, 0),
			Payment:   due,
			Principal: principal,
			Interest:  interest,
			Remaining: remaining,
		})

		if remaining == 0 {
			break
		}
	}

	return schedule, nil
}
