package domain

// DashboardStats is the analyst dashboard aggregate: application counts by
// outcome, loan volume and payment volume.
type DashboardStats struct {
	Applications ApplicationCounts `json:"applications"`
	Loans        LoanTotals        `json:"loans"`
	Payments     PaymentTotals     `json:"payments"`
}

// ApplicationCounts breaks applications down by status.
type ApplicationCounts struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	UnderReview int `json:"underReview"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
}

// LoanTotals summarizes the loan book.
type LoanTotals struct {
	Total       int     `json:"total"`
	Active      int     `json:"active"`
	TotalAmount float64 `json:"totalAmount"`
}

// PaymentTotals summarizes posted payments.
type PaymentTotals struct {
	Total       int     `json:"total"`
	TotalAmount float64 `json:"totalAmount"`
}

// OpsSnapshot is a point-in-time view of the service's operational
// counters, cumulative since process start.
type OpsSnapshot struct {
	TotalRequests int64   `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
	CacheHitRate  float64 `json:"cacheHitRate"`
	AuthzAllowed  int64   `json:"authzAllowed"`
	AuthzDenied   int64   `json:"authzDenied"`
	WebhookErrors int64   `json:"webhookErrors"`
	Period        string  `json:"period"`
}

// ApplicationStats groups applications along three axes for charting.
// Month keys use the YYYY-MM form of the submission date.
type ApplicationStats struct {
	ByStatus   map[string]int `json:"byStatus"`
	ByLoanType map[string]int `json:"byLoanType"`
	ByMonth    map[string]int `json:"byMonth"`
}
