package domain

// Role is the closed set of principal roles. Roles are non-hierarchical:
// no role implies another's permissions except the admin override, which
// is expressed in the policy table, not here.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleBankManager      Role = "bank_manager"
	RoleLoanOfficer      Role = "loan_officer"
	RoleLender           Role = "lender"
	RoleBorrower         Role = "borrower"
	RoleFinancialAnalyst Role = "financial_analyst"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBankManager, RoleLoanOfficer, RoleLender, RoleBorrower, RoleFinancialAnalyst:
		return true
	}
	return false
}

// Action is the closed set of operations a principal can request.
type Action string

const (
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionListAll      Action = "list_all"
	ActionChangeStatus Action = "change_status"
)

// ResourceKind identifies the kind of record an action targets.
type ResourceKind string

const (
	ResourceUser        ResourceKind = "user"
	ResourceApplication ResourceKind = "application"
	ResourceLoan        ResourceKind = "loan"
	ResourcePayment     ResourceKind = "payment"
	ResourceAnalytics   ResourceKind = "analytics"
)

// Principal is the authenticated actor a policy decision is made for.
// Decoded from the bearer token by the auth middleware.
type Principal struct {
	ID   string
	Role Role
}

// ApplicationStatus is the loan-application state machine's state set.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

// Valid reports whether s names a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// LoanStatus is the lifecycle of a funded loan.
type LoanStatus string

const (
	LoanActive LoanStatus = "active"
	LoanPaid   LoanStatus = "paid"
)
