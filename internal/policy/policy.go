// Package policy is the access-control core: a pure decision table over
// (principal, action, resource) plus the loan-application status state
// machine. Nothing here touches storage or performs I/O; the service layer
// consults it before every mutating or listing operation.
package policy

import "github.com/rsinghal/loan-desk-api/internal/domain"

// Reason is the machine-readable explanation attached to a deny decision.
type Reason string

const (
	ReasonUnauthorized Reason = "unauthorized"
	ReasonNotMutable   Reason = "not_mutable"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny is the negative decision with its reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err converts a deny decision into the matching typed error. Calling it
// on an allow decision returns nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == ReasonNotMutable {
		return &domain.ErrNotMutable{}
	}
	return &domain.ErrForbidden{Reason: string(d.Reason)}
}

// Resource describes the target of an action. OwnerID is the id of the
// principal that owns the record (the borrower of an application, either
// participant of a loan). Status is only meaningful for applications and
// drives the borrower-edit-while-pending rule.
type Resource struct {
	Kind    domain.ResourceKind
	OwnerID string
	Status  domain.ApplicationStatus
}

// reviewerRoles are the roles allowed to read others' applications and
// move them through the review pipeline.
func isReviewer(role domain.Role) bool {
	return role == domain.RoleLender || role == domain.RoleLoanOfficer || role == domain.RoleBankManager
}

// backOfficeRoles see loan records they do not participate in, both in
// lists (ScopeLoans leaves their view unfiltered) and on single reads.
func isBackOffice(role domain.Role) bool {
	return role == domain.RoleLoanOfficer || role == domain.RoleBankManager || role == domain.RoleFinancialAnalyst
}

// Authorize evaluates the decision table in order; the first matching rule
// wins. It is total: any combination not covered by a rule is denied, never
// an error or a panic.
func Authorize(p domain.Principal, action domain.Action, res Resource) Decision {
	// Rule 1: admin overrides everything.
	if p.Role == domain.RoleAdmin {
		return Allow()
	}

	switch res.Kind {
	case domain.ResourceUser:
		return authorizeUser(p, action, res)
	case domain.ResourceApplication:
		return authorizeApplication(p, action, res)
	case domain.ResourceLoan:
		return authorizeLoan(p, action, res)
	case domain.ResourcePayment:
		return authorizePayment(p, action, res)
	case domain.ResourceAnalytics:
		if p.Role == domain.RoleFinancialAnalyst {
			return Allow()
		}
	}

	return Deny(ReasonUnauthorized)
}

// Rule 2: accounts. Create, delete and listing are admin-only (handled by
// rule 1); reading and updating a profile is self-service.
func authorizeUser(p domain.Principal, action domain.Action, res Resource) Decision {
	switch action {
	case domain.ActionRead, domain.ActionUpdate:
		if p.ID != "" && p.ID == res.OwnerID {
			return Allow()
		}
	}
	return Deny(ReasonUnauthorized)
}

// Rule 3: applications. Borrowers create and own them; reviewers may read,
// edit and move them through statuses. An owning borrower loses update and
// delete once the application leaves pending.
func authorizeApplication(p domain.Principal, action domain.Action, res Resource) Decision {
	owner := p.ID != "" && p.ID == res.OwnerID

	switch action {
	case domain.ActionCreate:
		if p.Role == domain.RoleBorrower {
			return Allow()
		}
	case domain.ActionRead:
		if owner || isReviewer(p.Role) {
			return Allow()
		}
	case domain.ActionUpdate, domain.ActionDelete:
		if isReviewer(p.Role) {
			return Allow()
		}
		if owner {
			if err := BorrowerMayMutate(res.Status); err != nil {
				return Deny(ReasonNotMutable)
			}
			return Allow()
		}
	case domain.ActionChangeStatus:
		if isReviewer(p.Role) {
			return Allow()
		}
	}
	return Deny(ReasonUnauthorized)
}

// Rule 4: loans. Only lenders originate them; updates require
// participation (lender who created it or borrower it is attached to);
// deletion additionally requires the lender role. Reads extend beyond the
// participants to back-office roles — the same set ScopeLoans hands an
// unfiltered list — so fetching a loan out of a list never flips to a 403.
func authorizeLoan(p domain.Principal, action domain.Action, res Resource) Decision {
	owner := p.ID != "" && p.ID == res.OwnerID

	switch action {
	case domain.ActionCreate:
		if p.Role == domain.RoleLender {
			return Allow()
		}
	case domain.ActionRead:
		if owner || isBackOffice(p.Role) {
			return Allow()
		}
	case domain.ActionUpdate:
		if owner {
			return Allow()
		}
	case domain.ActionDelete:
		if owner && p.Role == domain.RoleLender {
			return Allow()
		}
	}
	return Deny(ReasonUnauthorized)
}

// Payments follow the ownership of the loan they post against: anyone who
// participates in the loan may record or read its payments.
func authorizePayment(p domain.Principal, action domain.Action, res Resource) Decision {
	owner := p.ID != "" && p.ID == res.OwnerID

	switch action {
	case domain.ActionCreate, domain.ActionRead:
		if owner {
			return Allow()
		}
	}
	return Deny(ReasonUnauthorized)
}

// ============================================================
// List scoping
// ============================================================

// ScopeApplications filters an application list to what the principal may
// see: borrowers their own, everyone else (reviewers, analysts, admin) all.
func ScopeApplications(p domain.Principal, apps []domain.LoanApplication) []domain.LoanApplication {
	if p.Role != domain.RoleBorrower {
		return apps
	}
	scoped := make([]domain.LoanApplication, 0, len(apps))
	for _, a := range apps {
		if a.BorrowerID == p.ID {
			scoped = append(scoped, a)
		}
	}
	return scoped
}

// ScopeLoans filters a loan list: borrowers see loans attached to them,
// lenders the loans they originated, everyone else all.
func ScopeLoans(p domain.Principal, loans []domain.LoanRecord) []domain.LoanRecord {
	var keep func(domain.LoanRecord) bool
	switch p.Role {
	case domain.RoleBorrower:
		keep = func(l domain.LoanRecord) bool { return l.BorrowerID == p.ID }
	case domain.RoleLender:
		keep = func(l domain.LoanRecord) bool { return l.LenderID == p.ID }
	default:
		return loans
	}

	scoped := make([]domain.LoanRecord, 0, len(loans))
	for _, l := range loans {
		if keep(l) {
			scoped = append(scoped, l)
		}
	}
	return scoped
}

// ScopePayments filters payments down to those posted against loans the
// principal may see, using the same rules as ScopeLoans.
func ScopePayments(p domain.Principal, payments []domain.Payment, loans []domain.LoanRecord) []domain.Payment {
	if p.Role != domain.RoleBorrower && p.Role != domain.RoleLender {
		return payments
	}

	visible := make(map[string]struct{})
	for _, l := range ScopeLoans(p, loans) {
		visible[l.ID] = struct{}{}
	}

	scoped := make([]domain.Payment, 0, len(payments))
	for _, pay := range payments {
		if _, ok := visible[pay.LoanID]; ok {
			scoped = append(scoped, pay)
		}
	}
	return scoped
}
