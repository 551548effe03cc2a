package policy

import "github.com/rsinghal/loan-desk-api/internal/domain"

// Application status state machine:
//
//	pending → under_review → {approved, rejected}
//	pending → {approved, rejected}            (reviewer may skip review)
//
// approved and rejected are terminal. Nothing ever moves back to pending.

// CanTransition reports whether an application may move from one status to
// another. Unknown targets fail with ErrInvalidStatus; attempts to leave a
// terminal state fail with ErrTerminalState; known-but-unreachable targets
// (e.g. under_review back to pending) fail with ErrInvalidStatus.
func CanTransition(from, to domain.ApplicationStatus) error {
	if !to.Valid() {
		return &domain.ErrInvalidStatus{Status: string(to)}
	}
	if from.Terminal() {
		return &domain.ErrTerminalState{From: string(from), To: string(to)}
	}

	switch from {
	case domain.StatusPending:
		if to == domain.StatusUnderReview || to == domain.StatusApproved || to == domain.StatusRejected {
			return nil
		}
	case domain.StatusUnderReview:
		if to == domain.StatusApproved || to == domain.StatusRejected {
			return nil
		}
	}

	return &domain.ErrInvalidStatus{Status: string(to), Reason: "transition not permitted from " + string(from)}
}

// BorrowerMayMutate reports whether the owning borrower can still update
// or delete the application. Only pending applications are mutable.
func BorrowerMayMutate(status domain.ApplicationStatus) error {
	if status != domain.StatusPending {
		return &domain.ErrNotMutable{Status: string(status)}
	}
	return nil
}
