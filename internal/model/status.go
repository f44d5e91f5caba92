package model

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusApproved  PurchaseStatus = "approved"
	PurchaseStatusRejected  PurchaseStatus = "rejected"
	PurchaseStatusShipped   PurchaseStatus = "shipped"
	PurchaseStatusDelivered PurchaseStatus = "delivered"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending,
		PurchaseStatusApproved,
		PurchaseStatusRejected,
		PurchaseStatusShipped,
		PurchaseStatusDelivered,
		PurchaseStatusCompleted:
		return true
	default:
		return false
	}
}

// StepFor maps a status onto the 1-5 progress track shown in the admin
// table. Rejected is a terminal failure branch and returns 0; it is rendered
// off-track. Unknown statuses also return 0.
func StepFor(s PurchaseStatus) int {
	switch s {
	case PurchaseStatusPending:
		return 1
	case PurchaseStatusApproved:
		return 2
	case PurchaseStatusShipped:
		return 3
	case PurchaseStatusDelivered:
		return 4
	case PurchaseStatusCompleted:
		return 5
	default:
		return 0
	}
}

// allowedTransitions is the forward order workflow. Completed and rejected
// are terminal. Shipped may jump straight to completed when the buyer
// confirms receipt without a separate delivered step.
var allowedTransitions = map[PurchaseStatus][]PurchaseStatus{
	PurchaseStatusPending:   {PurchaseStatusApproved, PurchaseStatusRejected},
	PurchaseStatusApproved:  {PurchaseStatusShipped, PurchaseStatusRejected},
	PurchaseStatusShipped:   {PurchaseStatusDelivered, PurchaseStatusCompleted},
	PurchaseStatusDelivered: {PurchaseStatusCompleted},
	PurchaseStatusCompleted: {},
	PurchaseStatusRejected:  {},
}

// CanTransition reports whether s→to is a legal workflow step. Re-applying
// the current status is always allowed so repeated admin actions stay
// idempotent.
func (s PurchaseStatus) CanTransition(to PurchaseStatus) bool {
	if s == to {
		return true
	}
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionMode selects how strictly status writes are checked. Permissive
// keeps the historical admin override behavior where any status may be
// written over any other; strict rejects jumps outside the table.
type TransitionMode string

const (
	TransitionModePermissive TransitionMode = "permissive"
	TransitionModeStrict     TransitionMode = "strict"
)
