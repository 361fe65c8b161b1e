package enums

import "fmt"

// CheckoutStatus describes the allowed values for the checkouts.status column.
type CheckoutStatus string

const (
	CheckoutStatusIncomplete         CheckoutStatus = "incomplete"
	CheckoutStatusRequiresEscalation CheckoutStatus = "requires_escalation"
	CheckoutStatusReadyForComplete   CheckoutStatus = "ready_for_complete"
	CheckoutStatusCompleteInProgress CheckoutStatus = "complete_in_progress"
	CheckoutStatusCompleted          CheckoutStatus = "completed"
	CheckoutStatusCanceled           CheckoutStatus = "canceled"
)

var validCheckoutStatuses = []CheckoutStatus{
	CheckoutStatusIncomplete,
	CheckoutStatusRequiresEscalation,
	CheckoutStatusReadyForComplete,
	CheckoutStatusCompleteInProgress,
	CheckoutStatusCompleted,
	CheckoutStatusCanceled,
}

// IsValid reports whether the value matches the canonical checkout status enum.
func (s CheckoutStatus) IsValid() bool {
	for _, candidate := range validCheckoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the checkout can no longer be mutated.
func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusCanceled
}

// ParseCheckoutStatus converts the raw string to CheckoutStatus. Legacy
// spellings persisted by older writers map onto the canonical set.
func ParseCheckoutStatus(value string) (CheckoutStatus, error) {
	switch value {
	case "in_progress", "active":
		return CheckoutStatusIncomplete, nil
	case "cancelled":
		return CheckoutStatusCanceled, nil
	}
	for _, candidate := range validCheckoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout status %q", value)
}

// Public returns the externally visible status. Legacy spellings normalize
// onto the canonical set and unknown values fall back to "incomplete".
func (s CheckoutStatus) Public() CheckoutStatus {
	if parsed, err := ParseCheckoutStatus(string(s)); err == nil {
		return parsed
	}
	return CheckoutStatusIncomplete
}
