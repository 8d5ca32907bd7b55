// Package valueobjects contains the value types of the subscription domain.
package valueobjects

// Status is the billing lifecycle status of a subscription record. The
// vocabulary mirrors the external billing provider's states; canceled is
// terminal and a reopened subscription is modeled as a fresh record.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusUnpaid   Status = "unpaid"
	StatusCanceled Status = "canceled"
)

// ValidStatuses is the closed set of lifecycle states.
var ValidStatuses = map[Status]bool{
	StatusTrialing: true,
	StatusActive:   true,
	StatusPastDue:  true,
	StatusUnpaid:   true,
	StatusCanceled: true,
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCanceled
}

// CanUseService reports whether the subscription grants service access.
func (s Status) CanUseService() bool {
	return s == StatusActive || s == StatusTrialing
}

// CanTransitionTo checks the lifecycle state machine. Transitions are driven
// by billing events and reconciliation, never by the actor directly.
func (s Status) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusTrialing: {StatusActive, StatusCanceled},
		StatusActive:   {StatusPastDue, StatusCanceled},
		StatusPastDue:  {StatusActive, StatusUnpaid, StatusCanceled},
		StatusUnpaid:   {StatusCanceled},
		StatusCanceled: {},
	}

	allowed, exists := transitions[s]
	if !exists {
		return false
	}
	for _, allowedStatus := range allowed {
		if allowedStatus == target {
			return true
		}
	}
	return false
}
