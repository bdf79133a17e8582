package booking

import "fmt"

// Status represents the current state of a booking in its lifecycle.
type Status string

const (
	// StatusWaiting is the initial state of every booking.
	StatusWaiting Status = "WAITING"
	// StatusApproved is set by the item owner accepting the request.
	StatusApproved Status = "APPROVED"
	// StatusRejected is set by the item owner declining the request.
	StatusRejected Status = "REJECTED"
	// StatusCanceled is set by the booker withdrawing the request.
	StatusCanceled Status = "CANCELED"
)

// validTransitions defines the state machine for booking status transitions.
// REJECTED and CANCELED are terminal; an approved booking can still be
// withdrawn by the booker.
var validTransitions = map[Status][]Status{
	StatusWaiting:  {StatusApproved, StatusRejected, StatusCanceled},
	StatusApproved: {StatusCanceled},
	StatusRejected: {},
	StatusCanceled: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// BlocksAvailability reports whether a booking in this status occupies its
// interval for conflict purposes. Rejected and canceled bookings do not.
func (s Status) BlocksAvailability() bool {
	return s == StatusWaiting || s == StatusApproved
}

// BlockingStatuses lists the statuses that occupy an item's calendar.
func BlockingStatuses() []Status {
	return []Status{StatusWaiting, StatusApproved}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
