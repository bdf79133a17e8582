package booking

import (
	"strings"

	"github.com/JackobTheLion/share-it/internal/common/domain"
)

// StateFilter selects a slice of a user's bookings, either by time bucket
// relative to "now" or by literal status.
type StateFilter string

const (
	FilterAll      StateFilter = "ALL"
	FilterCurrent  StateFilter = "CURRENT"
	FilterPast     StateFilter = "PAST"
	FilterFuture   StateFilter = "FUTURE"
	FilterWaiting  StateFilter = "WAITING"
	FilterRejected StateFilter = "REJECTED"
)

// ParseStateFilter normalizes a raw query value into a StateFilter.
// Empty input defaults to ALL; unknown values are a validation error.
func ParseStateFilter(raw string) (StateFilter, error) {
	if raw == "" {
		return FilterAll, nil
	}
	switch f := StateFilter(strings.ToUpper(raw)); f {
	case FilterAll, FilterCurrent, FilterPast, FilterFuture, FilterWaiting, FilterRejected:
		return f, nil
	default:
		return "", domain.NewValidationError("Unknown state: " + raw)
	}
}
