package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JackobTheLion/share-it/internal/common/domain"
)

// Filter scopes a booking listing. Now is the clock reading the time
// buckets (CURRENT, PAST, FUTURE) are evaluated against, so a query is
// reproducible for a given instant.
type Filter struct {
	State StateFilter
	Now   time.Time
	Page  domain.Page
}

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// Create persists a new booking. The interval conflict check against
	// other blocking bookings for the same item and the insert must be one
	// atomic step; an overlap yields an unavailable error.
	Create(ctx context.Context, b *Booking) error

	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByBookerID retrieves bookings made by the user, ordered by start
	// time descending, with the total matching count.
	FindByBookerID(ctx context.Context, bookerID uuid.UUID, f Filter) ([]*Booking, int64, error)

	// FindByOwnerID retrieves bookings on items the user owns, ordered by
	// start time descending, with the total matching count.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, f Filter) ([]*Booking, int64, error)

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error

	// FindLastForItem returns the blocking booking for the item that
	// started before now and has the latest end, or nil when none exists.
	FindLastForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// FindNextForItem returns the blocking booking for the item that
	// starts after now and has the earliest start, or nil when none exists.
	FindNextForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// HasFinishedApproved reports whether the user had an approved booking
	// for the item that ended before now.
	HasFinishedApproved(ctx context.Context, itemID, bookerID uuid.UUID, now time.Time) (bool, error)
}
