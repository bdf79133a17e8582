package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/JackobTheLion/share-it/internal/common/domain"
	"github.com/JackobTheLion/share-it/internal/domain/item"
	"github.com/JackobTheLion/share-it/internal/domain/user"
)

// Booking is the aggregate root for the booking domain. It references the
// booked item and the booker as resolved snapshots, not bare ids; the item
// owner is reached through the item, never stored redundantly.
type Booking struct {
	id      uuid.UUID
	start   time.Time
	end     time.Time
	status  Status
	item    *item.Item
	booker  *user.User
	version int64

	createdAt time.Time
	updatedAt time.Time
}

// ValidateInterval checks the requested interval before any collaborator
// lookup happens: the end must be strictly after the start, and neither
// endpoint may lie in the past relative to now.
func ValidateInterval(start, end, now time.Time) error {
	if !end.After(start) {
		return domain.NewValidationError("booking end must be strictly after start")
	}
	if start.Before(now) || end.Before(now) {
		return domain.NewValidationError("booking cannot be scheduled in the past")
	}
	return nil
}

// NewBooking creates a new Booking aggregate with status=WAITING. now is
// the engine's clock reading at request receipt.
func NewBooking(itm *item.Item, booker *user.User, start, end, now time.Time) (*Booking, error) {
	if err := ValidateInterval(start, end, now); err != nil {
		return nil, err
	}
	if !itm.Available() {
		return nil, domain.NewUnavailableError("item is not available for booking")
	}
	if itm.IsOwnedBy(booker.ID()) {
		return nil, domain.NewForbiddenError("owner cannot book their own item")
	}

	return &Booking{
		id:        uuid.New(),
		start:     start,
		end:       end,
		status:    StatusWaiting,
		item:      itm,
		booker:    booker,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	start, end time.Time,
	status Status,
	itm *item.Item,
	booker *user.User,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		start:     start,
		end:       end,
		status:    status,
		item:      itm,
		booker:    booker,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Start returns the interval start.
func (b *Booking) Start() time.Time { return b.start }

// End returns the interval end.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Item returns the booked item snapshot.
func (b *Booking) Item() *item.Item { return b.item }

// Booker returns the booking user snapshot.
func (b *Booking) Booker() *user.User { return b.booker }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// OwnerID returns the id of the booked item's owner.
func (b *Booking) OwnerID() uuid.UUID { return b.item.OwnerID() }

// IsVisibleTo reports whether the user may see this booking: only the
// booker and the item owner can.
func (b *Booking) IsVisibleTo(userID uuid.UUID) bool {
	return b.booker.ID() == userID || b.OwnerID() == userID
}

// Overlaps reports whether the candidate interval [start, end] shares at
// least one point in time with this booking's interval. Touching endpoints
// count as overlap: only a candidate that ends strictly before this booking
// starts, or starts strictly after it ends, is clear.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return !end.Before(b.start) && !start.After(b.end)
}

// Approve transitions the booking from WAITING to APPROVED.
func (b *Booking) Approve() error {
	if !b.status.CanTransitionTo(StatusApproved) {
		return domain.NewInvalidStateError(string(b.status), string(StatusApproved))
	}
	b.status = StatusApproved
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reject transitions the booking from WAITING to REJECTED.
func (b *Booking) Reject() error {
	if !b.status.CanTransitionTo(StatusRejected) {
		return domain.NewInvalidStateError(string(b.status), string(StatusRejected))
	}
	b.status = StatusRejected
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel withdraws the booking if it is not in a terminal state.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCanceled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCanceled))
	}
	b.status = StatusCanceled
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
