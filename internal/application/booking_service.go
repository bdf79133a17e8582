package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JackobTheLion/share-it/internal/common/domain"
	"github.com/JackobTheLion/share-it/internal/common/kafka"
	"github.com/JackobTheLion/share-it/internal/common/metrics"
	"github.com/JackobTheLion/share-it/internal/domain/booking"
	"github.com/JackobTheLion/share-it/internal/domain/item"
	"github.com/JackobTheLion/share-it/internal/domain/user"
	"github.com/JackobTheLion/share-it/internal/events"
)

// CreateBookingRequest holds the data needed to request a booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// BookingDTO is the response representation of a booking, with the booked
// item and the booker as nested snapshots.
type BookingDTO struct {
	ID        uuid.UUID    `json:"id"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Status    string       `json:"status"`
	Item      ItemRefDTO   `json:"item"`
	Booker    UserRefDTO   `json:"booker"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ItemRefDTO is the nested item snapshot inside a booking response.
type ItemRefDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Available bool      `json:"available"`
}

// UserRefDTO is the nested user snapshot inside a booking response.
type UserRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BookingService is the booking engine: it validates and creates bookings,
// resolves visibility-scoped lookups and drives the approval state machine.
type BookingService struct {
	bookings booking.Repository
	items    item.Repository
	users    user.Repository
	clock    booking.Clock
	producer events.Publisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings booking.Repository,
	items item.Repository,
	users user.Repository,
	clock booking.Clock,
	producer events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		clock:    clock,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking validates a booking request and persists it with status
// WAITING. Checks run in a fixed order and each failure short-circuits
// before any state change: interval shape, interval not in the past, item
// exists, item available, booker is not the owner, booker exists, no
// interval conflict with another blocking booking.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	now := s.clock.Now()

	if err := booking.ValidateInterval(req.Start, req.End, now); err != nil {
		return nil, err
	}

	itm, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !itm.Available() {
		return nil, domain.NewUnavailableError("item is not available for booking")
	}
	if itm.IsOwnedBy(bookerID) {
		return nil, domain.NewForbiddenError("owner cannot book their own item")
	}

	booker, err := s.users.FindByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	bk, err := booking.NewBooking(itm, booker, req.Start, req.End, now)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, bk); err != nil {
		if domain.IsKind(err, domain.KindUnavailable) {
			metrics.IncBookingConflict()
		}
		return nil, err
	}
	metrics.IncBookingCreated()

	s.publishEvent(ctx, events.BookingRequested, bk.ID().String(), events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		ItemID:     itm.ID(),
		OwnerID:    itm.OwnerID(),
		BookerID:   booker.ID(),
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: now,
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a booking visible to the caller. Callers who are
// neither the booker nor the item owner get a not-found error, so the
// booking's existence stays hidden from them.
func (s *BookingService) GetBooking(ctx context.Context, callerID, bookingID uuid.UUID) (*BookingDTO, error) {
	if _, err := s.users.FindByID(ctx, callerID); err != nil {
		return nil, err
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsVisibleTo(callerID) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookerBookings lists bookings the user made, scoped by state filter,
// newest start first.
func (s *BookingService) GetBookerBookings(ctx context.Context, bookerID uuid.UUID, state string, page domain.Page) (*domain.PaginatedResult[BookingDTO], error) {
	filter, err := s.listFilter(ctx, bookerID, state, page)
	if err != nil {
		return nil, err
	}

	bookings, total, err := s.bookings.FindByBookerID(ctx, bookerID, *filter)
	if err != nil {
		return nil, err
	}

	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page)
	return &result, nil
}

// GetOwnerBookings lists bookings on items the user owns, scoped by state
// filter, newest start first.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID, state string, page domain.Page) (*domain.PaginatedResult[BookingDTO], error) {
	filter, err := s.listFilter(ctx, ownerID, state, page)
	if err != nil {
		return nil, err
	}

	bookings, total, err := s.bookings.FindByOwnerID(ctx, ownerID, *filter)
	if err != nil {
		return nil, err
	}

	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page)
	return &result, nil
}

func (s *BookingService) listFilter(ctx context.Context, actorID uuid.UUID, state string, page domain.Page) (*booking.Filter, error) {
	if _, err := s.users.FindByID(ctx, actorID); err != nil {
		return nil, err
	}
	stateFilter, err := booking.ParseStateFilter(state)
	if err != nil {
		return nil, err
	}
	return &booking.Filter{State: stateFilter, Now: s.clock.Now(), Page: page}, nil
}

// ApproveBooking lets the item owner decide a WAITING booking. approve=true
// sets APPROVED, approve=false sets REJECTED. Non-owners get a not-found
// error; a booking already decided cannot be decided again.
func (s *BookingService) ApproveBooking(ctx context.Context, ownerID, bookingID uuid.UUID, approve bool) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() != ownerID {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	if approve {
		err = bk.Approve()
	} else {
		err = bk.Reject()
	}
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	eventType := events.BookingRejected
	if approve {
		eventType = events.BookingApproved
	}
	s.publishEvent(ctx, eventType, bk.ID().String(), events.BookingDecidedEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.Item().ID(),
		OwnerID:    bk.OwnerID(),
		BookerID:   bk.Booker().ID(),
		Status:     string(bk.Status()),
		OccurredAt: s.clock.Now(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// --- Helpers ---

func toBookingDTO(bk *booking.Booking) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Status: string(bk.Status()),
		Item: ItemRefDTO{
			ID:        bk.Item().ID(),
			Name:      bk.Item().Name(),
			OwnerID:   bk.Item().OwnerID(),
			Available: bk.Item().Available(),
		},
		Booker: UserRefDTO{
			ID:   bk.Booker().ID(),
			Name: bk.Booker().Name(),
		},
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*booking.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("share-it", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
