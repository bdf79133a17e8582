package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JackobTheLion/share-it/internal/common/domain"
	"github.com/JackobTheLion/share-it/internal/domain/booking"
	"github.com/JackobTheLion/share-it/internal/domain/item"
	"github.com/JackobTheLion/share-it/internal/domain/user"
	"github.com/JackobTheLion/share-it/internal/events"
)

var serviceNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type bookingFixture struct {
	svc       *BookingService
	bookings  *fakeBookingRepo
	items     *fakeItemRepo
	users     *fakeUserRepo
	publisher *fakePublisher
	owner     *user.User
	booker    *user.User
	item      *item.Item
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	bookings := newFakeBookingRepo()
	items := newFakeItemRepo()
	users := newFakeUserRepo()
	publisher := &fakePublisher{}

	svc := NewBookingService(
		bookings,
		items,
		users,
		booking.FixedClock{Instant: serviceNow},
		publisher,
		zap.NewNop(),
	)

	owner := user.Reconstruct(uuid.New(), "Owner", "owner@example.com", serviceNow, serviceNow)
	booker := user.Reconstruct(uuid.New(), "Booker", "booker@example.com", serviceNow, serviceNow)
	require.NoError(t, users.Save(context.Background(), owner))
	require.NoError(t, users.Save(context.Background(), booker))

	itm := item.Reconstruct(uuid.New(), owner.ID(), "Drill", "Cordless drill", true, nil, serviceNow, serviceNow)
	require.NoError(t, items.Save(context.Background(), itm))

	return &bookingFixture{
		svc:       svc,
		bookings:  bookings,
		items:     items,
		users:     users,
		publisher: publisher,
		owner:     owner,
		booker:    booker,
		item:      itm,
	}
}

func (f *bookingFixture) createBooking(t *testing.T, start, end time.Time) *BookingDTO {
	t.Helper()
	dto, err := f.svc.CreateBooking(context.Background(), f.booker.ID(), CreateBookingRequest{
		ItemID: f.item.ID(),
		Start:  start,
		End:    end,
	})
	require.NoError(t, err)
	return dto
}

func TestCreateBooking(t *testing.T) {
	start := serviceNow.Add(24 * time.Hour)
	end := serviceNow.Add(48 * time.Hour)

	t.Run("success starts booking in WAITING", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)

		assert.Equal(t, "WAITING", dto.Status)
		assert.Equal(t, f.item.ID(), dto.Item.ID)
		assert.Equal(t, f.owner.ID(), dto.Item.OwnerID)
		assert.Equal(t, f.booker.ID(), dto.Booker.ID)
		assert.Equal(t, []string{events.BookingRequested}, f.publisher.Types())
	})

	t.Run("end not after start is a validation error", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.CreateBooking(context.Background(), f.booker.ID(), CreateBookingRequest{
			ItemID: f.item.ID(),
			Start:  start,
			End:    start,
		})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		assert.Empty(t, f.publisher.Types())
	})

	t.Run("interval in the past is a validation error", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.CreateBooking(context.Background(), f.booker.ID(), CreateBookingRequest{
			ItemID: f.item.ID(),
			Start:  serviceNow.Add(-2 * time.Hour),
			End:    serviceNow.Add(-1 * time.Hour),
		})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.CreateBooking(context.Background(), f.booker.ID(), CreateBookingRequest{
			ItemID: uuid.New(),
			Start:  start,
			End:    end,
		})
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("unavailable item cannot be booked", func(t *testing.T) {
		f := newBookingFixture(t)
		off := item.Reconstruct(uuid.New(), f.owner.ID(), "Saw", "Table saw", false, nil, serviceNow, serviceNow)
		require.NoError(t, f.items.Save(context.Background(), off))

		_, err := f.svc.CreateBooking(context.Background(), f.booker.ID(), CreateBookingRequest{
			ItemID: off.ID(),
			Start:  start,
			End:    end,
		})
		assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
	})

	t.Run("owner cannot book own item", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.CreateBooking(context.Background(), f.owner.ID(), CreateBookingRequest{
			ItemID: f.item.ID(),
			Start:  start,
			End:    end,
		})
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("unknown booker is not found", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.CreateBooking(context.Background(), uuid.New(), CreateBookingRequest{
			ItemID: f.item.ID(),
			Start:  start,
			End:    end,
		})
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("overlapping blocking booking conflicts", func(t *testing.T) {
		f := newBookingFixture(t)
		f.createBooking(t, start, end)

		second := user.Reconstruct(uuid.New(), "Second", "second@example.com", serviceNow, serviceNow)
		require.NoError(t, f.users.Save(context.Background(), second))

		_, err := f.svc.CreateBooking(context.Background(), second.ID(), CreateBookingRequest{
			ItemID: f.item.ID(),
			Start:  start.Add(time.Hour),
			End:    end.Add(time.Hour),
		})
		assert.Equal(t, domain.KindUnavailable, domain.KindOf(err))
	})

	t.Run("rejected booking frees the interval", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)
		_, err := f.svc.ApproveBooking(context.Background(), f.owner.ID(), dto.ID, false)
		require.NoError(t, err)

		second := user.Reconstruct(uuid.New(), "Second", "second@example.com", serviceNow, serviceNow)
		require.NoError(t, f.users.Save(context.Background(), second))

		_, err = f.svc.CreateBooking(context.Background(), second.ID(), CreateBookingRequest{
			ItemID: f.item.ID(),
			Start:  start,
			End:    end,
		})
		assert.NoError(t, err)
	})
}

func TestGetBooking(t *testing.T) {
	start := serviceNow.Add(24 * time.Hour)
	end := serviceNow.Add(48 * time.Hour)

	t.Run("booker and owner can see it", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)

		got, err := f.svc.GetBooking(context.Background(), f.booker.ID(), dto.ID)
		require.NoError(t, err)
		assert.Equal(t, dto.ID, got.ID)

		got, err = f.svc.GetBooking(context.Background(), f.owner.ID(), dto.ID)
		require.NoError(t, err)
		assert.Equal(t, dto.ID, got.ID)
	})

	t.Run("third party gets not found", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)

		stranger := user.Reconstruct(uuid.New(), "Stranger", "stranger@example.com", serviceNow, serviceNow)
		require.NoError(t, f.users.Save(context.Background(), stranger))

		_, err := f.svc.GetBooking(context.Background(), stranger.ID(), dto.ID)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("unknown caller gets not found", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)

		_, err := f.svc.GetBooking(context.Background(), uuid.New(), dto.ID)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestApproveBooking(t *testing.T) {
	start := serviceNow.Add(24 * time.Hour)
	end := serviceNow.Add(48 * time.Hour)

	t.Run("owner approves", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)

		got, err := f.svc.ApproveBooking(context.Background(), f.owner.ID(), dto.ID, true)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", got.Status)
		assert.Equal(t, []string{events.BookingRequested, events.BookingApproved}, f.publisher.Types())
	})

	t.Run("owner rejects", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)

		got, err := f.svc.ApproveBooking(context.Background(), f.owner.ID(), dto.ID, false)
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", got.Status)
		assert.Equal(t, []string{events.BookingRequested, events.BookingRejected}, f.publisher.Types())
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)

		_, err := f.svc.ApproveBooking(context.Background(), f.booker.ID(), dto.ID, true)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("deciding twice is an invalid transition", func(t *testing.T) {
		f := newBookingFixture(t)
		dto := f.createBooking(t, start, end)

		_, err := f.svc.ApproveBooking(context.Background(), f.owner.ID(), dto.ID, true)
		require.NoError(t, err)

		_, err = f.svc.ApproveBooking(context.Background(), f.owner.ID(), dto.ID, true)
		assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))

		_, err = f.svc.ApproveBooking(context.Background(), f.owner.ID(), dto.ID, false)
		assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	})
}

func TestListBookings(t *testing.T) {
	// Seed one booking per time bucket directly; CreateBooking refuses
	// past intervals by design.
	seed := func(t *testing.T, f *bookingFixture, start, end time.Time, status booking.Status) *booking.Booking {
		t.Helper()
		b := booking.Reconstruct(uuid.New(), start, end, status, f.item, f.booker, 1, serviceNow, serviceNow)
		f.bookings.mu.Lock()
		f.bookings.bookings = append(f.bookings.bookings, b)
		f.bookings.mu.Unlock()
		return b
	}

	newSeeded := func(t *testing.T) (*bookingFixture, map[string]*booking.Booking) {
		f := newBookingFixture(t)
		seeded := map[string]*booking.Booking{
			"past":     seed(t, f, serviceNow.Add(-72*time.Hour), serviceNow.Add(-48*time.Hour), booking.StatusApproved),
			"current":  seed(t, f, serviceNow.Add(-time.Hour), serviceNow.Add(time.Hour), booking.StatusApproved),
			"future":   seed(t, f, serviceNow.Add(24*time.Hour), serviceNow.Add(48*time.Hour), booking.StatusWaiting),
			"rejected": seed(t, f, serviceNow.Add(72*time.Hour), serviceNow.Add(96*time.Hour), booking.StatusRejected),
		}
		return f, seeded
	}

	ids := func(dtos []BookingDTO) []uuid.UUID {
		out := make([]uuid.UUID, len(dtos))
		for i, d := range dtos {
			out[i] = d.ID
		}
		return out
	}

	page := domain.NewPage(0, 20)

	t.Run("ALL returns everything newest start first", func(t *testing.T) {
		f, seeded := newSeeded(t)
		res, err := f.svc.GetBookerBookings(context.Background(), f.booker.ID(), "ALL", page)
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.Total)
		assert.Equal(t, []uuid.UUID{
			seeded["rejected"].ID(),
			seeded["future"].ID(),
			seeded["current"].ID(),
			seeded["past"].ID(),
		}, ids(res.Items))
	})

	t.Run("time buckets select by the clock", func(t *testing.T) {
		f, seeded := newSeeded(t)
		for filter, want := range map[string]*booking.Booking{
			"PAST":    seeded["past"],
			"CURRENT": seeded["current"],
			"FUTURE":  seeded["future"],
		} {
			res, err := f.svc.GetBookerBookings(context.Background(), f.booker.ID(), filter, page)
			require.NoError(t, err, filter)
			if filter == "FUTURE" {
				// rejected booking is also in the future
				assert.Equal(t, int64(2), res.Total, filter)
			} else {
				require.Len(t, res.Items, 1, filter)
				assert.Equal(t, want.ID(), res.Items[0].ID, filter)
			}
		}
	})

	t.Run("status filters select by literal status", func(t *testing.T) {
		f, seeded := newSeeded(t)
		res, err := f.svc.GetBookerBookings(context.Background(), f.booker.ID(), "WAITING", page)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, seeded["future"].ID(), res.Items[0].ID)

		res, err = f.svc.GetBookerBookings(context.Background(), f.booker.ID(), "rejected", page)
		require.NoError(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, seeded["rejected"].ID(), res.Items[0].ID)
	})

	t.Run("owner listing sees bookings on owned items", func(t *testing.T) {
		f, _ := newSeeded(t)
		res, err := f.svc.GetOwnerBookings(context.Background(), f.owner.ID(), "ALL", page)
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.Total)

		res, err = f.svc.GetOwnerBookings(context.Background(), f.booker.ID(), "ALL", page)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Total)
	})

	t.Run("unknown state is a validation error", func(t *testing.T) {
		f, _ := newSeeded(t)
		_, err := f.svc.GetBookerBookings(context.Background(), f.booker.ID(), "UNSUPPORTED_STATUS", page)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		f, _ := newSeeded(t)
		_, err := f.svc.GetBookerBookings(context.Background(), uuid.New(), "ALL", page)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("pagination windows the result", func(t *testing.T) {
		f, seeded := newSeeded(t)
		res, err := f.svc.GetBookerBookings(context.Background(), f.booker.ID(), "ALL", domain.NewPage(1, 2))
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.Total)
		assert.Equal(t, []uuid.UUID{seeded["future"].ID(), seeded["current"].ID()}, ids(res.Items))
	})
}
