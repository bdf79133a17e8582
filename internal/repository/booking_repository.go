package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JackobTheLion/share-it/internal/common/domain"
	"github.com/JackobTheLion/share-it/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	StartTime time.Time `gorm:"not null;index"`
	EndTime   time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Item   ItemModel `gorm:"foreignKey:ItemID"`
	Booker UserModel `gorm:"foreignKey:BookerID"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func blockingStatusStrings() []string {
	statuses := booking.BlockingStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Create persists a new booking. The overlap check and the insert run in a
// single serializable transaction so two concurrent requests for
// overlapping intervals on the same item cannot both commit.
func (r *GormBookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	model := toBookingModel(b)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&BookingModel{}).
			Where("item_id = ?", model.ItemID).
			Where("status IN ?", blockingStatusStrings()).
			Where("start_time <= ? AND end_time >= ?", model.EndTime, model.StartTime).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check booking conflicts: %w", err)
		}
		if count > 0 {
			return domain.NewUnavailableError("item is already booked for this period")
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Booker").
		Where("bookings.id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByBookerID retrieves bookings made by the user, start time descending.
func (r *GormBookingRepository) FindByBookerID(ctx context.Context, bookerID uuid.UUID, f booking.Filter) ([]*booking.Booking, int64, error) {
	query := func() *gorm.DB {
		return applyStateFilter(
			r.db.WithContext(ctx).Model(&BookingModel{}).Where("booker_id = ?", bookerID),
			f,
		)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count booker bookings: %w", err)
	}

	var models []BookingModel
	if err := query().
		Preload("Item").
		Preload("Booker").
		Order("start_time DESC").
		Offset(f.Page.Offset).
		Limit(f.Page.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find booker bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	return bookings, total, err
}

// FindByOwnerID retrieves bookings on the user's items, start time descending.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, f booking.Filter) ([]*booking.Booking, int64, error) {
	query := func() *gorm.DB {
		return applyStateFilter(
			r.db.WithContext(ctx).Model(&BookingModel{}).
				Joins("JOIN items ON items.id = bookings.item_id").
				Where("items.owner_id = ?", ownerID),
			f,
		)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	var models []BookingModel
	if err := query().
		Preload("Item").
		Preload("Booker").
		Order("start_time DESC").
		Offset(f.Page.Offset).
		Limit(f.Page.Limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	return bookings, total, err
}

// Update persists changes to an existing booking with optimistic locking.
// Only the status can change after creation; the interval is immutable.
func (r *GormBookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	expectedVersion := b.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", b.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"status":     string(b.Status()),
			"version":    b.Version(),
			"updated_at": b.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// FindLastForItem returns the blocking booking with the latest end among
// those started before now, or nil when the item has none.
func (r *GormBookingRepository) FindLastForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*booking.Booking, error) {
	return r.findEdgeForItem(ctx,
		r.db.WithContext(ctx).Where("start_time < ?", now).Order("end_time DESC"),
		itemID,
	)
}

// FindNextForItem returns the blocking booking with the earliest start
// among those starting after now, or nil when the item has none.
func (r *GormBookingRepository) FindNextForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*booking.Booking, error) {
	return r.findEdgeForItem(ctx,
		r.db.WithContext(ctx).Where("start_time > ?", now).Order("start_time ASC"),
		itemID,
	)
}

func (r *GormBookingRepository) findEdgeForItem(ctx context.Context, q *gorm.DB, itemID uuid.UUID) (*booking.Booking, error) {
	var model BookingModel
	err := q.
		Preload("Item").
		Preload("Booker").
		Where("item_id = ?", itemID).
		Where("status IN ?", blockingStatusStrings()).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find edge booking for item: %w", err)
	}
	return toDomainBooking(&model)
}

// HasFinishedApproved reports whether the user finished an approved booking
// for the item before now.
func (r *GormBookingRepository) HasFinishedApproved(ctx context.Context, itemID, bookerID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("item_id = ?", itemID).
		Where("booker_id = ?", bookerID).
		Where("status = ?", string(booking.StatusApproved)).
		Where("end_time < ?", now).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}

// applyStateFilter narrows a booking query per the state filter. Time
// buckets are evaluated against the filter's captured "now".
func applyStateFilter(q *gorm.DB, f booking.Filter) *gorm.DB {
	switch f.State {
	case booking.FilterCurrent:
		return q.Where("start_time < ? AND end_time > ?", f.Now, f.Now)
	case booking.FilterPast:
		return q.Where("end_time < ?", f.Now)
	case booking.FilterFuture:
		return q.Where("start_time > ?", f.Now)
	case booking.FilterWaiting:
		return q.Where("status = ?", string(booking.StatusWaiting))
	case booking.FilterRejected:
		return q.Where("status = ?", string(booking.StatusRejected))
	default:
		return q
	}
}

// --- Conversion helpers ---

func toBookingModel(b *booking.Booking) *BookingModel {
	return &BookingModel{
		ID:        b.ID(),
		ItemID:    b.Item().ID(),
		BookerID:  b.Booker().ID(),
		StartTime: b.Start(),
		EndTime:   b.End(),
		Status:    string(b.Status()),
		Version:   b.Version(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*booking.Booking, error) {
	status, err := booking.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return booking.Reconstruct(
		m.ID,
		m.StartTime,
		m.EndTime,
		status,
		toDomainItem(&m.Item),
		toDomainUser(&m.Booker),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*booking.Booking, error) {
	bookings := make([]*booking.Booking, len(models))
	for i, m := range models {
		b, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = b
	}
	return bookings, nil
}
