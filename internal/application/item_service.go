package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JackobTheLion/share-it/internal/common/domain"
	"github.com/JackobTheLion/share-it/internal/domain/booking"
	"github.com/JackobTheLion/share-it/internal/domain/item"
	"github.com/JackobTheLion/share-it/internal/domain/user"
)

// CreateItemRequest holds the data needed to list a new item.
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Available   *bool      `json:"available" binding:"required"`
	RequestID   *uuid.UUID `json:"request_id"`
}

// UpdateItemRequest holds a partial item update. Nil fields stay unchanged.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// AddCommentRequest holds the body of a new comment.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// BookingEdgeDTO is the compact last/next booking view on an item.
type BookingEdgeDTO struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ItemDTO is the response representation of an item. LastBooking and
// NextBooking are populated only for the item's owner.
type ItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Available   bool            `json:"available"`
	RequestID   *uuid.UUID      `json:"request_id,omitempty"`
	LastBooking *BookingEdgeDTO `json:"last_booking,omitempty"`
	NextBooking *BookingEdgeDTO `json:"next_booking,omitempty"`
	Comments    []CommentDTO    `json:"comments"`
}

// ItemService manages the item catalog and its comments.
type ItemService struct {
	items    item.Repository
	comments item.CommentRepository
	users    user.Repository
	bookings booking.Repository
	clock    booking.Clock
	logger   *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items item.Repository,
	comments item.CommentRepository,
	users user.Repository,
	bookings booking.Repository,
	clock booking.Clock,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		comments: comments,
		users:    users,
		bookings: bookings,
		clock:    clock,
		logger:   logger,
	}
}

// CreateItem lists a new item for the owner.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if req.Available == nil {
		return nil, domain.NewValidationError("availability flag is required")
	}

	itm, err := item.NewItem(ownerID, req.Name, req.Description, *req.Available, req.RequestID)
	if err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, itm); err != nil {
		return nil, err
	}

	result := toItemDTO(itm, nil, nil, nil)
	return &result, nil
}

// UpdateItem applies a partial update. Only the owner may update; anyone
// else gets a not-found error.
func (s *ItemService) UpdateItem(ctx context.Context, actorID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	itm, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !itm.IsOwnedBy(actorID) {
		return nil, domain.NewNotFoundError("Item", itemID.String())
	}

	if err := itm.ApplyPatch(req.Name, req.Description, req.Available); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, itm); err != nil {
		return nil, err
	}

	result := toItemDTO(itm, nil, nil, nil)
	return &result, nil
}

// GetItem retrieves an item with its comments. The owner additionally sees
// the item's last and next bookings.
func (s *ItemService) GetItem(ctx context.Context, callerID, itemID uuid.UUID) (*ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, callerID); err != nil {
		return nil, err
	}
	itm, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var last, next *booking.Booking
	if itm.IsOwnedBy(callerID) {
		now := s.clock.Now()
		if last, err = s.bookings.FindLastForItem(ctx, itemID, now); err != nil {
			return nil, err
		}
		if next, err = s.bookings.FindNextForItem(ctx, itemID, now); err != nil {
			return nil, err
		}
	}

	result := toItemDTO(itm, last, next, comments)
	return &result, nil
}

// GetOwnerItems lists the owner's items, each decorated with its comments
// and last/next bookings.
func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID uuid.UUID, page domain.Page) (*domain.PaginatedResult[ItemDTO], error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, total, err := s.items.FindByOwnerID(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	itemIDs := make([]uuid.UUID, len(items))
	for i, itm := range items {
		itemIDs[i] = itm.ID()
	}
	comments, err := s.comments.FindByItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	commentsByItem := make(map[uuid.UUID][]*item.Comment)
	for _, c := range comments {
		commentsByItem[c.ItemID()] = append(commentsByItem[c.ItemID()], c)
	}

	now := s.clock.Now()
	dtos := make([]ItemDTO, len(items))
	for i, itm := range items {
		last, err := s.bookings.FindLastForItem(ctx, itm.ID(), now)
		if err != nil {
			return nil, err
		}
		next, err := s.bookings.FindNextForItem(ctx, itm.ID(), now)
		if err != nil {
			return nil, err
		}
		dtos[i] = toItemDTO(itm, last, next, commentsByItem[itm.ID()])
	}

	result := domain.NewPaginatedResult(dtos, total, page)
	return &result, nil
}

// SearchItems finds available items matching the text. A blank query yields
// an empty result, not an error.
func (s *ItemService) SearchItems(ctx context.Context, text string, page domain.Page) (*domain.PaginatedResult[ItemDTO], error) {
	if strings.TrimSpace(text) == "" {
		result := domain.NewPaginatedResult([]ItemDTO{}, 0, page)
		return &result, nil
	}

	items, total, err := s.items.Search(ctx, text, page)
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemDTO, len(items))
	for i, itm := range items {
		dtos[i] = toItemDTO(itm, nil, nil, nil)
	}
	result := domain.NewPaginatedResult(dtos, total, page)
	return &result, nil
}

// AddComment posts feedback on an item. Only a user who finished an
// approved booking for the item may comment.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID uuid.UUID, req AddCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	itm, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	finished, err := s.bookings.HasFinishedApproved(ctx, itm.ID(), authorID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, domain.NewValidationError("only users with a finished booking may comment on an item")
	}

	comment, err := item.NewComment(itm.ID(), author.ID(), author.Name(), req.Text)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, err
	}

	result := toCommentDTO(comment)
	return &result, nil
}

// --- Helpers ---

func toItemDTO(itm *item.Item, last, next *booking.Booking, comments []*item.Comment) ItemDTO {
	dto := ItemDTO{
		ID:          itm.ID(),
		OwnerID:     itm.OwnerID(),
		Name:        itm.Name(),
		Description: itm.Description(),
		Available:   itm.Available(),
		RequestID:   itm.RequestID(),
		Comments:    make([]CommentDTO, 0, len(comments)),
	}
	for _, c := range comments {
		dto.Comments = append(dto.Comments, toCommentDTO(c))
	}
	if last != nil {
		dto.LastBooking = toBookingEdgeDTO(last)
	}
	if next != nil {
		dto.NextBooking = toBookingEdgeDTO(next)
	}
	return dto
}

func toBookingEdgeDTO(bk *booking.Booking) *BookingEdgeDTO {
	return &BookingEdgeDTO{
		ID:       bk.ID(),
		BookerID: bk.Booker().ID(),
		Start:    bk.Start(),
		End:      bk.End(),
	}
}

func toCommentDTO(c *item.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID(),
		AuthorName: c.AuthorName(),
		Text:       c.Text(),
		CreatedAt:  c.CreatedAt(),
	}
}
