package item

import (
	"context"

	"github.com/google/uuid"

	"github.com/JackobTheLion/share-it/internal/common/domain"
)

// Repository defines persistence operations for items.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page domain.Page) ([]*Item, int64, error)
	FindByRequestIDs(ctx context.Context, requestIDs []uuid.UUID) ([]*Item, error)
	// Search matches available items whose name or description contains the
	// text, case-insensitively. Blank text yields no rows.
	Search(ctx context.Context, text string, page domain.Page) ([]*Item, int64, error)
	Save(ctx context.Context, i *Item) error
	Update(ctx context.Context, i *Item) error
}

// CommentRepository defines persistence operations for item comments.
type CommentRepository interface {
	Save(ctx context.Context, c *Comment) error
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*Comment, error)
	FindByItemIDs(ctx context.Context, itemIDs []uuid.UUID) ([]*Comment, error)
}
