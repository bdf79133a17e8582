package request

import (
	"context"

	"github.com/google/uuid"

	"github.com/JackobTheLion/share-it/internal/common/domain"
)

// Repository defines persistence operations for item requests.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// FindByRequesterID returns the user's own requests, newest first.
	FindByRequesterID(ctx context.Context, requesterID uuid.UUID) ([]*Request, error)
	// FindOthers returns requests posted by everyone except the given user,
	// newest first.
	FindOthers(ctx context.Context, excludeUserID uuid.UUID, page domain.Page) ([]*Request, int64, error)
	Save(ctx context.Context, r *Request) error
}
