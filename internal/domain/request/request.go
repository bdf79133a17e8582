package request

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JackobTheLion/share-it/internal/common/domain"
)

// Request is a wish posted by a user for an item nobody has listed yet.
// Other users answer it by creating items that reference the request.
type Request struct {
	id          uuid.UUID
	requesterID uuid.UUID
	description string
	createdAt   time.Time
}

// NewRequest creates a new item request with validated fields.
func NewRequest(requesterID uuid.UUID, description string) (*Request, error) {
	if requesterID == uuid.Nil {
		return nil, domain.NewValidationError("requester ID is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("request description is required")
	}
	return &Request{
		id:          uuid.New(),
		requesterID: requesterID,
		description: description,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Request from persistence data (no validation).
func Reconstruct(id, requesterID uuid.UUID, description string, createdAt time.Time) *Request {
	return &Request{
		id:          id,
		requesterID: requesterID,
		description: description,
		createdAt:   createdAt,
	}
}

// ID returns the request's unique identifier.
func (r *Request) ID() uuid.UUID { return r.id }

// RequesterID returns the posting user's id.
func (r *Request) RequesterID() uuid.UUID { return r.requesterID }

// Description returns what the requester is looking for.
func (r *Request) Description() string { return r.description }

// CreatedAt returns the creation timestamp.
func (r *Request) CreatedAt() time.Time { return r.createdAt }
