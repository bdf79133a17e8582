package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JackobTheLion/share-it/internal/common/domain"
	"github.com/JackobTheLion/share-it/internal/domain/item"
	"github.com/JackobTheLion/share-it/internal/domain/request"
	"github.com/JackobTheLion/share-it/internal/domain/user"
)

// CreateRequestRequest holds the body of a new item request.
type CreateRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

// RequestItemDTO is an item listed in answer to a request.
type RequestItemDTO struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Available bool      `json:"available"`
}

// RequestDTO is the response representation of an item request, with the
// items created in answer to it.
type RequestDTO struct {
	ID          uuid.UUID        `json:"id"`
	RequesterID uuid.UUID        `json:"requester_id"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	Items       []RequestItemDTO `json:"items"`
}

// RequestService manages item requests (wishes for items nobody listed yet).
type RequestService struct {
	requests request.Repository
	items    item.Repository
	users    user.Repository
	logger   *zap.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requests request.Repository,
	items item.Repository,
	users user.Repository,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
		logger:   logger,
	}
}

// CreateRequest posts a new item request.
func (s *RequestService) CreateRequest(ctx context.Context, requesterID uuid.UUID, req CreateRequestRequest) (*RequestDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}

	r, err := request.NewRequest(requesterID, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, err
	}

	result := toRequestDTO(r, nil)
	return &result, nil
}

// GetOwnRequests lists the user's own requests, newest first, decorated
// with the items answering them.
func (s *RequestService) GetOwnRequests(ctx context.Context, requesterID uuid.UUID) ([]RequestDTO, error) {
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.requests.FindByRequesterID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, requests)
}

// GetOtherRequests lists other users' requests with pagination, newest
// first, decorated with the items answering them.
func (s *RequestService) GetOtherRequests(ctx context.Context, userID uuid.UUID, page domain.Page) (*domain.PaginatedResult[RequestDTO], error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	requests, total, err := s.requests.FindOthers(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	dtos, err := s.decorate(ctx, requests)
	if err != nil {
		return nil, err
	}

	result := domain.NewPaginatedResult(dtos, total, page)
	return &result, nil
}

// GetRequest retrieves a single request with its answering items.
func (s *RequestService) GetRequest(ctx context.Context, callerID, requestID uuid.UUID) (*RequestDTO, error) {
	if _, err := s.users.FindByID(ctx, callerID); err != nil {
		return nil, err
	}

	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dtos, err := s.decorate(ctx, []*request.Request{r})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *RequestService) decorate(ctx context.Context, requests []*request.Request) ([]RequestDTO, error) {
	ids := make([]uuid.UUID, len(requests))
	for i, r := range requests {
		ids[i] = r.ID()
	}

	items, err := s.items.FindByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	itemsByRequest := make(map[uuid.UUID][]*item.Item)
	for _, itm := range items {
		if itm.RequestID() != nil {
			itemsByRequest[*itm.RequestID()] = append(itemsByRequest[*itm.RequestID()], itm)
		}
	}

	dtos := make([]RequestDTO, len(requests))
	for i, r := range requests {
		dtos[i] = toRequestDTO(r, itemsByRequest[r.ID()])
	}
	return dtos, nil
}

func toRequestDTO(r *request.Request, items []*item.Item) RequestDTO {
	dto := RequestDTO{
		ID:          r.ID(),
		RequesterID: r.RequesterID(),
		Description: r.Description(),
		CreatedAt:   r.CreatedAt(),
		Items:       make([]RequestItemDTO, 0, len(items)),
	}
	for _, itm := range items {
		dto.Items = append(dto.Items, RequestItemDTO{
			ID:        itm.ID(),
			OwnerID:   itm.OwnerID(),
			Name:      itm.Name(),
			Available: itm.Available(),
		})
	}
	return dto
}
