package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JackobTheLion/share-it/internal/common/domain"
	"github.com/JackobTheLion/share-it/internal/common/kafka"
	"github.com/JackobTheLion/share-it/internal/domain/booking"
	"github.com/JackobTheLion/share-it/internal/domain/item"
	"github.com/JackobTheLion/share-it/internal/domain/request"
	"github.com/JackobTheLion/share-it/internal/domain/user"
)

// --- user fake ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("User", id.String())
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return domain.NewNotFoundError("User", u.ID().String())
	}
	r.users[u.ID()] = u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.NewNotFoundError("User", id.String())
	}
	delete(r.users, id)
	return nil
}

// --- item fake ---

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*item.Item
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[uuid.UUID]*item.Item)}
}

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*item.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("Item", id.String())
	}
	return i, nil
}

func (r *fakeItemRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, page domain.Page) ([]*item.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*item.Item
	for _, i := range r.items {
		if i.OwnerID() == ownerID {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt().Before(out[b].CreatedAt()) })
	return pageSlice(out, page), int64(len(out)), nil
}

func (r *fakeItemRepo) FindByRequestIDs(_ context.Context, requestIDs []uuid.UUID) ([]*item.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = true
	}
	var out []*item.Item
	for _, i := range r.items {
		if i.RequestID() != nil && wanted[*i.RequestID()] {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) Search(_ context.Context, text string, page domain.Page) ([]*item.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(text)
	var out []*item.Item
	for _, i := range r.items {
		if !i.Available() {
			continue
		}
		if strings.Contains(strings.ToLower(i.Name()), needle) ||
			strings.Contains(strings.ToLower(i.Description()), needle) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt().Before(out[b].CreatedAt()) })
	return pageSlice(out, page), int64(len(out)), nil
}

func (r *fakeItemRepo) Save(_ context.Context, i *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[i.ID()] = i
	return nil
}

func (r *fakeItemRepo) Update(_ context.Context, i *item.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[i.ID()]; !ok {
		return domain.NewNotFoundError("Item", i.ID().String())
	}
	r.items[i.ID()] = i
	return nil
}

// --- comment fake ---

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []*item.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) Save(_ context.Context, c *item.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments = append(r.comments, c)
	return nil
}

func (r *fakeCommentRepo) FindByItemID(_ context.Context, itemID uuid.UUID) ([]*item.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*item.Comment
	for _, c := range r.comments {
		if c.ItemID() == itemID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) FindByItemIDs(_ context.Context, itemIDs []uuid.UUID) ([]*item.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}
	var out []*item.Comment
	for _, c := range r.comments {
		if wanted[c.ItemID()] {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- request fake ---

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*request.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*request.Request)}
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*request.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.NewNotFoundError("Request", id.String())
	}
	return req, nil
}

func (r *fakeRequestRepo) FindByRequesterID(_ context.Context, requesterID uuid.UUID) ([]*request.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*request.Request
	for _, req := range r.requests {
		if req.RequesterID() == requesterID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (r *fakeRequestRepo) FindOthers(_ context.Context, excludeUserID uuid.UUID, page domain.Page) ([]*request.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*request.Request
	for _, req := range r.requests {
		if req.RequesterID() != excludeUserID {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return pageSlice(out, page), int64(len(out)), nil
}

func (r *fakeRequestRepo) Save(_ context.Context, req *request.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID()] = req
	return nil
}

// --- booking fake ---

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*booking.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.bookings {
		if other.Item().ID() == b.Item().ID() &&
			other.Status().BlocksAvailability() &&
			other.Overlaps(b.Start(), b.End()) {
			return domain.NewUnavailableError("item is already booked for this period")
		}
	}
	r.bookings = append(r.bookings, b)
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID() == id {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", id.String())
}

func (r *fakeBookingRepo) FindByBookerID(_ context.Context, bookerID uuid.UUID, f booking.Filter) ([]*booking.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(b *booking.Booking) bool { return b.Booker().ID() == bookerID }, f)
}

func (r *fakeBookingRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, f booking.Filter) ([]*booking.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(b *booking.Booking) bool { return b.OwnerID() == ownerID }, f)
}

func (r *fakeBookingRepo) list(match func(*booking.Booking) bool, f booking.Filter) ([]*booking.Booking, int64, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if match(b) && matchesState(b, f) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start().After(out[j].Start()) })
	return pageSlice(out, f.Page), int64(len(out)), nil
}

func matchesState(b *booking.Booking, f booking.Filter) bool {
	switch f.State {
	case booking.FilterCurrent:
		return b.Start().Before(f.Now) && b.End().After(f.Now)
	case booking.FilterPast:
		return b.End().Before(f.Now)
	case booking.FilterFuture:
		return b.Start().After(f.Now)
	case booking.FilterWaiting:
		return b.Status() == booking.StatusWaiting
	case booking.FilterRejected:
		return b.Status() == booking.StatusRejected
	default:
		return true
	}
}

func (r *fakeBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, other := range r.bookings {
		if other.ID() == b.ID() {
			r.bookings[i] = b
			return nil
		}
	}
	return domain.NewNotFoundError("Booking", b.ID().String())
}

func (r *fakeBookingRepo) FindLastForItem(_ context.Context, itemID uuid.UUID, now time.Time) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *booking.Booking
	for _, b := range r.bookings {
		if b.Item().ID() != itemID || !b.Status().BlocksAvailability() || !b.Start().Before(now) {
			continue
		}
		if last == nil || b.End().After(last.End()) {
			last = b
		}
	}
	return last, nil
}

func (r *fakeBookingRepo) FindNextForItem(_ context.Context, itemID uuid.UUID, now time.Time) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var next *booking.Booking
	for _, b := range r.bookings {
		if b.Item().ID() != itemID || !b.Status().BlocksAvailability() || !b.Start().After(now) {
			continue
		}
		if next == nil || b.Start().Before(next.Start()) {
			next = b
		}
	}
	return next, nil
}

func (r *fakeBookingRepo) HasFinishedApproved(_ context.Context, itemID, bookerID uuid.UUID, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Item().ID() == itemID &&
			b.Booker().ID() == bookerID &&
			b.Status() == booking.StatusApproved &&
			b.End().Before(now) {
			return true, nil
		}
	}
	return false, nil
}

// --- event recorder ---

type recordedEvent struct {
	Topic string
	Event kafka.CloudEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Topic: topic, Event: event})
	return nil
}

func (p *fakePublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Event.Type
	}
	return types
}

func pageSlice[T any](s []T, page domain.Page) []T {
	if page.Limit == 0 {
		page = domain.NewPage(page.Offset, 0)
	}
	if page.Offset >= len(s) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(s) {
		end = len(s)
	}
	return s[page.Offset:end]
}
