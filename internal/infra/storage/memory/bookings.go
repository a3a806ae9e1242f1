package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "campusx/internal/domain/booking"
	domainoffering "campusx/internal/domain/offering"
	domainuser "campusx/internal/domain/user"
)

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.ID]*domainbooking.Booking),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b == nil || strings.TrimSpace(string(b.ID)) == "" {
		return domainbooking.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BookingRepository) List(ctx context.Context, query domainbooking.Query) ([]*domainbooking.Booking, error) {
	query = query.Normalized()
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if query.Matches(b) {
			matches = append(matches, cloneBooking(b))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if query.Offset >= len(matches) {
		return nil, nil
	}
	matches = matches[query.Offset:]
	if query.Limit < len(matches) {
		matches = matches[:query.Limit]
	}
	return matches, nil
}

func (r *BookingRepository) ExistsActive(ctx context.Context, requesterID domainuser.ID, offeringID domainoffering.ID, occ domainoffering.Occurrence) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.items {
		if b.RequesterID != requesterID || b.OfferingID != offeringID {
			continue
		}
		if b.Slot != occ.Slot || b.Day != occ.Day {
			continue
		}
		if b.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	copied := *b
	return &copied
}
