package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainoffering "campusx/internal/domain/offering"
	domainuser "campusx/internal/domain/user"
)

// OfferingRepository is an in-memory implementation. The occurrence
// primitives hold the write lock across check-and-insert, which gives the
// same at-most-once guarantee the document store provides with conditional
// updates.
type OfferingRepository struct {
	mu    sync.RWMutex
	items map[domainoffering.ID]*domainoffering.Offering
}

func NewOfferingRepository() *OfferingRepository {
	return &OfferingRepository{
		items: make(map[domainoffering.ID]*domainoffering.Offering),
	}
}

func (r *OfferingRepository) ByID(ctx context.Context, id domainoffering.ID) (*domainoffering.Offering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	off, ok := r.items[id]
	if !ok {
		return nil, domainoffering.ErrNotFound
	}
	return cloneOffering(off), nil
}

func (r *OfferingRepository) ByOwner(ctx context.Context, ownerID domainuser.ID, limit, offset int) ([]*domainoffering.Offering, error) {
	return r.List(ctx, domainoffering.Filter{OwnerID: ownerID, Limit: limit, Offset: offset})
}

func (r *OfferingRepository) List(ctx context.Context, filter domainoffering.Filter) ([]*domainoffering.Offering, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainoffering.Offering, 0)
	for _, off := range r.items {
		if filter.OwnerID != "" && off.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Duration != "" && off.Duration != filter.Duration {
			continue
		}
		if len(filter.Tags) > 0 && !anyOverlap(off.Tags, filter.Tags) {
			continue
		}
		if len(filter.Slots) > 0 && !anyOverlap(off.Slots, filter.Slots) {
			continue
		}
		matches = append(matches, cloneOffering(off))
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = domainoffering.SortByCreatedAt
	}
	sort.Slice(matches, func(i, j int) bool {
		var less bool
		if sortBy == domainoffering.SortByCompleted {
			less = matches[i].CompletedCount < matches[j].CompletedCount
		} else {
			less = matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		if filter.Ascending {
			return less
		}
		return !less
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			return nil, nil
		}
		matches = matches[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matches) {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func (r *OfferingRepository) Save(ctx context.Context, off *domainoffering.Offering) error {
	if off == nil || strings.TrimSpace(string(off.ID)) == "" {
		return domainoffering.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[off.ID]; ok {
		// Owner edits never rewrite the engine-owned fields.
		stored := cloneOffering(off)
		stored.Booked = append([]domainoffering.Occurrence(nil), existing.Booked...)
		stored.CompletedCount = existing.CompletedCount
		r.items[off.ID] = stored
		return nil
	}
	r.items[off.ID] = cloneOffering(off)
	return nil
}

func (r *OfferingRepository) Delete(ctx context.Context, id domainoffering.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainoffering.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *OfferingRepository) AddOccurrence(ctx context.Context, id domainoffering.ID, occ domainoffering.Occurrence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	off, ok := r.items[id]
	if !ok {
		return domainoffering.ErrNotFound
	}
	if off.IsBooked(occ) {
		return domainoffering.ErrOccurrenceTaken
	}
	off.Booked = append(off.Booked, occ)
	return nil
}

func (r *OfferingRepository) RemoveOccurrence(ctx context.Context, id domainoffering.ID, occ domainoffering.Occurrence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	off, ok := r.items[id]
	if !ok {
		return domainoffering.ErrNotFound
	}
	kept := off.Booked[:0]
	for _, held := range off.Booked {
		if held.Slot == occ.Slot && held.Day == occ.Day {
			continue
		}
		kept = append(kept, held)
	}
	off.Booked = kept
	return nil
}

func (r *OfferingRepository) IncrementCompleted(ctx context.Context, id domainoffering.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	off, ok := r.items[id]
	if !ok {
		return domainoffering.ErrNotFound
	}
	off.CompletedCount++
	return nil
}

func anyOverlap(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func cloneOffering(o *domainoffering.Offering) *domainoffering.Offering {
	if o == nil {
		return nil
	}
	copied := *o
	copied.Tags = append([]string(nil), o.Tags...)
	copied.Slots = append([]string(nil), o.Slots...)
	copied.Booked = append([]domainoffering.Occurrence(nil), o.Booked...)
	return &copied
}
