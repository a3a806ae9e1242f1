package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainreview "campusx/internal/domain/review"
	domainuser "campusx/internal/domain/user"
)

type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainreview.ID]*domainreview.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		items: make(map[domainreview.ID]*domainreview.Review),
	}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreview.ID) (*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rev, ok := r.items[id]
	if !ok {
		return nil, domainreview.ErrNotFound
	}
	return cloneReview(rev), nil
}

func (r *ReviewRepository) ByAuthorAndProfile(ctx context.Context, authorID, profileID domainuser.ID) (*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rev := range r.items {
		if rev.AuthorID == authorID && rev.ProfileID == profileID {
			return cloneReview(rev), nil
		}
	}
	return nil, domainreview.ErrNotFound
}

func (r *ReviewRepository) List(ctx context.Context, filter domainreview.Filter) ([]*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreview.Review, 0)
	for _, rev := range r.items {
		if filter.ProfileID != "" && rev.ProfileID != filter.ProfileID {
			continue
		}
		if filter.AuthorID != "" && rev.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Rating != 0 && rev.Rating != filter.Rating {
			continue
		}
		matches = append(matches, cloneReview(rev))
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
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

func (r *ReviewRepository) Save(ctx context.Context, rev *domainreview.Review) error {
	if rev == nil || strings.TrimSpace(string(rev.ID)) == "" {
		return domainreview.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rev.ID] = cloneReview(rev)
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreview.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainreview.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func cloneReview(r *domainreview.Review) *domainreview.Review {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}
