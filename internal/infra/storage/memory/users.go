package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainuser "campusx/internal/domain/user"
)

// UserRepository stores users in memory. Not suitable for production.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[domainuser.ID]*domainuser.User
	byEmail    map[string]domainuser.ID
	byUsername map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[domainuser.ID]*domainuser.User),
		byEmail:    make(map[string]domainuser.ID),
		byUsername: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domainuser.NormalizeEmail(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[strings.TrimSpace(username)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) ByResetToken(ctx context.Context, token string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.ResetToken != "" && u.ResetToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	if u == nil {
		return domainuser.ErrIDRequired
	}
	if strings.TrimSpace(string(u.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	emailKey := domainuser.NormalizeEmail(u.Email)
	if emailKey == "" {
		return domainuser.ErrEmailRequired
	}
	usernameKey := strings.TrimSpace(u.Username)
	if usernameKey == "" {
		return domainuser.ErrUsernameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byEmail[emailKey]; ok && existing != u.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	if existing, ok := r.byUsername[usernameKey]; ok && existing != u.ID {
		return domainuser.ErrUsernameAlreadyUsed
	}
	stored := cloneUser(u)
	if prior, ok := r.byID[u.ID]; ok {
		delete(r.byEmail, domainuser.NormalizeEmail(prior.Email))
		delete(r.byUsername, strings.TrimSpace(prior.Username))
		// Coins, rating and total_ratings belong to the booking and review
		// engines. A caller holding a stale read must not roll them back.
		stored.Coins = prior.Coins
		stored.Rating = prior.Rating
		stored.TotalRatings = prior.TotalRatings
		stored.CreatedAt = prior.CreatedAt
	}
	r.byEmail[emailKey] = u.ID
	r.byUsername[usernameKey] = u.ID
	r.byID[u.ID] = stored
	return nil
}

func (r *UserRepository) List(ctx context.Context, filter domainuser.Filter) ([]*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainuser.User, 0)
	for _, u := range r.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.City != "" && !strings.EqualFold(u.City, filter.City) {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		matches = append(matches, cloneUser(u))
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return paginateUsers(matches, filter.Limit, filter.Offset), nil
}

func (r *UserRepository) CreditCoins(ctx context.Context, id domainuser.ID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	u.Coins += amount
	return nil
}

func (r *UserRepository) DebitCoinsClamped(ctx context.Context, id domainuser.ID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	u.Coins -= amount
	if u.Coins < 0 {
		u.Coins = 0
	}
	return nil
}

func (r *UserRepository) SetRating(ctx context.Context, id domainuser.ID, rating float64, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	u.Rating = rating
	u.TotalRatings = total
	return nil
}

func paginateUsers(items []*domainuser.User, limit, offset int) []*domainuser.User {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func cloneUser(u *domainuser.User) *domainuser.User {
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}
