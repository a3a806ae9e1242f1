package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusx/internal/domain/user"
)

var (
	ErrInvalidRating = errors.New("review: rating must be between 1 and 5")
	ErrNotFound      = errors.New("review: not found")
)

type ID string

type Review struct {
	ID        ID
	ProfileID user.ID
	AuthorID  user.ID
	Rating    int
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Filter struct {
	ProfileID user.ID
	AuthorID  user.ID
	Rating    int
	Limit     int
	Offset    int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Review, error)
	ByAuthorAndProfile(ctx context.Context, authorID, profileID user.ID) (*Review, error)
	List(ctx context.Context, filter Filter) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID        ID
	ProfileID user.ID
	AuthorID  user.ID
	Rating    int
	Message   string
	CreatedAt time.Time
}

func New(params CreateParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Review{
		ID:        params.ID,
		ProfileID: params.ProfileID,
		AuthorID:  params.AuthorID,
		Rating:    params.Rating,
		Message:   strings.TrimSpace(params.Message),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *Review) Update(rating int, message string, now time.Time) error {
	if rating != 0 {
		if rating < 1 || rating > 5 {
			return ErrInvalidRating
		}
		r.Rating = rating
	}
	if message != "" {
		r.Message = strings.TrimSpace(message)
	}
	if now.IsZero() {
		now = time.Now()
	}
	r.UpdatedAt = now.UTC()
	return nil
}

// Mean returns the arithmetic mean of the ratings rounded to one decimal
// place, and the count. An empty slice yields (0, 0).
func Mean(reviews []*Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	var total int
	for _, r := range reviews {
		total += r.Rating
	}
	avg := float64(total) / float64(len(reviews))
	return float64(int(avg*10+0.5)) / 10, len(reviews)
}
