package dto

import (
	"time"

	domainreview "campusx/internal/domain/review"
)

type ReviewView struct {
	ID        string       `json:"id"`
	Profile   *UserSummary `json:"profile,omitempty"`
	ProfileID string       `json:"profile_id"`
	Author    *UserSummary `json:"author,omitempty"`
	AuthorID  string       `json:"author_id"`
	Rating    int          `json:"rating"`
	Message   string       `json:"message,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type ReviewCollection struct {
	Items []ReviewView `json:"items"`
	Count int          `json:"count"`
}

func MapReviewView(r *domainreview.Review, profile, author *UserSummary) ReviewView {
	if r == nil {
		return ReviewView{}
	}
	return ReviewView{
		ID:        string(r.ID),
		Profile:   profile,
		ProfileID: string(r.ProfileID),
		Author:    author,
		AuthorID:  string(r.AuthorID),
		Rating:    r.Rating,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
