package dto

import (
	"time"

	domainuser "campusx/internal/domain/user"
)

// UserProfile is the full public shape of an account.
type UserProfile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	City           string    `json:"city,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Coins          int64     `json:"coins"`
	Rating         float64   `json:"rating"`
	TotalRatings   int       `json:"total_ratings"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserSummary is the short join shape embedded in booking and review views.
type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// AuthResponse pairs a profile with its bearer token.
type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

func MapUserProfile(u *domainuser.User) UserProfile {
	if u == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:             string(u.ID),
		Email:          u.Email,
		Username:       u.Username,
		FullName:       u.FullName,
		Role:           string(u.Role),
		City:           u.City,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Coins:          u.Coins,
		Rating:         u.Rating,
		TotalRatings:   u.TotalRatings,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func MapUserSummary(u *domainuser.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:             string(u.ID),
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}

func NewAuthResponse(u *domainuser.User, token string) AuthResponse {
	return AuthResponse{User: MapUserProfile(u), Token: token}
}
