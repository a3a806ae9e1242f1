package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrUsernameRequired    = errors.New("user: username is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrFullNameRequired    = errors.New("user: full name is required")
	ErrInvalidRole         = errors.New("user: invalid role")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrUsernameAlreadyUsed = errors.New("user: username already used")
	ErrNotFound            = errors.New("user: not found")
)

type ID string

type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

type User struct {
	ID             ID
	Email          string
	Username       string
	FullName       string
	PasswordHash   string
	Role           Role
	City           string
	Bio            string
	ProfilePicture string
	Coins          int64
	Rating         float64
	TotalRatings   int
	Active         bool
	ResetToken     string
	ResetExpires   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Role   Role
	City   string
	Active *bool
	Limit  int
	Offset int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	ByResetToken(ctx context.Context, token string) (*User, error)
	Save(ctx context.Context, user *User) error
	List(ctx context.Context, filter Filter) ([]*User, error)

	// CreditCoins atomically adds amount to the user's coin balance.
	CreditCoins(ctx context.Context, id ID, amount int64) error
	// DebitCoinsClamped atomically subtracts amount, flooring the balance
	// at zero.
	DebitCoinsClamped(ctx context.Context, id ID, amount int64) error
	// SetRating replaces the aggregate rating and ratings count.
	SetRating(ctx context.Context, id ID, rating float64, total int) error
}

type CreateParams struct {
	ID           ID
	Email        string
	Username     string
	FullName     string
	PasswordHash string
	Role         Role
	City         string
	CreatedAt    time.Time
}

func New(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	fullName := strings.TrimSpace(params.FullName)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	role, err := normalizeRole(params.Role)
	if err != nil {
		return nil, err
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           ID(id),
		Email:        email,
		Username:     username,
		FullName:     fullName,
		PasswordHash: params.PasswordHash,
		Role:         role,
		City:         strings.TrimSpace(params.City),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

type ProfileUpdate struct {
	FullName       *string
	City           *string
	Bio            *string
	ProfilePicture *string
}

func (u *User) ApplyProfile(update ProfileUpdate, now time.Time) error {
	if update.FullName != nil {
		trimmed := strings.TrimSpace(*update.FullName)
		if trimmed == "" {
			return ErrFullNameRequired
		}
		u.FullName = trimmed
	}
	if update.City != nil {
		u.City = strings.TrimSpace(*update.City)
	}
	if update.Bio != nil {
		u.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.ProfilePicture != nil {
		u.ProfilePicture = strings.TrimSpace(*update.ProfilePicture)
	}
	u.touch(now)
	return nil
}

func (u *User) SetPasswordHash(hash string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	u.PasswordHash = hash
	u.touch(now)
	return nil
}

// SetResetToken records a pending password-reset token with its expiry.
func (u *User) SetResetToken(token string, expires time.Time, now time.Time) {
	u.ResetToken = token
	u.ResetExpires = expires.UTC()
	u.touch(now)
}

func (u *User) ClearResetToken(now time.Time) {
	u.ResetToken = ""
	u.ResetExpires = time.Time{}
	u.touch(now)
}

// Deactivate soft-deletes the account.
func (u *User) Deactivate(now time.Time) {
	u.Active = false
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
}

func normalizeRole(role Role) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(string(role)))) {
	case RoleStudent, "":
		return RoleStudent, nil
	case RoleMentor:
		return RoleMentor, nil
	default:
		return "", ErrInvalidRole
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
