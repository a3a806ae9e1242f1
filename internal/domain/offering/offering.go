package offering

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusx/internal/domain/shared/day"
	"campusx/internal/domain/user"
)

var (
	ErrIDRequired          = errors.New("offering: id is required")
	ErrOwnerRequired       = errors.New("offering: owner is required")
	ErrTitleRequired       = errors.New("offering: title is required")
	ErrDescriptionRequired = errors.New("offering: description is required")
	ErrDurationRequired    = errors.New("offering: duration is required")
	ErrSlotsRequired       = errors.New("offering: at least one slot is required")
	ErrNotFound            = errors.New("offering: not found")
	// ErrOccurrenceTaken is returned when a (slot, day) pair is already held
	// by an approved booking. Store implementations must return it from the
	// atomic insert path so that losing a concurrent claim surfaces the same
	// error as failing the pre-check.
	ErrOccurrenceTaken = errors.New("offering: slot already booked for that day")
)

type ID string

// Occurrence is a (slot label, calendar day) pair held by an approved
// booking. It is the unit of contention.
type Occurrence struct {
	Slot string
	Day  day.Day
}

type Offering struct {
	ID             ID
	OwnerID        user.ID
	Title          string
	Description    string
	Tags           []string
	Slots          []string
	Duration       string
	Image          string
	CompletedCount int
	Booked         []Occurrence
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type SortBy string

const (
	SortByCreatedAt SortBy = "createdAt"
	SortByCompleted SortBy = "completedCount"
)

// Filter narrows List results. Tag and slot filters match when at least one
// element overlaps.
type Filter struct {
	OwnerID   user.ID
	Tags      []string
	Slots     []string
	Duration  string
	SortBy    SortBy
	Ascending bool
	Limit     int
	Offset    int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Offering, error)
	ByOwner(ctx context.Context, ownerID user.ID, limit, offset int) ([]*Offering, error)
	List(ctx context.Context, filter Filter) ([]*Offering, error)
	Save(ctx context.Context, offering *Offering) error
	Delete(ctx context.Context, id ID) error

	// AddOccurrence inserts the pair only if it is absent, atomically.
	// Returns ErrOccurrenceTaken when the pair is already held.
	AddOccurrence(ctx context.Context, id ID, occ Occurrence) error
	RemoveOccurrence(ctx context.Context, id ID, occ Occurrence) error
	// IncrementCompleted atomically bumps the completed-session counter.
	IncrementCompleted(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID          ID
	OwnerID     user.ID
	Title       string
	Description string
	Tags        []string
	Slots       []string
	Duration    string
	Image       string
	CreatedAt   time.Time
}

func New(params CreateParams) (*Offering, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	duration := strings.TrimSpace(params.Duration)
	if duration == "" {
		return nil, ErrDurationRequired
	}
	slots := normalizeLabels(params.Slots)
	if len(slots) == 0 {
		return nil, ErrSlotsRequired
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &Offering{
		ID:          ID(id),
		OwnerID:     params.OwnerID,
		Title:       title,
		Description: description,
		Tags:        normalizeLabels(params.Tags),
		Slots:       slots,
		Duration:    duration,
		Image:       strings.TrimSpace(params.Image),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// HasSlot reports whether the label is one of the declared slots.
func (o *Offering) HasSlot(label string) bool {
	label = strings.TrimSpace(label)
	for _, s := range o.Slots {
		if s == label {
			return true
		}
	}
	return false
}

// IsBooked reports whether the (slot, day) pair is currently held.
func (o *Offering) IsBooked(occ Occurrence) bool {
	for _, held := range o.Booked {
		if held.Slot == occ.Slot && held.Day == occ.Day {
			return true
		}
	}
	return false
}

type Update struct {
	Title       *string
	Description *string
	Tags        *[]string
	Slots       *[]string
	Duration    *string
	Image       *string
}

// ApplyUpdate mutates owner-editable fields. Booked occurrences and the
// completed counter are never touched here; only the booking engine mutates
// those.
func (o *Offering) ApplyUpdate(update Update, now time.Time) error {
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			return ErrTitleRequired
		}
		o.Title = trimmed
	}
	if update.Description != nil {
		trimmed := strings.TrimSpace(*update.Description)
		if trimmed == "" {
			return ErrDescriptionRequired
		}
		o.Description = trimmed
	}
	if update.Tags != nil {
		o.Tags = normalizeLabels(*update.Tags)
	}
	if update.Slots != nil {
		slots := normalizeLabels(*update.Slots)
		if len(slots) == 0 {
			return ErrSlotsRequired
		}
		o.Slots = slots
	}
	if update.Duration != nil {
		trimmed := strings.TrimSpace(*update.Duration)
		if trimmed == "" {
			return ErrDurationRequired
		}
		o.Duration = trimmed
	}
	if update.Image != nil {
		o.Image = strings.TrimSpace(*update.Image)
	}
	if now.IsZero() {
		now = time.Now()
	}
	o.UpdatedAt = now.UTC()
	return nil
}

func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
