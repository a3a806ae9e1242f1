package booking

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"campusx/internal/domain/offering"
	"campusx/internal/domain/shared/day"
	"campusx/internal/domain/user"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrReasonRequired    = errors.New("booking: cancellation reason is required")
	ErrReasonTooLong     = errors.New("booking: cancellation reason exceeds 500 characters")
)

// MaxReasonLength bounds the free-text cancellation reason.
const MaxReasonLength = 500

type ID string

type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a wire-format status value.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusRequested:
		return StatusRequested, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", errors.New("booking: unknown status")
	}
}

// Terminal statuses permit no further transition.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// Active statuses count toward the duplicate-request guard.
func (s Status) Active() bool {
	return s == StatusRequested || s == StatusApproved
}

// CanTransition encodes the tightened state machine:
// requested -> approved | rejected | cancelled
// approved  -> rejected | completed | cancelled
// rejected, cancelled, completed are terminal.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusRequested:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusRejected || to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

type Booking struct {
	ID          ID
	RequesterID user.ID
	OfferingID  offering.ID
	// OwnerID mirrors the offering's owner at creation time. It exists for
	// querying only; authorization always re-derives ownership from the
	// offering record.
	OwnerID            user.ID
	Slot               string
	Day                day.Day
	Status             Status
	CancelledBy        user.ID
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Occurrence returns the (slot, day) pair this booking contends for.
func (b *Booking) Occurrence() offering.Occurrence {
	return offering.Occurrence{Slot: b.Slot, Day: b.Day}
}

// Transition applies a status change after checking the state machine.
func (b *Booking) Transition(to Status, now time.Time) error {
	if !b.Status.CanTransition(to) {
		return ErrInvalidTransition
	}
	b.Status = to
	b.touch(now)
	return nil
}

// MarkCancelled records the canceller and reason alongside the transition.
func (b *Booking) MarkCancelled(by user.ID, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	if err := b.Transition(StatusCancelled, now); err != nil {
		return err
	}
	b.CancelledBy = by
	b.CancellationReason = reason
	return nil
}

func (b *Booking) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	b.UpdatedAt = now.UTC()
}

// Query is the structured descriptor for filtered listing. Zero values mean
// "any". Results are always ordered by creation time, newest first.
type Query struct {
	RequesterID user.ID
	OfferingID  offering.ID
	OwnerID     user.ID
	Statuses    []Status
	Limit       int
	Offset      int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Normalized clamps pagination to the configured bounds.
func (q Query) Normalized() Query {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Matches reports whether a booking satisfies the descriptor's predicates.
func (q Query) Matches(b *Booking) bool {
	if q.RequesterID != "" && b.RequesterID != q.RequesterID {
		return false
	}
	if q.OfferingID != "" && b.OfferingID != q.OfferingID {
		return false
	}
	if q.OwnerID != "" && b.OwnerID != q.OwnerID {
		return false
	}
	if len(q.Statuses) > 0 {
		found := false
		for _, s := range q.Statuses {
			if b.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id ID) error
	List(ctx context.Context, query Query) ([]*Booking, error)
	// ExistsActive reports whether the requester already holds a requested
	// or approved booking for the same offering, slot and day.
	ExistsActive(ctx context.Context, requesterID user.ID, offeringID offering.ID, occ offering.Occurrence) (bool, error)
}
