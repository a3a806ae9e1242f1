package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusx/internal/app/dto"
	"campusx/internal/app/policies"
	domainbooking "campusx/internal/domain/booking"
	domainoffering "campusx/internal/domain/offering"
	"campusx/internal/domain/shared/day"
	domainuser "campusx/internal/domain/user"
)

var (
	ErrOwnBooking       = errors.New("booking: cannot book your own offering")
	ErrUnknownSlot      = errors.New("booking: slot is not declared by the offering")
	ErrPastDate         = errors.New("booking: date must not be in the past")
	ErrDuplicateRequest = errors.New("booking: an active booking for this slot and date already exists")
	ErrForbidden        = errors.New("booking: caller has no authority over this booking")
	ErrBookingActive    = errors.New("booking: cannot delete a booking that holds or held a slot")
)

// Coin rewards and penalties applied by the lifecycle transitions.
const (
	OwnerCompletionReward     int64 = 300
	RequesterCompletionReward int64 = 100
	CancellationPenalty       int64 = 100
)

// Service owns the booking lifecycle: creation checks, status transitions
// with their offering and ledger side effects, cancellation and deletion.
type Service struct {
	Bookings  domainbooking.Repository
	Offerings domainoffering.Repository
	Users     domainuser.Repository
	Notifier  policies.Notifier
	Logger    *slog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

type CreateParams struct {
	RequesterID domainuser.ID
	OfferingID  domainoffering.ID
	Slot        string
	Date        string
}

// Create runs the ordered admission checks and persists a requested booking.
// No offering or ledger mutation happens here; only approval commits the
// slot.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domainbooking.Booking, error) {
	off, err := s.Offerings.ByID(ctx, params.OfferingID)
	if err != nil {
		return nil, err
	}
	if off.OwnerID == params.RequesterID {
		return nil, ErrOwnBooking
	}
	slot := strings.TrimSpace(params.Slot)
	if !off.HasSlot(slot) {
		return nil, ErrUnknownSlot
	}
	requested, err := day.Parse(params.Date)
	if err != nil {
		return nil, err
	}
	if requested.Before(day.FromTime(s.now())) {
		return nil, ErrPastDate
	}
	occ := domainoffering.Occurrence{Slot: slot, Day: requested}
	if off.IsBooked(occ) {
		return nil, domainoffering.ErrOccurrenceTaken
	}
	exists, err := s.Bookings.ExistsActive(ctx, params.RequesterID, off.ID, occ)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateRequest
	}

	now := s.now().UTC()
	b := &domainbooking.Booking{
		ID:          domainbooking.ID(uuid.NewString()),
		RequesterID: params.RequesterID,
		OfferingID:  off.ID,
		OwnerID:     off.OwnerID,
		Slot:        slot,
		Day:         requested,
		Status:      domainbooking.StatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, policies.EventBookingRequested, b)
	return b, nil
}

// ChangeStatus applies an owner-side transition (approved, rejected or
// completed) with its side effects. Ownership is re-derived from the
// offering record; the denormalized owner field on the booking is never
// trusted for authorization.
func (s *Service) ChangeStatus(ctx context.Context, id domainbooking.ID, callerID domainuser.ID, target domainbooking.Status) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	off, err := s.Offerings.ByID(ctx, b.OfferingID)
	if err != nil {
		return nil, err
	}
	if off.OwnerID != callerID {
		return nil, ErrForbidden
	}
	switch target {
	case domainbooking.StatusApproved, domainbooking.StatusRejected, domainbooking.StatusCompleted:
	default:
		return nil, domainbooking.ErrInvalidTransition
	}
	if !b.Status.CanTransition(target) {
		return nil, domainbooking.ErrInvalidTransition
	}

	prior := b.Status
	switch target {
	case domainbooking.StatusApproved:
		// The store insert is conditional; losing a concurrent claim for
		// the same pair surfaces the same error as the pre-check.
		if err := s.Offerings.AddOccurrence(ctx, off.ID, b.Occurrence()); err != nil {
			return nil, err
		}
	case domainbooking.StatusRejected:
		if prior == domainbooking.StatusApproved {
			if err := s.Offerings.RemoveOccurrence(ctx, off.ID, b.Occurrence()); err != nil {
				return nil, err
			}
		}
	case domainbooking.StatusCompleted:
		if err := s.Offerings.IncrementCompleted(ctx, off.ID); err != nil {
			return nil, err
		}
		if err := s.Users.CreditCoins(ctx, off.OwnerID, OwnerCompletionReward); err != nil {
			return nil, fmt.Errorf("credit owner: %w", err)
		}
		if err := s.Users.CreditCoins(ctx, b.RequesterID, RequesterCompletionReward); err != nil {
			return nil, fmt.Errorf("credit requester: %w", err)
		}
	}

	if err := b.Transition(target, s.now()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, eventForStatus(target), b)
	return b, nil
}

// Cancel is available to the requester and to the offering owner. A booking
// cancelled after approval frees its slot and debits the canceller by a
// fixed penalty, floored at zero. A never-approved booking is cancelled
// without any slot or ledger mutation.
func (s *Service) Cancel(ctx context.Context, id domainbooking.ID, callerID domainuser.ID, reason string) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	off, err := s.Offerings.ByID(ctx, b.OfferingID)
	if err != nil {
		return nil, err
	}
	if b.RequesterID != callerID && off.OwnerID != callerID {
		return nil, ErrForbidden
	}

	prior := b.Status
	if err := b.MarkCancelled(callerID, reason, s.now()); err != nil {
		return nil, err
	}
	if prior == domainbooking.StatusApproved {
		if err := s.Offerings.RemoveOccurrence(ctx, off.ID, b.Occurrence()); err != nil {
			return nil, err
		}
		if err := s.Users.DebitCoinsClamped(ctx, callerID, CancellationPenalty); err != nil {
			return nil, fmt.Errorf("debit canceller: %w", err)
		}
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, policies.EventBookingCancelled, b)
	return b, nil
}

// Delete hard-removes a booking. Only the original requester may delete,
// and only while the booking holds no slot: approved and completed bookings
// are refused so a hard delete can never orphan a confirmed occurrence.
func (s *Service) Delete(ctx context.Context, id domainbooking.ID, callerID domainuser.ID) error {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return err
	}
	if b.RequesterID != callerID {
		return ErrForbidden
	}
	switch b.Status {
	case domainbooking.StatusApproved, domainbooking.StatusCompleted:
		return ErrBookingActive
	}
	return s.Bookings.Delete(ctx, id)
}

// Get returns a single booking enriched with requester, owner and offering
// summaries.
func (s *Service) Get(ctx context.Context, id domainbooking.ID) (dto.BookingView, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return dto.BookingView{}, err
	}
	views, err := s.enrich(ctx, []*domainbooking.Booking{b})
	if err != nil {
		return dto.BookingView{}, err
	}
	return views[0], nil
}

// GetFor is Get restricted to the booking's two parties. The owner side is
// re-derived from the offering; the stored owner copy never grants access.
func (s *Service) GetFor(ctx context.Context, id domainbooking.ID, viewerID domainuser.ID) (dto.BookingView, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return dto.BookingView{}, err
	}
	if b.RequesterID != viewerID {
		off, err := s.Offerings.ByID(ctx, b.OfferingID)
		if err != nil {
			return dto.BookingView{}, err
		}
		if off.OwnerID != viewerID {
			return dto.BookingView{}, ErrForbidden
		}
	}
	views, err := s.enrich(ctx, []*domainbooking.Booking{b})
	if err != nil {
		return dto.BookingView{}, err
	}
	return views[0], nil
}

// List returns bookings matching the query descriptor, newest first,
// enriched with referenced identity and offering summaries.
func (s *Service) List(ctx context.Context, query domainbooking.Query) ([]dto.BookingView, error) {
	items, err := s.Bookings.List(ctx, query.Normalized())
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, items)
}

func (s *Service) enrich(ctx context.Context, items []*domainbooking.Booking) ([]dto.BookingView, error) {
	users := make(map[domainuser.ID]*domainuser.User)
	offerings := make(map[domainoffering.ID]*domainoffering.Offering)

	lookupUser := func(id domainuser.ID) *domainuser.User {
		if id == "" {
			return nil
		}
		if u, ok := users[id]; ok {
			return u
		}
		u, err := s.Users.ByID(ctx, id)
		if err != nil {
			users[id] = nil
			return nil
		}
		users[id] = u
		return u
	}

	views := make([]dto.BookingView, 0, len(items))
	for _, b := range items {
		off, ok := offerings[b.OfferingID]
		if !ok {
			loaded, err := s.Offerings.ByID(ctx, b.OfferingID)
			if err != nil {
				loaded = nil
			}
			offerings[b.OfferingID] = loaded
			off = loaded
		}
		views = append(views, dto.MapBookingView(b, lookupUser(b.RequesterID), lookupUser(b.OwnerID), lookupUser(b.CancelledBy), off))
	}
	return views, nil
}

func (s *Service) publish(ctx context.Context, name string, b *domainbooking.Booking) {
	if s.Notifier == nil {
		return
	}
	event := policies.Event{
		Name: name,
		Key:  string(b.OfferingID),
		Payload: map[string]any{
			"booking_id":   string(b.ID),
			"offering_id":  string(b.OfferingID),
			"requester_id": string(b.RequesterID),
			"owner_id":     string(b.OwnerID),
			"slot":         b.Slot,
			"date":         b.Day.String(),
			"status":       string(b.Status),
		},
	}
	if err := s.Notifier.Publish(ctx, event); err != nil && s.Logger != nil {
		s.Logger.Warn("booking event publish failed", "event", name, "booking_id", b.ID, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func eventForStatus(status domainbooking.Status) string {
	switch status {
	case domainbooking.StatusApproved:
		return policies.EventBookingApproved
	case domainbooking.StatusRejected:
		return policies.EventBookingRejected
	case domainbooking.StatusCompleted:
		return policies.EventBookingCompleted
	default:
		return policies.EventBookingCancelled
	}
}
