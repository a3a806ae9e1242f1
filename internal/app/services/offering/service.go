package offering

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainoffering "campusx/internal/domain/offering"
	domainuser "campusx/internal/domain/user"
)

var ErrForbidden = errors.New("offering: caller does not own this offering")

// Service covers owner CRUD over offerings. Booked occurrences and the
// completed counter are mutated only by the booking engine.
type Service struct {
	Offerings domainoffering.Repository
}

type CreateParams struct {
	OwnerID     domainuser.ID
	Title       string
	Description string
	Tags        []string
	Slots       []string
	Duration    string
	Image       string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainoffering.Offering, error) {
	off, err := domainoffering.New(domainoffering.CreateParams{
		ID:          domainoffering.ID(uuid.NewString()),
		OwnerID:     params.OwnerID,
		Title:       params.Title,
		Description: params.Description,
		Tags:        params.Tags,
		Slots:       params.Slots,
		Duration:    params.Duration,
		Image:       params.Image,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Offerings.Save(ctx, off); err != nil {
		return nil, err
	}
	return off, nil
}

func (s *Service) Get(ctx context.Context, id domainoffering.ID) (*domainoffering.Offering, error) {
	return s.Offerings.ByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domainoffering.Filter) ([]*domainoffering.Offering, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.Offerings.List(ctx, filter)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID domainuser.ID, limit, offset int) ([]*domainoffering.Offering, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.Offerings.ByOwner(ctx, ownerID, limit, offset)
}

func (s *Service) Update(ctx context.Context, id domainoffering.ID, callerID domainuser.ID, update domainoffering.Update) (*domainoffering.Offering, error) {
	off, err := s.Offerings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if off.OwnerID != callerID {
		return nil, ErrForbidden
	}
	if err := off.ApplyUpdate(update, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Offerings.Save(ctx, off); err != nil {
		return nil, err
	}
	return off, nil
}

func (s *Service) Delete(ctx context.Context, id domainoffering.ID, callerID domainuser.ID) error {
	off, err := s.Offerings.ByID(ctx, id)
	if err != nil {
		return err
	}
	if off.OwnerID != callerID {
		return ErrForbidden
	}
	return s.Offerings.Delete(ctx, id)
}
