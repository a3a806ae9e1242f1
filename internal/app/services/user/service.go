package user

import (
	"context"
	"time"

	domainuser "campusx/internal/domain/user"
)

// Service covers profile reads and owner-side account mutations. Ledger and
// rating writes go through the booking and review engines, never here.
type Service struct {
	Users domainuser.Repository
}

func (s *Service) Get(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return s.Users.ByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	return s.Users.ByUsername(ctx, username)
}

func (s *Service) List(ctx context.Context, filter domainuser.Filter) ([]*domainuser.User, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.Users.List(ctx, filter)
}

func (s *Service) UpdateProfile(ctx context.Context, id domainuser.ID, update domainuser.ProfileUpdate) (*domainuser.User, error) {
	account, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.ApplyProfile(update, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Deactivate soft-deletes the account; records stay referenced by bookings
// and reviews.
func (s *Service) Deactivate(ctx context.Context, id domainuser.ID) error {
	account, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	account.Deactivate(time.Now())
	return s.Users.Save(ctx, account)
}
