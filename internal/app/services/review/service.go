package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"campusx/internal/app/dto"
	domainreview "campusx/internal/domain/review"
	domainuser "campusx/internal/domain/user"
)

var (
	ErrNotReviewable = errors.New("review: reviews can only be written for mentors")
	ErrSelfReview    = errors.New("review: cannot review yourself")
	ErrDuplicate     = errors.New("review: you have already reviewed this profile")
	ErrForbidden     = errors.New("review: caller does not own this review")
)

// TransactionRunner executes fn inside a single transaction so the rating
// recompute is never visible apart from the review mutation that triggered
// it. A nil runner degrades to direct execution.
type TransactionRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	Reviews domainreview.Repository
	Users   domainuser.Repository
	Txn     TransactionRunner
}

type CreateParams struct {
	ProfileID domainuser.ID
	AuthorID  domainuser.ID
	Rating    int
	Message   string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainreview.Review, error) {
	profile, err := s.Users.ByID(ctx, params.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile.Role != domainuser.RoleMentor {
		return nil, ErrNotReviewable
	}
	if profile.ID == params.AuthorID {
		return nil, ErrSelfReview
	}
	if existing, err := s.Reviews.ByAuthorAndProfile(ctx, params.AuthorID, params.ProfileID); err == nil && existing != nil {
		return nil, ErrDuplicate
	} else if err != nil && !errors.Is(err, domainreview.ErrNotFound) {
		return nil, err
	}

	created, err := domainreview.New(domainreview.CreateParams{
		ID:        domainreview.ID(uuid.NewString()),
		ProfileID: params.ProfileID,
		AuthorID:  params.AuthorID,
		Rating:    params.Rating,
		Message:   params.Message,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	err = s.inTxn(ctx, func(ctx context.Context) error {
		if err := s.Reviews.Save(ctx, created); err != nil {
			return err
		}
		return s.recomputeRating(ctx, params.ProfileID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id domainreview.ID, callerID domainuser.ID, rating int, message string) (*domainreview.Review, error) {
	existing, err := s.Reviews.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != callerID {
		return nil, ErrForbidden
	}
	if err := existing.Update(rating, message, time.Now()); err != nil {
		return nil, err
	}
	err = s.inTxn(ctx, func(ctx context.Context) error {
		if err := s.Reviews.Save(ctx, existing); err != nil {
			return err
		}
		return s.recomputeRating(ctx, existing.ProfileID)
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id domainreview.ID, callerID domainuser.ID) error {
	existing, err := s.Reviews.ByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != callerID {
		return ErrForbidden
	}
	return s.inTxn(ctx, func(ctx context.Context) error {
		if err := s.Reviews.Delete(ctx, id); err != nil {
			return err
		}
		return s.recomputeRating(ctx, existing.ProfileID)
	})
}

func (s *Service) Get(ctx context.Context, id domainreview.ID) (dto.ReviewView, error) {
	r, err := s.Reviews.ByID(ctx, id)
	if err != nil {
		return dto.ReviewView{}, err
	}
	return s.view(ctx, r), nil
}

func (s *Service) List(ctx context.Context, filter domainreview.Filter) ([]dto.ReviewView, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	items, err := s.Reviews.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]dto.ReviewView, 0, len(items))
	for _, r := range items {
		views = append(views, s.view(ctx, r))
	}
	return views, nil
}

func (s *Service) view(ctx context.Context, r *domainreview.Review) dto.ReviewView {
	var profile, author *dto.UserSummary
	if u, err := s.Users.ByID(ctx, r.ProfileID); err == nil {
		profile = dto.MapUserSummary(u)
	}
	if u, err := s.Users.ByID(ctx, r.AuthorID); err == nil {
		author = dto.MapUserSummary(u)
	}
	return dto.MapReviewView(r, profile, author)
}

// recomputeRating stores the mean of all reviews for the profile rounded to
// one decimal, and the count; zero reviews reset both to zero.
func (s *Service) recomputeRating(ctx context.Context, profileID domainuser.ID) error {
	all, err := s.Reviews.List(ctx, domainreview.Filter{ProfileID: profileID, Limit: -1})
	if err != nil {
		return err
	}
	mean, total := domainreview.Mean(all)
	return s.Users.SetRating(ctx, profileID, mean, total)
}

func (s *Service) inTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.Txn == nil {
		return fn(ctx)
	}
	return s.Txn.WithinTransaction(ctx, fn)
}
