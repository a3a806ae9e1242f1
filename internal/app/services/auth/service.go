package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"campusx/internal/app/policies"
	domainuser "campusx/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 6 characters")
	ErrAccountInactive    = errors.New("auth: account is deactivated")
	ErrResetTokenInvalid  = errors.New("auth: invalid or expired reset token")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(userID, role string, now time.Time) (string, error)
}

type ResetTokenGenerator interface {
	NewToken() (string, error)
}

const resetTokenTTL = time.Hour

type Service struct {
	Users       domainuser.Repository
	Passwords   PasswordHasher
	Tokens      TokenIssuer
	ResetTokens ResetTokenGenerator
	Notifier    policies.Notifier
	Logger      *slog.Logger
}

type RegisterParams struct {
	Email    string
	Username string
	FullName string
	Password string
	Role     string
	City     string
}

type LoginParams struct {
	Email    string
	Username string
	Password string
}

type AuthResult struct {
	User  *domainuser.User
	Token string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	account, err := domainuser.New(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        params.Email,
		Username:     params.Username,
		FullName:     params.FullName,
		PasswordHash: hash,
		Role:         domainuser.Role(params.Role),
		City:         params.City,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, account); err != nil {
		return nil, err
	}
	token, err := s.Tokens.Issue(string(account.ID), string(account.Role), time.Now())
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", account.ID, "username", account.Username, "role", account.Role)
	}
	return &AuthResult{User: account, Token: token}, nil
}

// Login accepts either an email or a username.
func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	var (
		account *domainuser.User
		err     error
	)
	switch {
	case strings.TrimSpace(params.Email) != "":
		account, err = s.Users.ByEmail(ctx, domainuser.NormalizeEmail(params.Email))
	case strings.TrimSpace(params.Username) != "":
		account, err = s.Users.ByUsername(ctx, strings.TrimSpace(params.Username))
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.Active {
		return nil, ErrAccountInactive
	}
	if err := s.Passwords.Compare(account.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.Tokens.Issue(string(account.ID), string(account.Role), time.Now())
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", account.ID)
	}
	return &AuthResult{User: account, Token: token}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID domainuser.ID, current, next string) error {
	account, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Passwords.Compare(account.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}
	if err := s.validatePassword(next); err != nil {
		return err
	}
	hash, err := s.Passwords.Hash(next)
	if err != nil {
		return err
	}
	if err := account.SetPasswordHash(hash, time.Now()); err != nil {
		return err
	}
	return s.Users.Save(ctx, account)
}

// ForgotPassword issues a reset token and hands it to the notifier. A
// missing account is not revealed to the caller.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.Users.ByEmail(ctx, domainuser.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil
		}
		return err
	}
	token, err := s.ResetTokens.NewToken()
	if err != nil {
		return err
	}
	now := time.Now()
	account.SetResetToken(token, now.Add(resetTokenTTL), now)
	if err := s.Users.Save(ctx, account); err != nil {
		return err
	}
	if s.Notifier != nil {
		event := policies.Event{
			Name: policies.EventPasswordReset,
			Key:  string(account.ID),
			Payload: map[string]any{
				"user_id":     string(account.ID),
				"email":       account.Email,
				"full_name":   account.FullName,
				"reset_token": token,
			},
		}
		if err := s.Notifier.Publish(ctx, event); err != nil {
			// Without a delivered token the stored one is useless.
			account.ClearResetToken(time.Now())
			_ = s.Users.Save(ctx, account)
			return err
		}
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, next string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrResetTokenInvalid
	}
	account, err := s.Users.ByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	now := time.Now()
	if !account.ResetExpires.After(now) {
		return ErrResetTokenInvalid
	}
	if err := s.validatePassword(next); err != nil {
		return err
	}
	hash, err := s.Passwords.Hash(next)
	if err != nil {
		return err
	}
	if err := account.SetPasswordHash(hash, now); err != nil {
		return err
	}
	account.ClearResetToken(now)
	return s.Users.Save(ctx, account)
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}
