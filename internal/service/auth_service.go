package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/models"
	"github.com/BBMRI-cz/fhir-place/internal/security"
)

type AuthService struct {
	accounts *AccountService
	log      zerolog.Logger
	verify   func(password string, hash []byte) (bool, error)
}

func NewAuthService(accounts *AccountService, log zerolog.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		log:      log,
		verify:   security.VerifyPassword,
	}
}

// AuthenticateUser returns ErrInvalidCredentials for an unknown user, a
// wrong password or a deactivated account, and *AuthenticationError for
// anything unexpected.
func (s *AuthService) AuthenticateUser(ctx context.Context, username string, password string) (models.User, error) {
	user, err := s.accounts.GetUserByUsername(ctx, username)
	if err != nil {
		var notFound *UserNotFoundError
		if errors.As(err, &notFound) {
			// Same bcrypt work as a wrong password, so timing does not
			// reveal whether the account exists.
			_, _ = s.verify(password, s.accounts.dummyHash())
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, &AuthenticationError{Err: err}
	}

	ok, err := s.verify(password, user.PasswordHash)
	if err != nil {
		return models.User{}, &AuthenticationError{Err: err}
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.log.Info().Str("user_id", user.ID).Msg("login attempt for inactive user")
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}
