package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/models"
	"github.com/BBMRI-cz/fhir-place/internal/repository"
	"github.com/BBMRI-cz/fhir-place/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	UpdateDetails(ctx context.Context, id string, update repository.DetailsUpdate) error
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	SetActive(ctx context.Context, id string, active bool) error
}

type PasswordPolicy interface {
	Validate(password string) models.PasswordValidationResult
}

// AccountService is the only component that touches password hashes.
type AccountService struct {
	users    UserStore
	policy   PasswordPolicy
	log      zerolog.Logger
	hashCost int
	newID    func() string

	// dummyHash stands in for the stored hash of an unknown username.
	dummyHash func() []byte
}

type AccountOption func(*AccountService)

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) AccountOption {
	return func(s *AccountService) {
		s.hashCost = cost
	}
}

func NewAccountService(users UserStore, policy PasswordPolicy, log zerolog.Logger, opts ...AccountOption) *AccountService {
	s := &AccountService{
		users:    users,
		policy:   policy,
		log:      log,
		hashCost: security.PasswordHashCost,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash = sync.OnceValue(func() []byte {
		hash, err := security.HashPasswordWithCost(uuid.NewString(), s.hashCost)
		if err != nil {
			s.log.Error().Err(err).Msg("generate dummy password hash failed")
		}
		return hash
	})
	return s
}

type CreateUserInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

func (s *AccountService) CreateUser(ctx context.Context, input CreateUserInput) (models.User, error) {
	result := s.policy.Validate(input.Password)
	if !result.IsValid {
		return models.User{}, &UserCreationError{
			Username: input.Username,
			Err:      &PasswordPolicyError{Errors: result.Errors},
		}
	}

	passwordHash, err := security.HashPasswordWithCost(input.Password, s.hashCost)
	if err != nil {
		return models.User{}, &UserCreationError{Username: input.Username, Err: err}
	}

	created, err := s.users.Create(ctx, models.User{
		ID:           s.newID(),
		Username:     input.Username,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		IsActive:     true,
	})
	if err != nil {
		return models.User{}, &UserCreationError{Username: input.Username, Err: err}
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user created")
	return created, nil
}

func (s *AccountService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, lookupError("get user by id", id, err)
	}
	return user, nil
}

func (s *AccountService) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return models.User{}, lookupError("get user by username", username, err)
	}
	return user, nil
}

type UpdateDetailsInput struct {
	FirstName string
	LastName  string
	Email     string
}

// UpdateDetails writes only the fields that are non-empty after trimming.
// Nothing to write is a successful no-op.
func (s *AccountService) UpdateDetails(ctx context.Context, id string, input UpdateDetailsInput) error {
	var update repository.DetailsUpdate
	if v := strings.TrimSpace(input.FirstName); v != "" {
		update.FirstName = &v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		update.LastName = &v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		update.Email = &v
	}
	if err := s.users.UpdateDetails(ctx, id, update); err != nil {
		if errors.Is(err, repository.ErrNothingToUpdate) {
			return nil
		}
		return lookupError("update user details", id, err)
	}
	return nil
}

func (s *AccountService) ChangePassword(ctx context.Context, id string, current string, next string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(current, user.PasswordHash)
	if err != nil {
		return &AuthenticationError{Err: err}
	}
	if !ok {
		return ErrCurrentPasswordIncorrect
	}

	result := s.policy.Validate(next)
	if !result.IsValid {
		return &PasswordPolicyError{Errors: result.Errors}
	}

	passwordHash, err := security.HashPasswordWithCost(next, s.hashCost)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, id, passwordHash); err != nil {
		return lookupError("update password", id, err)
	}

	s.log.Info().Str("user_id", id).Msg("password changed")
	return nil
}

func (s *AccountService) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return lookupError("set user active", id, err)
	}
	return nil
}

func lookupError(op string, identifier string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return &UserNotFoundError{Identifier: identifier}
	}
	return &DatabaseError{Op: op, Err: err}
}
