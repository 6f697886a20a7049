// Package admin holds the operator tasks behind cmd/admin.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/models"
	"github.com/BBMRI-cz/fhir-place/internal/service"
)

const (
	DefaultAdminPassword = "Admin123!"
	testUserPassword     = "Test123!"
)

type Accounts interface {
	CreateUser(ctx context.Context, input service.CreateUserInput) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type SeedOptions struct {
	AdminPassword string
	WithTestUser  bool
}

// Seed creates the admin account and, when asked, a test account. Users
// that already exist are left untouched.
func Seed(ctx context.Context, accounts Accounts, opts SeedOptions, log zerolog.Logger) error {
	users := []service.CreateUserInput{{
		Username:  "admin",
		Password:  opts.AdminPassword,
		FirstName: "Admin",
		LastName:  "User",
		Email:     "admin@example.com",
	}}
	if opts.WithTestUser {
		users = append(users, service.CreateUserInput{
			Username:  "testuser",
			Password:  testUserPassword,
			FirstName: "Test",
			LastName:  "User",
			Email:     "test@example.com",
		})
	}

	for _, input := range users {
		created, err := ensureUser(ctx, accounts, input)
		if err != nil {
			return fmt.Errorf("seed %s: %w", input.Username, err)
		}
		if created {
			log.Info().Str("username", input.Username).Msg("seed user created")
		} else {
			log.Info().Str("username", input.Username).Msg("seed user already exists")
		}
	}
	return nil
}

func ensureUser(ctx context.Context, accounts Accounts, input service.CreateUserInput) (bool, error) {
	_, err := accounts.GetUserByUsername(ctx, input.Username)
	if err == nil {
		return false, nil
	}
	var notFound *service.UserNotFoundError
	if !errors.As(err, &notFound) {
		return false, err
	}

	if _, err := accounts.CreateUser(ctx, input); err != nil {
		return false, err
	}
	return true, nil
}

type SessionRevoker interface {
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// SetActive toggles the account by username. Deactivating also deletes the
// user's stored sessions.
func SetActive(ctx context.Context, accounts Accounts, sessions SessionRevoker, username string, active bool, log zerolog.Logger) error {
	user, err := accounts.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := accounts.SetActive(ctx, user.ID, active); err != nil {
		return err
	}
	if active {
		return nil
	}

	n, err := sessions.DeleteByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", username, err)
	}
	log.Info().Str("user_id", user.ID).Int64("sessions", n).Msg("user deactivated")
	return nil
}
