package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BBMRI-cz/fhir-place/internal/repository"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell which one it was.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrSessionInvalid           = errors.New("session invalid")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
)

type UserNotFoundError struct {
	Identifier string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.Identifier)
}

func (e *UserNotFoundError) Unwrap() error {
	return repository.ErrUserNotFound
}

type UserCreationError struct {
	Username string
	Err      error
}

func (e *UserCreationError) Error() string {
	return fmt.Sprintf("failed to create user %s: %v", e.Username, e.Err)
}

func (e *UserCreationError) Unwrap() error {
	return e.Err
}

type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// PasswordPolicyError lists every rule the password broke.
type PasswordPolicyError struct {
	Errors []string
}

func (e *PasswordPolicyError) Error() string {
	return strings.Join(e.Errors, ", ")
}
