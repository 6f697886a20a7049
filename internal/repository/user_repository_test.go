package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BBMRI-cz/fhir-place/internal/models"
)

var userRowColumns = []string{
	"id", "username", "password_hash", "first_name", "last_name", "email", "is_active", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u-1", "alice", "hash", "Alice", "Smith", "alice@example.org", true).
		WillReturnRows(mock.NewRows(userRowColumns).
			AddRow("u-1", "alice", "hash", "Alice", "Smith", "alice@example.org", true, now, now))

	user, err := repo.Create(context.Background(), models.User{
		ID:           "u-1",
		Username:     "alice",
		PasswordHash: []byte("hash"),
		FirstName:    "Alice",
		LastName:     "Smith",
		Email:        "alice@example.org",
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, []byte("hash"), user.PasswordHash)
	assert.True(t, user.IsActive)
}

func TestUserRepository_Create_UsernameTaken(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (username) DO NOTHING")).
		WithArgs(pgxmock.AnyArg(), "alice", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Create(context.Background(), models.User{ID: "u-2", Username: "alice"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserRepository_Create_ConflictReturnsNoRow(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (username) DO NOTHING")).
		WithArgs("u-3", "alice", "hash", "", "", "", true).
		WillReturnRows(mock.NewRows(userRowColumns))

	_, err := repo.Create(context.Background(), models.User{ID: "u-3", Username: "alice", PasswordHash: []byte("hash"), IsActive: true})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("admin").
		WillReturnRows(mock.NewRows(userRowColumns).
			AddRow("u-1", "admin", "hash", "Admin", "User", "", true, now, now))

	user, err := repo.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "", user.Email)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_GetByID_DriverError(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("u-1").
		WillReturnError(boom)

	_, err := repo.GetByID(context.Background(), "u-1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_UpdateDetails(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	first := "Alicia"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs("u-1", &first, (*string)(nil), (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateDetails(context.Background(), "u-1", DetailsUpdate{FirstName: &first})
	require.NoError(t, err)
}

func TestUserRepository_UpdateDetails_Empty(t *testing.T) {
	repo := NewUserRepository(newMock(t))

	err := repo.UpdateDetails(context.Background(), "u-1", DetailsUpdate{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password_hash = $2")).
		WithArgs("missing", "new-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePassword(context.Background(), "missing", []byte("new-hash"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_SetActive(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active = $2")).
		WithArgs("u-1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetActive(context.Background(), "u-1", false))
}
