package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BBMRI-cz/fhir-place/internal/security"
)

func TestAuthService_AuthenticateUser(t *testing.T) {
	store := newFakeUserStore()
	accounts := newTestAccounts(store)
	id := createAlice(t, accounts)
	auth := NewAuthService(accounts, zerolog.Nop())

	user, err := auth.AuthenticateUser(context.Background(), "alice", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
}

func TestAuthService_AuthenticateUser_Conflation(t *testing.T) {
	store := newFakeUserStore()
	accounts := newTestAccounts(store)
	createAlice(t, accounts)
	auth := NewAuthService(accounts, zerolog.Nop())

	_, unknownErr := auth.AuthenticateUser(context.Background(), "mallory", "Secret123!")
	_, wrongErr := auth.AuthenticateUser(context.Background(), "alice", "Secret124!")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAuthService_AuthenticateUser_Inactive(t *testing.T) {
	store := newFakeUserStore()
	accounts := newTestAccounts(store)
	id := createAlice(t, accounts)
	require.NoError(t, accounts.SetActive(context.Background(), id, false))
	auth := NewAuthService(accounts, zerolog.Nop())

	_, err := auth.AuthenticateUser(context.Background(), "alice", "Secret123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_AuthenticateUser_StoreFailure(t *testing.T) {
	store := newFakeUserStore()
	accounts := newTestAccounts(store)
	createAlice(t, accounts)
	store.err = errors.New("timeout")
	auth := NewAuthService(accounts, zerolog.Nop())

	_, err := auth.AuthenticateUser(context.Background(), "alice", "Secret123!")

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, store.err)
}

func TestAuthService_AuthenticateUser_CorruptHash(t *testing.T) {
	store := newFakeUserStore()
	accounts := newTestAccounts(store)
	id := createAlice(t, accounts)
	u := store.users[id]
	u.PasswordHash = []byte("garbage")
	store.users[id] = u
	auth := NewAuthService(accounts, zerolog.Nop())

	_, err := auth.AuthenticateUser(context.Background(), "alice", "Secret123!")

	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestAuthService_AuthenticateUser_UnknownUserPaysHashCompare(t *testing.T) {
	store := newFakeUserStore()
	accounts := newTestAccounts(store)
	createAlice(t, accounts)
	auth := NewAuthService(accounts, zerolog.Nop())

	var compared [][]byte
	auth.verify = func(password string, hash []byte) (bool, error) {
		compared = append(compared, hash)
		return security.VerifyPassword(password, hash)
	}

	_, err := auth.AuthenticateUser(context.Background(), "mallory", "Secret123!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.AuthenticateUser(context.Background(), "alice", "Secret124!")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, compared, 2)
	unknownCost, err := bcrypt.Cost(compared[0])
	require.NoError(t, err)
	storedCost, err := bcrypt.Cost(compared[1])
	require.NoError(t, err)
	assert.Equal(t, storedCost, unknownCost)
}
