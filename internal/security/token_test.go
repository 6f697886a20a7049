package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testClaims(ttl time.Duration) SessionClaims {
	now := time.Now().Truncate(time.Second)
	return SessionClaims{
		UserID:    "0b9f5f0e-1a2b-4c3d-8e9f-0a1b2c3d4e5f",
		SessionID: "2Hk0dZqTQq5X7y9N1p3yZy0a1Bc",
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func codecs(t *testing.T, secret string) map[string]TokenCodec {
	t.Helper()

	jwtCodec, err := NewTokenCodec("jwt", secret)
	require.NoError(t, err)
	pasetoCodec, err := NewTokenCodec("paseto", secret)
	require.NoError(t, err)

	return map[string]TokenCodec{"jwt": jwtCodec, "paseto": pasetoCodec}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	for name, codec := range codecs(t, "secret-one") {
		codec := codec
		t.Run(name, func(t *testing.T) {
			claims := testClaims(time.Hour)

			token, err := codec.Encode(claims)
			require.NoError(t, err)

			got, err := codec.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, claims.UserID, got.UserID)
			assert.Equal(t, claims.SessionID, got.SessionID)
			assert.True(t, claims.ExpiresAt.Equal(got.ExpiresAt))
		})
	}
}

func TestTokenCodec_RejectsForeignSecret(t *testing.T) {
	signers := codecs(t, "secret-one")
	verifiers := codecs(t, "secret-two")

	for name := range signers {
		name := name
		t.Run(name, func(t *testing.T) {
			token, err := signers[name].Encode(testClaims(time.Hour))
			require.NoError(t, err)

			_, err = verifiers[name].Decode(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenCodec_RejectsExpired(t *testing.T) {
	for name, codec := range codecs(t, "secret-one") {
		codec := codec
		t.Run(name, func(t *testing.T) {
			claims := testClaims(-time.Minute)
			claims.IssuedAt = claims.ExpiresAt.Add(-time.Hour)

			token, err := codec.Encode(claims)
			require.NoError(t, err)

			_, err = codec.Decode(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenCodec_RejectsTampered(t *testing.T) {
	for name, codec := range codecs(t, "secret-one") {
		codec := codec
		t.Run(name, func(t *testing.T) {
			token, err := codec.Encode(testClaims(time.Hour))
			require.NoError(t, err)

			i := len(token) / 2
			if token[i] == '.' {
				i++
			}
			replacement := byte('A')
			if token[i] == 'A' {
				replacement = 'B'
			}
			tampered := token[:i] + string(replacement) + token[i+1:]

			_, err = codec.Decode(tampered)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewTokenCodec_UnknownFormat(t *testing.T) {
	_, err := NewTokenCodec("saml", "secret")
	assert.Error(t, err)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("Admin123!", bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword("Admin123!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("admin123!", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("Admin123!", []byte("not-a-bcrypt-hash"))
	assert.Error(t, err)
}
