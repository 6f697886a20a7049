package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is what a session cookie carries. SessionID is the sessions
// row id for the database strategy and a revocable token id for the
// stateless one.
type SessionClaims struct {
	UserID    string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenCodec interface {
	Encode(claims SessionClaims) (string, error)
	Decode(token string) (SessionClaims, error)
}

func NewTokenCodec(format string, secret string) (TokenCodec, error) {
	switch format {
	case "", "jwt":
		return NewJWTCodec(secret), nil
	case "paseto":
		return NewPasetoCodec(secret)
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}

type jwtClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type JWTCodec struct {
	secret []byte
}

func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{secret: []byte(secret)}
}

func (c *JWTCodec) Encode(claims SessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwtClaims{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			Subject:   claims.UserID,
			ID:        claims.SessionID,
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func (c *JWTCodec) Decode(tokenStr string) (SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.UserID == "" || claims.SessionID == "" {
		return SessionClaims{}, ErrInvalidToken
	}

	out := SessionClaims{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
