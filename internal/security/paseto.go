package security

import (
	"crypto/sha256"
	"fmt"

	"aidanwoods.dev/go-paseto"
)

// PasetoCodec issues v4.local tokens. The symmetric key is derived from the
// configured secret so both codecs share one setting.
type PasetoCodec struct {
	key paseto.V4SymmetricKey
}

func NewPasetoCodec(secret string) (*PasetoCodec, error) {
	sum := sha256.Sum256([]byte(secret))
	key, err := paseto.V4SymmetricKeyFromBytes(sum[:])
	if err != nil {
		return nil, fmt.Errorf("paseto key: %w", err)
	}
	return &PasetoCodec{key: key}, nil
}

func (c *PasetoCodec) Encode(claims SessionClaims) (string, error) {
	token := paseto.NewToken()
	token.SetIssuedAt(claims.IssuedAt)
	token.SetExpiration(claims.ExpiresAt)
	token.SetSubject(claims.UserID)
	token.SetJti(claims.SessionID)

	return token.V4Encrypt(c.key, nil), nil
}

func (c *PasetoCodec) Decode(tokenStr string) (SessionClaims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(c.key, tokenStr, nil)
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := token.GetSubject()
	if err != nil || userID == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	sessionID, err := token.GetJti()
	if err != nil || sessionID == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return SessionClaims{}, ErrInvalidToken
	}
	expiresAt, err := token.GetExpiration()
	if err != nil {
		return SessionClaims{}, ErrInvalidToken
	}

	return SessionClaims{
		UserID:    userID,
		SessionID: sessionID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
