package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/BBMRI-cz/fhir-place/internal/config"
	"github.com/BBMRI-cz/fhir-place/internal/models"
	"github.com/BBMRI-cz/fhir-place/internal/repository"
	"github.com/BBMRI-cz/fhir-place/internal/security"
)

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type SessionConfig struct {
	Strategy string
	TTL      time.Duration
}

type IssuedSession struct {
	Token  string
	Claims security.SessionClaims
}

// SessionService issues and checks session tokens. With the database
// strategy every token is backed by a sessions row; with the jwt strategy
// tokens are stateless and logout goes through the denylist.
type SessionService struct {
	codec    security.TokenCodec
	sessions SessionStore
	denylist TokenDenylist
	accounts *AccountService
	cfg      SessionConfig
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func NewSessionService(
	codec security.TokenCodec,
	sessions SessionStore,
	denylist TokenDenylist,
	accounts *AccountService,
	cfg SessionConfig,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		codec:    codec,
		sessions: sessions,
		denylist: denylist,
		accounts: accounts,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		newID:    func() string { return ksuid.New().String() },
	}
}

func (s *SessionService) stateful() bool {
	return s.cfg.Strategy != config.SessionStrategyJWT
}

func (s *SessionService) TTL() time.Duration {
	return s.cfg.TTL
}

func (s *SessionService) Issue(ctx context.Context, user models.User) (IssuedSession, error) {
	now := s.now()
	claims := security.SessionClaims{
		UserID:    user.ID,
		SessionID: s.newID(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}

	if s.stateful() {
		if err := s.sessions.Create(ctx, models.Session{
			ID:        claims.SessionID,
			UserID:    user.ID,
			ExpiresAt: claims.ExpiresAt,
		}); err != nil {
			return IssuedSession{}, fmt.Errorf("create session: %w", err)
		}
	}

	token, err := s.codec.Encode(claims)
	if err != nil {
		return IssuedSession{}, err
	}

	s.log.Debug().Str("user_id", user.ID).Str("session_id", claims.SessionID).Msg("session issued")
	return IssuedSession{Token: token, Claims: claims}, nil
}

// Validate resolves a token to its user. Any reason to distrust the token
// yields ErrSessionInvalid; storage failures come back wrapped.
func (s *SessionService) Validate(ctx context.Context, token string) (models.User, security.SessionClaims, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return models.User{}, security.SessionClaims{}, ErrSessionInvalid
	}

	if s.stateful() {
		session, err := s.sessions.GetByID(ctx, claims.SessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return models.User{}, security.SessionClaims{}, ErrSessionInvalid
			}
			return models.User{}, security.SessionClaims{}, fmt.Errorf("load session: %w", err)
		}
		if session.UserID != claims.UserID || session.Expired(s.now()) {
			return models.User{}, security.SessionClaims{}, ErrSessionInvalid
		}
	} else if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.SessionID)
		if err != nil {
			return models.User{}, security.SessionClaims{}, err
		}
		if revoked {
			return models.User{}, security.SessionClaims{}, ErrSessionInvalid
		}
	}

	user, err := s.accounts.GetUserByID(ctx, claims.UserID)
	if err != nil {
		var notFound *UserNotFoundError
		if errors.As(err, &notFound) {
			return models.User{}, security.SessionClaims{}, ErrSessionInvalid
		}
		return models.User{}, security.SessionClaims{}, err
	}
	if !user.IsActive {
		return models.User{}, security.SessionClaims{}, ErrSessionInvalid
	}

	return user, claims, nil
}

func (s *SessionService) Revoke(ctx context.Context, claims security.SessionClaims) error {
	if s.stateful() {
		err := s.sessions.DeleteByID(ctx, claims.SessionID)
		if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	}

	if s.denylist == nil {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.SessionID, claims.ExpiresAt.Sub(s.now()))
}

// RevokeToken revokes whatever session the token names without looking at
// the user, so a deactivated account can still sign out.
func (s *SessionService) RevokeToken(ctx context.Context, token string) error {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return ErrSessionInvalid
	}
	return s.Revoke(ctx, claims)
}

func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
