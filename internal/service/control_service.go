package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/BBMRI-cz/fhir-place/internal/backend"
	"github.com/BBMRI-cz/fhir-place/internal/models"
)

const (
	backendLockKey = "backend-control:lock"

	MsgOperationInProgress = "Another backend operation is already in progress"
)

type BackendRunner interface {
	Run(ctx context.Context, op backend.Operation) models.BackendActionResult
}

type Locker interface {
	Acquire(ctx context.Context, key string, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string, owner string) error
}

// ControlService serialises backend sync/delete runs across all API
// instances.
type ControlService struct {
	backend BackendRunner
	locker  Locker
	lockTTL time.Duration
	log     zerolog.Logger
}

func NewControlService(runner BackendRunner, locker Locker, lockTTL time.Duration, log zerolog.Logger) *ControlService {
	return &ControlService{
		backend: runner,
		locker:  locker,
		lockTTL: lockTTL,
		log:     log,
	}
}

func (s *ControlService) Run(ctx context.Context, op backend.Operation, actor models.User) models.BackendActionResult {
	logger := s.log.With().Str("operation", string(op)).Str("user_id", actor.ID).Logger()

	if s.locker != nil {
		owner := ksuid.New().String()
		acquired, err := s.locker.Acquire(ctx, backendLockKey, owner, s.lockTTL)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("backend lock unavailable, running unlocked")
		case !acquired:
			return models.BackendActionResult{Message: MsgOperationInProgress}
		default:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), backendLockKey, owner); err != nil {
					logger.Warn().Err(err).Msg("release backend lock failed")
				}
			}()
		}
	}

	logger.Info().Msg("backend operation requested")
	result := s.backend.Run(ctx, op)
	if !result.Success {
		logger.Warn().Str("message", result.Message).Msg("backend operation failed")
	}
	return result
}
