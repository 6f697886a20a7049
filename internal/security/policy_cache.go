package security

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/models"
)

type RequirementsLoader func() (models.PasswordRequirements, error)

// RequirementsCache holds the process-wide password policy and refreshes it
// from the loader once the TTL has passed.
type RequirementsCache struct {
	mu       sync.Mutex
	load     RequirementsLoader
	fallback models.PasswordRequirements
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger

	cached    models.PasswordRequirements
	loaded    bool
	fetchedAt time.Time
}

func NewRequirementsCache(load RequirementsLoader, fallback models.PasswordRequirements, ttl time.Duration, log zerolog.Logger) *RequirementsCache {
	return &RequirementsCache{
		load:     load,
		fallback: fallback,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

func (c *RequirementsCache) Get() models.PasswordRequirements {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.loaded && now.Sub(c.fetchedAt) < c.ttl {
		return c.cached
	}

	req, err := c.load()
	if err != nil {
		if c.loaded {
			c.log.Warn().Err(err).Msg("reload password requirements failed, serving cached value")
			return c.cached
		}
		c.log.Error().Err(err).Msg("load password requirements failed, using defaults")
		req = c.fallback
	}

	c.cached = req
	c.loaded = true
	c.fetchedAt = now
	return req
}

// Invalidate forces the next Get to hit the loader.
func (c *RequirementsCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

func (c *RequirementsCache) Validate(password string) models.PasswordValidationResult {
	return ValidatePassword(password, c.Get())
}
