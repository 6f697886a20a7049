package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/backend"
	"github.com/BBMRI-cz/fhir-place/internal/cache"
	"github.com/BBMRI-cz/fhir-place/internal/config"
	"github.com/BBMRI-cz/fhir-place/internal/metrics"
	"github.com/BBMRI-cz/fhir-place/internal/middleware"
	"github.com/BBMRI-cz/fhir-place/internal/repository"
	"github.com/BBMRI-cz/fhir-place/internal/security"
	"github.com/BBMRI-cz/fhir-place/internal/service"
)

const msgUnexpected = "An unexpected error occurred. Please try again."

type pingFunc func(ctx context.Context) error

type HandlerSet struct {
	log       zerolog.Logger
	cfg       *config.AppConfig
	policy    *security.RequirementsCache
	accounts  *service.AccountService
	auth      *service.AuthService
	sessions  *service.SessionService
	control   *service.ControlService
	metrics   metrics.Querier
	status    *metrics.StatusService
	pingDB    pingFunc
	pingRedis pingFunc
}

// Services bundles what the handlers call into.
type Services struct {
	Policy   *security.RequirementsCache
	Accounts *service.AccountService
	Auth     *service.AuthService
	Sessions *service.SessionService
	Control  *service.ControlService
	Metrics  metrics.Querier
	Status   *metrics.StatusService
}

// NewServices wires the service graph on top of Postgres and Redis.
func NewServices(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, cfg *config.AppConfig) (Services, error) {
	policy := security.NewRequirementsCache(
		config.LoadPasswordRequirements,
		cfg.Password.Requirements(),
		cfg.Security.PasswordCacheTTL,
		log.With().Str("component", "password_policy").Logger(),
	)

	codec, err := security.NewTokenCodec(cfg.Security.TokenFormat, cfg.Security.SessionSecret)
	if err != nil {
		return Services{}, fmt.Errorf("token codec: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	accounts := service.NewAccountService(userRepo, policy, log)
	auth := service.NewAuthService(accounts, log)
	sessions := service.NewSessionService(
		codec,
		sessionRepo,
		cache.NewTokenDenylist(redisClient),
		accounts,
		service.SessionConfig{Strategy: cfg.Security.SessionStrategy, TTL: cfg.Security.SessionTTL},
		log,
	)

	backendClient := backend.NewClient(cfg.Backend, nil, log.With().Str("component", "backend").Logger())
	control := service.NewControlService(backendClient, cache.NewLocker(redisClient), cfg.Backend.Timeout, log)

	promClient := metrics.NewClient(cfg.Metrics, nil, log.With().Str("component", "prometheus").Logger())

	return Services{
		Policy:   policy,
		Accounts: accounts,
		Auth:     auth,
		Sessions: sessions,
		Control:  control,
		Metrics:  promClient,
		Status:   metrics.NewStatusService(promClient, cfg.Metrics),
	}, nil
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, cfg *config.AppConfig, svc Services) HandlerSet {
	h := newHandlerSet(log, cfg, svc)
	h.pingDB = db.Ping
	h.pingRedis = func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}
	return h
}

func newHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services) HandlerSet {
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		policy:   svc.Policy,
		accounts: svc.Accounts,
		auth:     svc.Auth,
		sessions: svc.Sessions,
		control:  svc.Control,
		metrics:  svc.Metrics,
		status:   svc.Status,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)
	router.GET("/password-config", h.PasswordConfig)

	requireSession := middleware.Auth(h.sessions, h.cfg.Security.CookieName, h.log)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/session", requireSession, h.Session)
	}

	settings := router.Group("/settings", requireSession)
	{
		settings.GET("/profile", h.Profile)
		settings.PUT("/profile", h.UpdateProfile)
		settings.PUT("/password", h.ChangePassword)
	}

	control := router.Group("/backend", requireSession)
	{
		control.POST("/sync", h.BackendAction(backend.OpSync))
		control.POST("/miabis-sync", h.BackendAction(backend.OpMiabisSync))
		control.POST("/delete", h.BackendAction(backend.OpDelete))
		control.POST("/miabis-delete", h.BackendAction(backend.OpMiabisDelete))
	}

	router.GET("/metrics/query", requireSession, h.MetricsQuery)
	router.GET("/dashboard/status", requireSession, h.DashboardStatus)
}

type messageResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func respondFailure(c *gin.Context, status int, message string, errs ...string) {
	c.JSON(status, messageResponse{Success: false, Message: message, Errors: errs})
}

func (h HandlerSet) respondUnexpected(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).
		Str("request_id", middleware.RequestIDFrom(c)).
		Str("path", c.FullPath()).
		Msg(msg)
	_ = c.Error(err)
	respondFailure(c, http.StatusInternalServerError, msgUnexpected)
}

func (h HandlerSet) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.CookieName, token, maxAge, "/", "", h.cfg.Security.CookieSecure, true)
}

func (h HandlerSet) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.CookieName, "", -1, "/", "", h.cfg.Security.CookieSecure, true)
}
