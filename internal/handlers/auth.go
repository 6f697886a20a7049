package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BBMRI-cz/fhir-place/internal/middleware"
	"github.com/BBMRI-cz/fhir-place/internal/models"
	"github.com/BBMRI-cz/fhir-place/internal/repository"
	"github.com/BBMRI-cz/fhir-place/internal/service"
)

const (
	msgInvalidCredentials   = "Invalid username or password"
	msgRegistered           = "Registration successful"
	msgRegisteredSignInLate = "Registration successful. Please log in with your credentials."
)

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type authResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message,omitempty"`
	User      models.UserDetails `json:"user"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	var errs formErrors
	errs.check(notBlank(req.FirstName), "First name is required")
	errs.check(notBlank(req.LastName), "Last name is required")
	errs.check(validEmail(req.Email), msgInvalidEmail)
	errs.check(minChars(req.Username, 3), "Username must be at least 3 characters")
	errs.add(h.policy.Validate(req.Password).Errors...)
	errs.check(req.Password == req.ConfirmPassword, msgPasswordMismatch)
	if len(errs) > 0 {
		respondFailure(c, http.StatusBadRequest, errs.message(), errs...)
		return
	}

	user, err := h.accounts.CreateUser(c.Request.Context(), service.CreateUserInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		var creationErr *service.UserCreationError
		if !errors.As(err, &creationErr) {
			h.respondUnexpected(c, err, "register user failed")
			return
		}

		h.log.Warn().Err(err).Str("username", req.Username).Msg("user creation rejected")
		status := http.StatusBadRequest
		if errors.Is(err, repository.ErrUsernameTaken) {
			status = http.StatusConflict
		}
		respondFailure(c, status, "Failed to create user: "+creationErr.Username)
		return
	}

	// Sign the new user in right away; a failure here still leaves a
	// usable account behind.
	issued, err := h.sessions.Issue(c.Request.Context(), user)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("auto sign-in after registration failed")
		c.JSON(http.StatusCreated, authResponse{Success: true, Message: msgRegisteredSignInLate, User: user.Details()})
		return
	}

	h.setSessionCookie(c, issued.Token, issued.Claims.ExpiresAt)
	c.JSON(http.StatusCreated, authResponse{
		Success:   true,
		Message:   msgRegistered,
		User:      user.Details(),
		ExpiresAt: &issued.Claims.ExpiresAt,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	var errs formErrors
	errs.check(req.Username != "", "Username is required")
	errs.check(req.Password != "", "Password is required")
	if len(errs) > 0 {
		respondFailure(c, http.StatusBadRequest, errs.message(), errs...)
		return
	}

	user, err := h.auth.AuthenticateUser(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondFailure(c, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.respondUnexpected(c, err, "authenticate user failed")
		return
	}

	issued, err := h.sessions.Issue(c.Request.Context(), user)
	if err != nil {
		h.respondUnexpected(c, err, "issue session failed")
		return
	}

	h.setSessionCookie(c, issued.Token, issued.Claims.ExpiresAt)
	c.JSON(http.StatusOK, authResponse{
		Success:   true,
		User:      user.Details(),
		ExpiresAt: &issued.Claims.ExpiresAt,
	})
}

// Logout always clears the cookie; the session is revoked when it can be
// identified.
func (h HandlerSet) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c, h.cfg.Security.CookieName); token != "" {
		err := h.sessions.RevokeToken(c.Request.Context(), token)
		if err != nil && !errors.Is(err, service.ErrSessionInvalid) {
			h.log.Error().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("revoke session failed")
		}
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logged out"})
}

func (h HandlerSet) Session(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	claims, _ := middleware.CurrentClaims(c)

	c.JSON(http.StatusOK, authResponse{
		Success:   true,
		User:      user.Details(),
		ExpiresAt: &claims.ExpiresAt,
	})
}
