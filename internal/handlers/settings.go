package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BBMRI-cz/fhir-place/internal/middleware"
	"github.com/BBMRI-cz/fhir-place/internal/service"
)

func (h HandlerSet) Profile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Details()})
}

type updateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if email := strings.TrimSpace(req.Email); email != "" && !validEmail(email) {
		respondFailure(c, http.StatusBadRequest, msgInvalidEmail, msgInvalidEmail)
		return
	}

	ctx := c.Request.Context()
	if err := h.accounts.UpdateDetails(ctx, user.ID, service.UpdateDetailsInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("update user details failed")
		respondFailure(c, http.StatusInternalServerError, "Failed to update user details")
		return
	}

	updated, err := h.accounts.GetUserByID(ctx, user.ID)
	if err != nil {
		h.respondUnexpected(c, err, "reload user failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User details updated successfully",
		"user":    updated.Details(),
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h HandlerSet) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	var errs formErrors
	errs.check(req.CurrentPassword != "", "Current password is required")
	errs.add(h.policy.Validate(req.NewPassword).Errors...)
	errs.check(req.NewPassword == req.ConfirmPassword, msgPasswordMismatch)
	if len(errs) > 0 {
		respondFailure(c, http.StatusBadRequest, errs.message(), errs...)
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		var policyErr *service.PasswordPolicyError
		switch {
		case errors.Is(err, service.ErrCurrentPasswordIncorrect):
			respondFailure(c, http.StatusBadRequest, "Current password is incorrect")
		case errors.As(err, &policyErr):
			respondFailure(c, http.StatusBadRequest, policyErr.Error(), policyErr.Errors...)
		default:
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("change password failed")
			respondFailure(c, http.StatusInternalServerError, "Failed to change password")
		}
		return
	}

	c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Password changed successfully"})
}
