package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BBMRI-cz/fhir-place/internal/backend"
	"github.com/BBMRI-cz/fhir-place/internal/middleware"
	"github.com/BBMRI-cz/fhir-place/internal/service"
)

// DeleteConfirmation must be sent verbatim before data is wiped.
const DeleteConfirmation = "DELETE ALL"

type backendActionRequest struct {
	Confirmation string `json:"confirmation"`
}

func (h HandlerSet) BackendAction(op backend.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if op.Destructive() {
			var req backendActionRequest
			if err := c.ShouldBindJSON(&req); err != nil || req.Confirmation != DeleteConfirmation {
				respondFailure(c, http.StatusBadRequest, "Please type '"+DeleteConfirmation+"' to confirm")
				return
			}
		}

		result := h.control.Run(c.Request.Context(), op, user)

		status := http.StatusOK
		switch {
		case result.Success:
		case result.Message == service.MsgOperationInProgress:
			status = http.StatusConflict
		default:
			status = http.StatusBadGateway
		}
		c.JSON(status, result)
	}
}
