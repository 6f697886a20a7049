package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BBMRI-cz/fhir-place/internal/models"
	"github.com/BBMRI-cz/fhir-place/internal/security"
)

type passwordConfigResponse struct {
	models.PasswordRequirements
	Description string `json:"description"`
}

func (h HandlerSet) PasswordConfig(c *gin.Context) {
	req := h.policy.Get()
	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, passwordConfigResponse{
		PasswordRequirements: req,
		Description:          security.DescribeRequirements(req),
	})
}
