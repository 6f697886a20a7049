package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) MetricsQuery(c *gin.Context) {
	query := c.Query("query")

	result := h.metrics.Query(c.Request.Context(), query)

	status := http.StatusOK
	switch {
	case result.Success:
	case strings.TrimSpace(query) == "":
		status = http.StatusBadRequest
	default:
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

func (h HandlerSet) DashboardStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Status(c.Request.Context()))
}
