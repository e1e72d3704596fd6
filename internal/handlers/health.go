package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthProbeTimeout = 10 * time.Second

// HealthCheck reports per-component health for the database and the
// upstream PagerDuty API.
func (h *Handler) HealthCheck(ctx *gin.Context) {
	status := http.StatusOK
	components := gin.H{"database": "healthy", "api": "healthy"}

	if err := h.db.Exec("SELECT 1").Error; err != nil {
		components["database"] = "unhealthy: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthProbeTimeout)
	defer cancel()

	if err := h.client.Ping(probeCtx); err != nil {
		components["api"] = "unhealthy: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	overall := "healthy"

	if status != http.StatusOK {
		overall = "unhealthy"
	}

	ctx.JSON(status, gin.H{"status": overall, "components": components})
}
