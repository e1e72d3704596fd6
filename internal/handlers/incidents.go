package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListIncidents(ctx *gin.Context) {
	incidents, err := h.analytics.AllIncidents()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, incidents)
}

func (h *Handler) IncidentsByService(ctx *gin.Context) {
	groups, err := h.analytics.IncidentsByService()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, groups)
}

func (h *Handler) IncidentsByStatus(ctx *gin.Context) {
	groups, err := h.analytics.IncidentsByStatus()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, groups)
}

func (h *Handler) IncidentsByServiceStatus(ctx *gin.Context) {
	groups, err := h.analytics.IncidentsByServiceStatus()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, groups)
}
