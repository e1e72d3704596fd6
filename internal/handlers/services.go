package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagerlens-dev/pagerlens/internal/analytics"
)

func (h *Handler) ServiceCount(ctx *gin.Context) {
	count, err := h.analytics.ServiceCount()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) ListServices(ctx *gin.Context) {
	services, err := h.analytics.ServicesWithIncidentCounts()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, services)
}

func (h *Handler) ServiceDetail(ctx *gin.Context) {
	serviceID := ctx.Param("service_id")

	detail, err := h.analytics.ServiceDetail(serviceID)

	if err != nil {
		if errors.Is(err, analytics.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Service with id " + serviceID + " not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, detail)
}

func (h *Handler) ServiceIncidents(ctx *gin.Context) {
	incidents, err := h.analytics.ServiceIncidents(ctx.Param("service_id"))

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, incidents)
}

func (h *Handler) ServiceMostIncidents(ctx *gin.Context) {
	breakdown, err := h.analytics.ServiceWithMostIncidents()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, breakdown)
}

func (h *Handler) ServiceIncidentChart(ctx *gin.Context) {
	chart, err := h.analytics.ServiceIncidentChartData()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, chart)
}
