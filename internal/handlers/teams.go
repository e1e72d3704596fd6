package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) TeamCount(ctx *gin.Context) {
	count, err := h.analytics.TeamCount()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) ListTeams(ctx *gin.Context) {
	teams, err := h.analytics.AllTeams()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, teams)
}
