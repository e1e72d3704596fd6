package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) InactiveUsers(ctx *gin.Context) {
	users, err := h.analytics.InactiveUsers()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, users)
}
