package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) EscalationPolicyCount(ctx *gin.Context) {
	count, err := h.analytics.EscalationPolicyCount()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) ListEscalationPolicies(ctx *gin.Context) {
	policies, err := h.analytics.AllEscalationPolicies()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, policies)
}
