package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// syncTimeout bounds one full synchronization run so a hung page fetch
// cannot stall the trigger request forever.
const syncTimeout = 5 * time.Minute

// TriggerSync runs a full synchronization pass. The response is success
// only when every resource type synced; any failure is echoed back, which
// is acceptable for an internal operational tool.
func (h *Handler) TriggerSync(ctx *gin.Context) {
	syncCtx, cancel := context.WithTimeout(ctx.Request.Context(), syncTimeout)
	defer cancel()

	if err := h.syncer.SyncAll(syncCtx); err != nil {
		log.Printf("Data sync failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Data synchronization completed successfully"})
}

func (h *Handler) ListSyncRuns(ctx *gin.Context) {
	runs, err := h.analytics.SyncRuns(20)

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, runs)
}
