package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pagerlens-dev/pagerlens/internal/reports"
)

func serveCSV(ctx *gin.Context, filename string, data []byte, err error) {
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}

func (h *Handler) ServicesReport(ctx *gin.Context) {
	services, err := h.analytics.ServicesWithIncidentCounts()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := reports.ServicesCSV(services)
	serveCSV(ctx, "services.csv", data, err)
}

func (h *Handler) IncidentsReport(ctx *gin.Context) {
	incidents, err := h.analytics.AllIncidents()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := reports.IncidentsCSV(incidents)
	serveCSV(ctx, "incidents.csv", data, err)
}

func (h *Handler) TeamsReport(ctx *gin.Context) {
	teams, err := h.analytics.AllTeams()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := reports.TeamsCSV(teams)
	serveCSV(ctx, "teams.csv", data, err)
}

func (h *Handler) PoliciesReport(ctx *gin.Context) {
	policies, err := h.analytics.AllEscalationPolicies()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := reports.PoliciesCSV(policies)
	serveCSV(ctx, "escalation_policies.csv", data, err)
}

func (h *Handler) InactiveUsersReport(ctx *gin.Context) {
	users, err := h.analytics.InactiveUsers()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := reports.InactiveUsersCSV(users)
	serveCSV(ctx, "inactive_users.csv", data, err)
}
