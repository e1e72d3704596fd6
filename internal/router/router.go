package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pagerlens-dev/pagerlens/internal/handlers"
	"github.com/pagerlens-dev/pagerlens/internal/pagerduty"
	"gorm.io/gorm"
)

func New(conn *gorm.DB, client *pagerduty.Client) *gin.Engine {
	r := gin.Default()

	r.Use(cors.Default())

	h := handlers.New(conn, client)

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/sync", h.TriggerSync)
		api.GET("/sync/runs", h.ListSyncRuns)

		services := api.Group("/services")
		{
			services.GET("/count", h.ServiceCount)
			services.GET("", h.ListServices)
			services.GET("/most-incidents", h.ServiceMostIncidents)
			services.GET("/chart", h.ServiceIncidentChart)
			services.GET("/:service_id", h.ServiceDetail)
			services.GET("/:service_id/incidents", h.ServiceIncidents)
		}

		incidents := api.Group("/incidents")
		{
			incidents.GET("", h.ListIncidents)
			incidents.GET("/by-service", h.IncidentsByService)
			incidents.GET("/by-status", h.IncidentsByStatus)
			incidents.GET("/by-service-status", h.IncidentsByServiceStatus)
		}

		teams := api.Group("/teams")
		{
			teams.GET("/count", h.TeamCount)
			teams.GET("", h.ListTeams)
		}

		policies := api.Group("/escalation-policies")
		{
			policies.GET("/count", h.EscalationPolicyCount)
			policies.GET("", h.ListEscalationPolicies)
		}

		api.GET("/users/inactive", h.InactiveUsers)

		reports := api.Group("/reports")
		{
			reports.GET("/services", h.ServicesReport)
			reports.GET("/incidents", h.IncidentsReport)
			reports.GET("/teams", h.TeamsReport)
			reports.GET("/policies", h.PoliciesReport)
			reports.GET("/inactive-users", h.InactiveUsersReport)
		}
	}

	return r
}
