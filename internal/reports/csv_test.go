package reports

import (
	"testing"
	"time"

	"github.com/pagerlens-dev/pagerlens/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicesCSV(t *testing.T) {
	data, err := ServicesCSV([]analytics.ServiceSummary{
		{ID: "SVC1", Name: "Checkout", Status: "active", IncidentCount: 3},
		{ID: "SVC2", Name: "Billing", Status: "warning", IncidentCount: 0},
	})
	require.NoError(t, err)

	expected := "id,name,status,incident_count\n" +
		"SVC1,Checkout,active,3\n" +
		"SVC2,Billing,warning,0\n"
	assert.Equal(t, expected, string(data))
}

func TestIncidentsCSVHandlesUnresolved(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	resolved := created.Add(30 * time.Minute)

	data, err := IncidentsCSV([]analytics.IncidentSummary{
		{ID: "INC1", IncidentNumber: 1, Title: "DB down", Status: "resolved", Urgency: "high", ServiceID: "SVC1", CreatedAt: created, ResolvedAt: &resolved},
		{ID: "INC2", IncidentNumber: 2, Title: "Latency spike", Status: "triggered", Urgency: "low", ServiceID: "SVC1", CreatedAt: created},
	})
	require.NoError(t, err)

	expected := "id,incident_number,title,status,urgency,service_id,created_at,resolved_at\n" +
		"INC1,1,DB down,resolved,high,SVC1,2025-03-01T10:00:00Z,2025-03-01T10:30:00Z\n" +
		"INC2,2,Latency spike,triggered,low,SVC1,2025-03-01T10:00:00Z,\n"
	assert.Equal(t, expected, string(data))
}

func TestTeamsCSVKeepsEmptyTeams(t *testing.T) {
	data, err := TeamsCSV([]analytics.TeamServices{
		{ID: "T1", Name: "Platform", Services: []analytics.ServiceSummary{
			{ID: "SVC1", Name: "Checkout", Status: "active", IncidentCount: 3},
		}},
		{ID: "T2", Name: "Design", Services: nil},
	})
	require.NoError(t, err)

	expected := "team_id,team_name,service_id,service_name,service_status,incident_count\n" +
		"T1,Platform,SVC1,Checkout,active,3\n" +
		"T2,Design,,,,\n"
	assert.Equal(t, expected, string(data))
}

func TestPoliciesCSVJoinsNames(t *testing.T) {
	data, err := PoliciesCSV([]analytics.PolicySummary{{
		ID: "EP1", Name: "Primary", NumLoops: 2, RuleCount: 1,
		Teams:    []analytics.NamedRef{{ID: "T1", Name: "Platform"}, {ID: "T2", Name: "Payments"}},
		Services: []analytics.NamedRef{{ID: "SVC1", Name: "Checkout"}},
	}})
	require.NoError(t, err)

	expected := "id,name,num_loops,rule_count,teams,services\n" +
		"EP1,Primary,2,1,Platform; Payments,Checkout\n"
	assert.Equal(t, expected, string(data))
}

func TestInactiveUsersCSV(t *testing.T) {
	data, err := InactiveUsersCSV([]analytics.InactiveUser{
		{ID: "U2", Name: "Bob", Email: "bob@example.com", Role: "user", Teams: []string{"Platform"}},
	})
	require.NoError(t, err)

	expected := "id,name,email,role,teams\n" +
		"U2,Bob,bob@example.com,user,Platform\n"
	assert.Equal(t, expected, string(data))
}
