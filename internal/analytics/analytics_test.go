package analytics

import (
	"testing"
	"time"

	"github.com/pagerlens-dev/pagerlens/db"
	"github.com/pagerlens-dev/pagerlens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))
	return conn
}

var seedBase = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// seedCheckoutScenario loads SVC1 with three incidents (two resolved, one
// triggered, an hour apart) plus a quieter second service.
func seedCheckoutScenario(t *testing.T, conn *gorm.DB) {
	t.Helper()

	team := models.Team{ID: "T1", Name: "Platform"}
	require.NoError(t, conn.Create(&team).Error)

	policy := models.EscalationPolicy{ID: "EP1", Name: "Primary"}
	require.NoError(t, conn.Create(&policy).Error)

	last := seedBase.Add(2 * time.Hour)
	svc1 := models.Service{
		ID: "SVC1", Name: "Checkout", Status: "active",
		LastIncidentTimestamp: &last,
		Teams:                 []models.Team{team},
		EscalationPolicies:    []models.EscalationPolicy{policy},
	}
	require.NoError(t, conn.Create(&svc1).Error)

	svc2 := models.Service{ID: "SVC2", Name: "Billing", Status: "warning"}
	require.NoError(t, conn.Create(&svc2).Error)

	resolvedAt1 := seedBase.Add(20 * time.Minute)
	resolvedAt2 := seedBase.Add(90 * time.Minute)

	incidents := []models.Incident{
		{ID: "INC1", IncidentNumber: 1, Title: "DB down", Status: "resolved", Urgency: "high", CreatedAt: seedBase, ResolvedAt: &resolvedAt1, ServiceID: "SVC1"},
		{ID: "INC2", IncidentNumber: 2, Title: "Cache miss storm", Status: "resolved", Urgency: "low", CreatedAt: seedBase.Add(time.Hour), ResolvedAt: &resolvedAt2, ServiceID: "SVC1"},
		{ID: "INC3", IncidentNumber: 3, Title: "Latency spike", Status: "triggered", Urgency: "high", CreatedAt: seedBase.Add(2 * time.Hour), ServiceID: "SVC1"},
		{ID: "INC4", IncidentNumber: 4, Title: "Invoice retry", Status: "acknowledged", Urgency: "low", CreatedAt: seedBase.Add(3 * time.Hour), ServiceID: "SVC2"},
	}

	for i := range incidents {
		require.NoError(t, conn.Create(&incidents[i]).Error)
	}
}

func TestServiceCount(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	count, err := New(conn).ServiceCount()
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestServicesWithIncidentCounts(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	services, err := New(conn).ServicesWithIncidentCounts()
	require.NoError(t, err)
	require.Len(t, services, 2)

	byID := make(map[string]ServiceSummary, len(services))

	for _, s := range services {
		byID[s.ID] = s
	}

	assert.EqualValues(t, 3, byID["SVC1"].IncidentCount)
	assert.EqualValues(t, 1, byID["SVC2"].IncidentCount)
	assert.Equal(t, "warning", byID["SVC2"].Status)
}

func TestServiceDetail(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	detail, err := New(conn).ServiceDetail("SVC1")
	require.NoError(t, err)

	assert.Equal(t, "Checkout", detail.Name)
	assert.EqualValues(t, 3, detail.IncidentCount)
	require.NotNil(t, detail.LastIncidentTimestamp)
	assert.True(t, detail.LastIncidentTimestamp.Equal(seedBase.Add(2*time.Hour)))
	require.Len(t, detail.Teams, 1)
	assert.Equal(t, "Platform", detail.Teams[0].Name)
	require.Len(t, detail.EscalationPolicies, 1)
	assert.Equal(t, "EP1", detail.EscalationPolicies[0].ID)
}

func TestServiceDetailNotFound(t *testing.T) {
	conn := openTestDB(t)

	_, err := New(conn).ServiceDetail("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceIncidentsNewestFirst(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	incidents, err := New(conn).ServiceIncidents("SVC1")
	require.NoError(t, err)
	require.Len(t, incidents, 3)
	assert.Equal(t, "INC3", incidents[0].ID)
	assert.Equal(t, "INC1", incidents[2].ID)
}

func TestServiceWithMostIncidents(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	breakdown, err := New(conn).ServiceWithMostIncidents()
	require.NoError(t, err)

	assert.Equal(t, "SVC1", breakdown.ServiceID)
	assert.Equal(t, "Checkout", breakdown.ServiceName)
	assert.EqualValues(t, 3, breakdown.TotalIncidents)
	assert.Equal(t, map[string]int64{"resolved": 2, "triggered": 1}, breakdown.StatusBreakdown)
}

func TestServiceWithMostIncidentsEmptyStore(t *testing.T) {
	conn := openTestDB(t)

	breakdown, err := New(conn).ServiceWithMostIncidents()
	require.NoError(t, err)
	assert.Empty(t, breakdown.ServiceID)
	assert.EqualValues(t, 0, breakdown.TotalIncidents)
	assert.Empty(t, breakdown.StatusBreakdown)
}

func TestServiceIncidentChartData(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	chart, err := New(conn).ServiceIncidentChartData()
	require.NoError(t, err)

	assert.Equal(t, []string{"triggered", "resolved"}, chart.Labels)
	require.Len(t, chart.Datasets, 1)
	assert.Equal(t, "Checkout", chart.Datasets[0].Label)
	assert.Equal(t, []int64{1, 2}, chart.Datasets[0].Data)
}

func TestIncidentsByService(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	groups, err := New(conn).IncidentsByService()
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Ordered by service name: Billing, then Checkout.
	assert.Equal(t, "SVC2", groups[0].ServiceID)
	assert.Equal(t, "SVC1", groups[1].ServiceID)
	assert.Len(t, groups[1].Incidents, 3)
	assert.Equal(t, "INC3", groups[1].Incidents[0].ID)
}

func TestIncidentsByStatus(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	groups, err := New(conn).IncidentsByStatus()
	require.NoError(t, err)
	require.Len(t, groups, 3)

	byStatus := make(map[string]StatusGroup, len(groups))

	for _, g := range groups {
		byStatus[g.Status] = g
	}

	assert.EqualValues(t, 2, byStatus["resolved"].Count)
	assert.Len(t, byStatus["resolved"].Incidents, 2)
	assert.EqualValues(t, 1, byStatus["triggered"].Count)
	assert.EqualValues(t, 1, byStatus["acknowledged"].Count)
}

func TestIncidentsByServiceStatus(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	groups, err := New(conn).IncidentsByServiceStatus()
	require.NoError(t, err)
	require.Len(t, groups, 2)

	byID := make(map[string]ServiceStatusGroup, len(groups))

	for _, g := range groups {
		byID[g.ServiceID] = g
	}

	assert.Equal(t, map[string]int64{"resolved": 2, "triggered": 1}, byID["SVC1"].StatusGroups)
	assert.Equal(t, map[string]int64{"acknowledged": 1}, byID["SVC2"].StatusGroups)
}

func TestAllTeamsNestsServices(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	teams, err := New(conn).AllTeams()
	require.NoError(t, err)
	require.Len(t, teams, 1)

	team := teams[0]
	assert.Equal(t, "Platform", team.Name)
	require.Len(t, team.Services, 1)
	assert.Equal(t, "SVC1", team.Services[0].ID)
	assert.EqualValues(t, 3, team.Services[0].IncidentCount)
}

func TestAllEscalationPolicies(t *testing.T) {
	conn := openTestDB(t)
	seedCheckoutScenario(t, conn)

	rule := models.EscalationRule{ID: "R1", PolicyID: "EP1", EscalationDelayInMinutes: 10}
	require.NoError(t, conn.Create(&rule).Error)

	policies, err := New(conn).AllEscalationPolicies()
	require.NoError(t, err)
	require.Len(t, policies, 1)

	policy := policies[0]
	assert.Equal(t, "EP1", policy.ID)
	assert.Equal(t, 1, policy.RuleCount)
	require.Len(t, policy.Services, 1)
	assert.Equal(t, "SVC1", policy.Services[0].ID)
}

func TestInactiveUsers(t *testing.T) {
	conn := openTestDB(t)

	team := models.Team{ID: "T1", Name: "Platform"}
	require.NoError(t, conn.Create(&team).Error)

	onCall := models.User{ID: "U1", Name: "Alice", Email: "alice@example.com", Role: "admin"}
	idle := models.User{ID: "U2", Name: "Bob", Email: "bob@example.com", Role: "user", Teams: []models.Team{team}}
	require.NoError(t, conn.Create(&onCall).Error)
	require.NoError(t, conn.Create(&idle).Error)

	schedule := models.Schedule{ID: "SCHED1", Name: "Primary", TimeZone: "UTC", Users: []models.User{onCall}}
	require.NoError(t, conn.Create(&schedule).Error)

	users, err := New(conn).InactiveUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "U2", users[0].ID)
	assert.Equal(t, []string{"Platform"}, users[0].Teams)
}
