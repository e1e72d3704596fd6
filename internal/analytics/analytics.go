package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/pagerlens-dev/pagerlens/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound reports a read for an entity id that is not in the store.
var ErrNotFound = errors.New("not found")

// Analytics answers the reporting layer's read queries. Every call
// re-queries the store; nothing is cached.
type Analytics struct {
	db *gorm.DB
}

func New(conn *gorm.DB) *Analytics {
	return &Analytics{db: conn}
}

type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ServiceSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	IncidentCount int64  `json:"incident_count"`
}

type ServiceDetail struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Status                string     `json:"status"`
	IncidentCount         int64      `json:"incident_count"`
	LastIncidentTimestamp *time.Time `json:"last_incident_timestamp"`
	Teams                 []NamedRef `json:"teams"`
	EscalationPolicies    []NamedRef `json:"escalation_policies"`
}

type IncidentSummary struct {
	ID             string     `json:"id"`
	IncidentNumber int        `json:"incident_number"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	Urgency        string     `json:"urgency"`
	ServiceID      string     `json:"service_id"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
}

type ServiceIncidents struct {
	ServiceID   string            `json:"service_id"`
	ServiceName string            `json:"service_name"`
	Incidents   []IncidentSummary `json:"incidents"`
}

type StatusGroup struct {
	Status    string            `json:"status"`
	Count     int64             `json:"count"`
	Incidents []IncidentSummary `json:"incidents"`
}

type ServiceStatusGroup struct {
	ServiceID    string           `json:"service_id"`
	ServiceName  string           `json:"service_name"`
	StatusGroups map[string]int64 `json:"status_groups"`
}

type IncidentBreakdown struct {
	ServiceID       string           `json:"service_id"`
	ServiceName     string           `json:"service_name"`
	TotalIncidents  int64            `json:"total_incidents"`
	StatusBreakdown map[string]int64 `json:"status_breakdown"`
}

type ChartDataset struct {
	Label string  `json:"label"`
	Data  []int64 `json:"data"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type TeamServices struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Services []ServiceSummary `json:"services"`
}

type PolicySummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	NumLoops    int        `json:"num_loops"`
	RuleCount   int        `json:"rule_count"`
	Teams       []NamedRef `json:"teams"`
	Services    []NamedRef `json:"services"`
}

type InactiveUser struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  string   `json:"role"`
	Teams []string `json:"teams"`
}

func incidentSummary(in models.Incident) IncidentSummary {
	return IncidentSummary{
		ID:             in.ID,
		IncidentNumber: in.IncidentNumber,
		Title:          in.Title,
		Status:         in.Status,
		Urgency:        in.Urgency,
		ServiceID:      in.ServiceID,
		CreatedAt:      in.CreatedAt,
		ResolvedAt:     in.ResolvedAt,
	}
}

func (a *Analytics) ServiceCount() (int64, error) {
	var count int64

	if err := a.db.Model(&models.Service{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}

	return count, nil
}

func (a *Analytics) ServicesWithIncidentCounts() ([]ServiceSummary, error) {
	services := make([]ServiceSummary, 0)

	err := a.db.Model(&models.Service{}).
		Select("services.id, services.name, services.status, count(incidents.id) AS incident_count").
		Joins("LEFT JOIN incidents ON incidents.service_id = services.id").
		Group("services.id, services.name, services.status").
		Order("services.name").
		Scan(&services).Error

	if err != nil {
		return nil, fmt.Errorf("list services with incident counts: %w", err)
	}

	return services, nil
}

func (a *Analytics) ServiceDetail(serviceID string) (*ServiceDetail, error) {
	var service models.Service

	err := a.db.Preload("Teams").Preload("EscalationPolicies").First(&service, "id = ?", serviceID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("load service %s: %w", serviceID, err)
	}

	var incidentCount int64

	if err := a.db.Model(&models.Incident{}).Where("service_id = ?", serviceID).Count(&incidentCount).Error; err != nil {
		return nil, fmt.Errorf("count incidents for service %s: %w", serviceID, err)
	}

	detail := &ServiceDetail{
		ID:                    service.ID,
		Name:                  service.Name,
		Status:                service.Status,
		IncidentCount:         incidentCount,
		LastIncidentTimestamp: service.LastIncidentTimestamp,
		Teams:                 make([]NamedRef, 0, len(service.Teams)),
		EscalationPolicies:    make([]NamedRef, 0, len(service.EscalationPolicies)),
	}

	for _, team := range service.Teams {
		detail.Teams = append(detail.Teams, NamedRef{ID: team.ID, Name: team.Name})
	}

	for _, policy := range service.EscalationPolicies {
		detail.EscalationPolicies = append(detail.EscalationPolicies, NamedRef{ID: policy.ID, Name: policy.Name})
	}

	return detail, nil
}

func (a *Analytics) ServiceIncidents(serviceID string) ([]IncidentSummary, error) {
	var incidents []models.Incident

	err := a.db.Where("service_id = ?", serviceID).Order("created_at DESC").Find(&incidents).Error

	if err != nil {
		return nil, fmt.Errorf("list incidents for service %s: %w", serviceID, err)
	}

	result := make([]IncidentSummary, 0, len(incidents))

	for _, in := range incidents {
		result = append(result, incidentSummary(in))
	}

	return result, nil
}

func (a *Analytics) ServiceWithMostIncidents() (*IncidentBreakdown, error) {
	var top struct {
		ID            string
		Name          string
		IncidentCount int64
	}

	err := a.db.Model(&models.Service{}).
		Select("services.id, services.name, count(incidents.id) AS incident_count").
		Joins("LEFT JOIN incidents ON incidents.service_id = services.id").
		Group("services.id, services.name").
		Order("incident_count DESC").
		Limit(1).
		Scan(&top).Error

	if err != nil {
		return nil, fmt.Errorf("find service with most incidents: %w", err)
	}

	breakdown := &IncidentBreakdown{
		ServiceID:       top.ID,
		ServiceName:     top.Name,
		TotalIncidents:  top.IncidentCount,
		StatusBreakdown: make(map[string]int64),
	}

	if top.ID == "" {
		return breakdown, nil
	}

	var rows []struct {
		Status string
		Count  int64
	}

	err = a.db.Model(&models.Incident{}).
		Select("status, count(id) AS count").
		Where("service_id = ?", top.ID).
		Group("status").
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("break down incidents for service %s: %w", top.ID, err)
	}

	for _, row := range rows {
		breakdown.StatusBreakdown[row.Status] = row.Count
	}

	return breakdown, nil
}

// ServiceIncidentChartData projects the most-incidents breakdown into the
// labels/datasets shape the dashboard chart expects.
func (a *Analytics) ServiceIncidentChartData() (*ChartData, error) {
	breakdown, err := a.ServiceWithMostIncidents()

	if err != nil {
		return nil, err
	}

	chart := &ChartData{Labels: make([]string, 0), Datasets: make([]ChartDataset, 0)}

	if breakdown.ServiceID == "" {
		return chart, nil
	}

	dataset := ChartDataset{Label: breakdown.ServiceName, Data: make([]int64, 0, len(breakdown.StatusBreakdown))}

	for _, status := range []string{"triggered", "acknowledged", "resolved"} {
		count, ok := breakdown.StatusBreakdown[status]

		if !ok {
			continue
		}

		chart.Labels = append(chart.Labels, status)
		dataset.Data = append(dataset.Data, count)
	}

	chart.Datasets = append(chart.Datasets, dataset)
	return chart, nil
}

func (a *Analytics) AllIncidents() ([]IncidentSummary, error) {
	var incidents []models.Incident

	if err := a.db.Order("created_at DESC").Find(&incidents).Error; err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	result := make([]IncidentSummary, 0, len(incidents))

	for _, in := range incidents {
		result = append(result, incidentSummary(in))
	}

	return result, nil
}

// IncidentsByService groups incidents under their owning service. Services
// without incidents are omitted.
func (a *Analytics) IncidentsByService() ([]ServiceIncidents, error) {
	var services []models.Service

	err := a.db.Preload("Incidents", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at DESC")
	}).Order("name").Find(&services).Error

	if err != nil {
		return nil, fmt.Errorf("group incidents by service: %w", err)
	}

	result := make([]ServiceIncidents, 0, len(services))

	for _, service := range services {
		if len(service.Incidents) == 0 {
			continue
		}

		group := ServiceIncidents{
			ServiceID:   service.ID,
			ServiceName: service.Name,
			Incidents:   make([]IncidentSummary, 0, len(service.Incidents)),
		}

		for _, in := range service.Incidents {
			group.Incidents = append(group.Incidents, incidentSummary(in))
		}

		result = append(result, group)
	}

	return result, nil
}

func (a *Analytics) IncidentsByStatus() ([]StatusGroup, error) {
	var rows []struct {
		Status string
		Count  int64
	}

	err := a.db.Model(&models.Incident{}).
		Select("status, count(id) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("group incidents by status: %w", err)
	}

	result := make([]StatusGroup, 0, len(rows))

	for _, row := range rows {
		var incidents []models.Incident

		err := a.db.Where("status = ?", row.Status).Order("created_at DESC").Find(&incidents).Error

		if err != nil {
			return nil, fmt.Errorf("list %s incidents: %w", row.Status, err)
		}

		group := StatusGroup{Status: row.Status, Count: row.Count, Incidents: make([]IncidentSummary, 0, len(incidents))}

		for _, in := range incidents {
			group.Incidents = append(group.Incidents, incidentSummary(in))
		}

		result = append(result, group)
	}

	return result, nil
}

func (a *Analytics) IncidentsByServiceStatus() ([]ServiceStatusGroup, error) {
	var rows []struct {
		ServiceID   string
		ServiceName string
		Status      string
		Count       int64
	}

	err := a.db.Model(&models.Incident{}).
		Select("incidents.service_id AS service_id, services.name AS service_name, incidents.status AS status, count(incidents.id) AS count").
		Joins("JOIN services ON services.id = incidents.service_id").
		Group("incidents.service_id, services.name, incidents.status").
		Order("services.name, incidents.status").
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("group incidents by service and status: %w", err)
	}

	result := make([]ServiceStatusGroup, 0)
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.ServiceID]

		if !ok {
			i = len(result)
			index[row.ServiceID] = i
			result = append(result, ServiceStatusGroup{
				ServiceID:    row.ServiceID,
				ServiceName:  row.ServiceName,
				StatusGroups: make(map[string]int64),
			})
		}

		result[i].StatusGroups[row.Status] = row.Count
	}

	return result, nil
}

func (a *Analytics) TeamCount() (int64, error) {
	var count int64

	if err := a.db.Model(&models.Team{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}

	return count, nil
}

func (a *Analytics) AllTeams() ([]TeamServices, error) {
	var teams []models.Team

	if err := a.db.Preload("Services").Order("name").Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	// One grouped query for incident counts instead of one per service.
	var counts []struct {
		ServiceID string
		Count     int64
	}

	err := a.db.Model(&models.Incident{}).
		Select("service_id, count(id) AS count").
		Group("service_id").
		Scan(&counts).Error

	if err != nil {
		return nil, fmt.Errorf("count incidents per service: %w", err)
	}

	countByService := make(map[string]int64, len(counts))

	for _, row := range counts {
		countByService[row.ServiceID] = row.Count
	}

	result := make([]TeamServices, 0, len(teams))

	for _, team := range teams {
		entry := TeamServices{ID: team.ID, Name: team.Name, Services: make([]ServiceSummary, 0, len(team.Services))}

		for _, service := range team.Services {
			entry.Services = append(entry.Services, ServiceSummary{
				ID:            service.ID,
				Name:          service.Name,
				Status:        service.Status,
				IncidentCount: countByService[service.ID],
			})
		}

		result = append(result, entry)
	}

	return result, nil
}

func (a *Analytics) EscalationPolicyCount() (int64, error) {
	var count int64

	if err := a.db.Model(&models.EscalationPolicy{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count escalation policies: %w", err)
	}

	return count, nil
}

func (a *Analytics) AllEscalationPolicies() ([]PolicySummary, error) {
	var policies []models.EscalationPolicy

	err := a.db.Preload("Teams").Preload("Services").Preload("Rules").Order("name").Find(&policies).Error

	if err != nil {
		return nil, fmt.Errorf("list escalation policies: %w", err)
	}

	result := make([]PolicySummary, 0, len(policies))

	for _, policy := range policies {
		summary := PolicySummary{
			ID:          policy.ID,
			Name:        policy.Name,
			Description: policy.Description,
			NumLoops:    policy.NumLoops,
			RuleCount:   len(policy.Rules),
			Teams:       make([]NamedRef, 0, len(policy.Teams)),
			Services:    make([]NamedRef, 0, len(policy.Services)),
		}

		for _, team := range policy.Teams {
			summary.Teams = append(summary.Teams, NamedRef{ID: team.ID, Name: team.Name})
		}

		for _, service := range policy.Services {
			summary.Services = append(summary.Services, NamedRef{ID: service.ID, Name: service.Name})
		}

		result = append(result, summary)
	}

	return result, nil
}

// InactiveUsers lists users that sit on no schedule.
func (a *Analytics) InactiveUsers() ([]InactiveUser, error) {
	var users []models.User

	err := a.db.Preload("Teams").
		Joins("LEFT JOIN schedule_users ON schedule_users.user_id = users.id").
		Where("schedule_users.schedule_id IS NULL").
		Order("users.name").
		Find(&users).Error

	if err != nil {
		return nil, fmt.Errorf("list inactive users: %w", err)
	}

	result := make([]InactiveUser, 0, len(users))

	for _, user := range users {
		entry := InactiveUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role, Teams: make([]string, 0, len(user.Teams))}

		for _, team := range user.Teams {
			entry.Teams = append(entry.Teams, team.Name)
		}

		result = append(result, entry)
	}

	return result, nil
}

// SyncRuns returns the most recent synchronization outcomes, newest first.
func (a *Analytics) SyncRuns(limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []models.SyncRun

	if err := a.db.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}

	return runs, nil
}
