// Package reports renders analytics query results as CSV documents. Every
// function is a pure projection of already-computed rows.
package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/pagerlens-dev/pagerlens/internal/analytics"
)

func write(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, err
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}

func ServicesCSV(services []analytics.ServiceSummary) ([]byte, error) {
	rows := make([][]string, 0, len(services))

	for _, s := range services {
		rows = append(rows, []string{s.ID, s.Name, s.Status, strconv.FormatInt(s.IncidentCount, 10)})
	}

	return write([]string{"id", "name", "status", "incident_count"}, rows)
}

func IncidentsCSV(incidents []analytics.IncidentSummary) ([]byte, error) {
	rows := make([][]string, 0, len(incidents))

	for _, in := range incidents {
		created := in.CreatedAt
		rows = append(rows, []string{
			in.ID,
			strconv.Itoa(in.IncidentNumber),
			in.Title,
			in.Status,
			in.Urgency,
			in.ServiceID,
			formatTime(&created),
			formatTime(in.ResolvedAt),
		})
	}

	return write([]string{"id", "incident_number", "title", "status", "urgency", "service_id", "created_at", "resolved_at"}, rows)
}

// TeamsCSV emits one row per team/service pair; teams without services
// still get a row so they show up in the report.
func TeamsCSV(teams []analytics.TeamServices) ([]byte, error) {
	rows := make([][]string, 0, len(teams))

	for _, team := range teams {
		if len(team.Services) == 0 {
			rows = append(rows, []string{team.ID, team.Name, "", "", "", ""})
			continue
		}

		for _, service := range team.Services {
			rows = append(rows, []string{
				team.ID,
				team.Name,
				service.ID,
				service.Name,
				service.Status,
				strconv.FormatInt(service.IncidentCount, 10),
			})
		}
	}

	return write([]string{"team_id", "team_name", "service_id", "service_name", "service_status", "incident_count"}, rows)
}

func names(refs []analytics.NamedRef) string {
	parts := make([]string, 0, len(refs))

	for _, ref := range refs {
		parts = append(parts, ref.Name)
	}

	return strings.Join(parts, "; ")
}

func PoliciesCSV(policies []analytics.PolicySummary) ([]byte, error) {
	rows := make([][]string, 0, len(policies))

	for _, policy := range policies {
		rows = append(rows, []string{
			policy.ID,
			policy.Name,
			strconv.Itoa(policy.NumLoops),
			strconv.Itoa(policy.RuleCount),
			names(policy.Teams),
			names(policy.Services),
		})
	}

	return write([]string{"id", "name", "num_loops", "rule_count", "teams", "services"}, rows)
}

func InactiveUsersCSV(users []analytics.InactiveUser) ([]byte, error) {
	rows := make([][]string, 0, len(users))

	for _, user := range users {
		rows = append(rows, []string{user.ID, user.Name, user.Email, user.Role, strings.Join(user.Teams, "; ")})
	}

	return write([]string{"id", "name", "email", "role", "teams"}, rows)
}
