package pagerduty

import "time"

// Reference is the compact form the API uses to point at another object.
type Reference struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

type Service struct {
	ID                    string      `json:"id"`
	Name                  string      `json:"name"`
	Status                string      `json:"status"`
	LastIncidentTimestamp *time.Time  `json:"last_incident_timestamp"`
	Teams                 []Reference `json:"teams"`
	EscalationPolicy      *Reference  `json:"escalation_policy"`
}

type Incident struct {
	ID             string     `json:"id"`
	IncidentNumber int        `json:"incident_number"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	Urgency        string     `json:"urgency"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	Service        Reference  `json:"service"`
}

type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EscalationTarget struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Summary   string     `json:"summary"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type EscalationRule struct {
	ID                       string             `json:"id"`
	EscalationDelayInMinutes int                `json:"escalation_delay_in_minutes"`
	Targets                  []EscalationTarget `json:"targets"`
}

type EscalationPolicy struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	NumLoops        int              `json:"num_loops"`
	Teams           []Reference      `json:"teams"`
	EscalationRules []EscalationRule `json:"escalation_rules"`
}

type User struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  string      `json:"role"`
	Teams []Reference `json:"teams"`
}

// ScheduleUser carries the deletion marker schedules keep for members who
// have been removed upstream but still appear in the rotation payload.
type ScheduleUser struct {
	ID        string     `json:"id"`
	Summary   string     `json:"summary"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type Schedule struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	TimeZone           string         `json:"time_zone"`
	Users              []ScheduleUser `json:"users"`
	Teams              []Reference    `json:"teams"`
	EscalationPolicies []Reference    `json:"escalation_policies"`
}
