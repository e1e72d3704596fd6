package models

import "time"

// Service is a PagerDuty service. Identifiers are assigned upstream and
// stable across syncs, so they double as primary keys.
type Service struct {
	ID                    string `gorm:"primaryKey;size:32"`
	Name                  string `gorm:"size:255;not null"`
	Status                string `gorm:"size:50;not null;default:active"` // active, warning, critical
	LastIncidentTimestamp *time.Time

	// Relationships
	Incidents          []Incident         `gorm:"foreignKey:ServiceID"`
	Teams              []Team             `gorm:"many2many:service_team"`
	EscalationPolicies []EscalationPolicy `gorm:"many2many:service_escalation_policy"`
}
