package models

type Schedule struct {
	ID       string `gorm:"primaryKey;size:32"`
	Name     string `gorm:"size:255;not null"`
	TimeZone string `gorm:"size:50"`

	// Relationships
	Users              []User             `gorm:"many2many:schedule_users"`
	Teams              []Team             `gorm:"many2many:schedule_teams"`
	EscalationPolicies []EscalationPolicy `gorm:"many2many:schedule_escalation_policies"`
}
