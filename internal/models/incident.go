package models

import "time"

type Incident struct {
	ID             string `gorm:"primaryKey;size:32"`
	IncidentNumber int    `gorm:"uniqueIndex"`
	Title          string `gorm:"size:255"`
	Status         string `gorm:"size:50;not null;index"` // triggered, acknowledged, resolved
	Urgency        string `gorm:"size:20;not null"`       // high, low
	CreatedAt      time.Time
	ResolvedAt     *time.Time
	ServiceID      string `gorm:"size:32;not null;index"`

	// Relationships
	Service Service `gorm:"foreignKey:ServiceID"`
}
