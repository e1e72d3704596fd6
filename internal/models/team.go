package models

type Team struct {
	ID   string `gorm:"primaryKey;size:32"`
	Name string `gorm:"size:255;not null"`

	// Relationships
	Services  []Service  `gorm:"many2many:service_team"`
	Users     []User     `gorm:"many2many:user_teams"`
	Schedules []Schedule `gorm:"many2many:schedule_teams"`
}
