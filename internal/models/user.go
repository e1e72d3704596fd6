package models

type User struct {
	ID    string `gorm:"primaryKey;size:32"`
	Name  string `gorm:"size:255;not null"`
	Email string `gorm:"size:255;uniqueIndex"`
	Role  string `gorm:"size:50"` // owner, admin, user, limited_user, ...

	// Relationships
	Teams     []Team     `gorm:"many2many:user_teams"`
	Schedules []Schedule `gorm:"many2many:schedule_users"`
}
