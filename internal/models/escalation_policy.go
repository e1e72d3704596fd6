package models

type EscalationPolicy struct {
	ID          string `gorm:"primaryKey;size:32"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:1024"`
	NumLoops    int    `gorm:"default:0"`

	// Relationships
	Rules     []EscalationRule `gorm:"foreignKey:PolicyID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Teams     []Team           `gorm:"many2many:escalation_policy_teams"`
	Services  []Service        `gorm:"many2many:service_escalation_policy"`
	Schedules []Schedule       `gorm:"many2many:schedule_escalation_policies"`
}

type EscalationRule struct {
	ID                       string `gorm:"primaryKey;size:32"`
	PolicyID                 string `gorm:"size:32;index"`
	EscalationDelayInMinutes int

	// Relationships
	Targets []EscalationTarget `gorm:"foreignKey:RuleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// EscalationTarget points at the user or schedule a rule escalates to.
// The upstream id is not unique on its own (the same user can appear in
// many rules), hence the surrogate key.
type EscalationTarget struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	TargetID string `gorm:"size:32;not null;index;uniqueIndex:uix_target_rule"`
	RuleID   string `gorm:"size:32;not null;index;uniqueIndex:uix_target_rule"`
	Type     string `gorm:"size:50"` // user_reference, schedule_reference
	Summary  string `gorm:"size:255"`
}
