package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pagerlens-dev/pagerlens/internal/models"
	"github.com/pagerlens-dev/pagerlens/internal/pagerduty"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Syncer reconciles PagerDuty snapshots into the local store. Entities are
// created on first observation, updated in place afterwards, and never
// deleted. Resource types sync in dependency order: services before their
// incidents, both sides of an association before its rows, schedules last.
//
// Nothing guards against two SyncAll runs interleaving; the trigger is a
// manual, low-frequency operation.
type Syncer struct {
	db     *gorm.DB
	client *pagerduty.Client
}

func New(conn *gorm.DB, client *pagerduty.Client) *Syncer {
	return &Syncer{db: conn, client: client}
}

// upsertRow writes one staged entity. Updates go through Select("*") so
// zero values overwrite too; Save is avoided because its zero-rows-affected
// fallback re-inserts unchanged rows on MySQL.
func upsertRow(tx *gorm.DB, isNew bool, row interface{}) error {
	if isNew {
		return tx.Omit(clause.Associations).Create(row).Error
	}

	return tx.Model(row).Select("*").Omit(clause.Associations).Updates(row).Error
}

func referenceIDs(refs []pagerduty.Reference) []string {
	ids := make([]string, 0, len(refs))

	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}

	return ids
}

// findTeams resolves team ids to stored rows. Ids with no stored row drop
// out of the result; a reference to an unknown team is not an error.
func findTeams(tx *gorm.DB, ids []string) ([]models.Team, error) {
	teams := make([]models.Team, 0, len(ids))

	if len(ids) == 0 {
		return teams, nil
	}

	if err := tx.Where("id IN ?", ids).Find(&teams).Error; err != nil {
		return nil, fmt.Errorf("resolve teams: %w", err)
	}

	return teams, nil
}

func findUsers(tx *gorm.DB, ids []string) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))

	if len(ids) == 0 {
		return users, nil
	}

	if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}

	return users, nil
}

func findEscalationPolicies(tx *gorm.DB, ids []string) ([]models.EscalationPolicy, error) {
	policies := make([]models.EscalationPolicy, 0, len(ids))

	if len(ids) == 0 {
		return policies, nil
	}

	if err := tx.Where("id IN ?", ids).Find(&policies).Error; err != nil {
		return nil, fmt.Errorf("resolve escalation policies: %w", err)
	}

	return policies, nil
}

// SyncServices upserts services and rebinds their team and escalation
// policy associations. A relationship list present in the payload fully
// replaces the stored set for that service.
func (s *Syncer) SyncServices(data []pagerduty.Service) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, svc := range data {
			var service models.Service
			err := tx.First(&service, "id = ?", svc.ID).Error
			isNew := errors.Is(err, gorm.ErrRecordNotFound)

			if isNew {
				service = models.Service{ID: svc.ID}
			} else if err != nil {
				return fmt.Errorf("load service %s: %w", svc.ID, err)
			}

			service.Name = svc.Name
			service.Status = svc.Status

			if svc.LastIncidentTimestamp != nil {
				service.LastIncidentTimestamp = svc.LastIncidentTimestamp
			}

			if err := upsertRow(tx, isNew, &service); err != nil {
				return fmt.Errorf("save service %s: %w", svc.ID, err)
			}

			if svc.Teams != nil {
				teams, err := findTeams(tx, referenceIDs(svc.Teams))

				if err != nil {
					return err
				}

				if err := tx.Model(&service).Association("Teams").Replace(&teams); err != nil {
					return fmt.Errorf("rebind teams for service %s: %w", svc.ID, err)
				}
			}

			if svc.EscalationPolicy != nil {
				var policy models.EscalationPolicy
				err := tx.First(&policy, "id = ?", svc.EscalationPolicy.ID).Error

				switch {
				case err == nil:
					if err := tx.Model(&service).Association("EscalationPolicies").Replace(&policy); err != nil {
						return fmt.Errorf("rebind escalation policy for service %s: %w", svc.ID, err)
					}
				case !errors.Is(err, gorm.ErrRecordNotFound):
					return fmt.Errorf("load escalation policy %s: %w", svc.EscalationPolicy.ID, err)
				}
				// Not-yet-synced policies are skipped, not errors.
			}
		}

		log.Printf("Synchronized %d services", len(data))
		return nil
	})
}

// SyncIncidents upserts incidents and advances each parent service's
// last-incident timestamp. The timestamp only moves forward: a re-sync
// carrying older incidents never regresses it.
func (s *Syncer) SyncIncidents(data []pagerduty.Incident) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, in := range data {
			var incident models.Incident
			err := tx.First(&incident, "id = ?", in.ID).Error
			isNew := errors.Is(err, gorm.ErrRecordNotFound)

			if isNew {
				incident = models.Incident{ID: in.ID}
			} else if err != nil {
				return fmt.Errorf("load incident %s: %w", in.ID, err)
			}

			incident.IncidentNumber = in.IncidentNumber
			incident.Title = in.Title
			incident.Status = in.Status
			incident.Urgency = in.Urgency
			incident.ServiceID = in.Service.ID
			incident.CreatedAt = in.CreatedAt

			if in.ResolvedAt != nil {
				incident.ResolvedAt = in.ResolvedAt
			}

			if err := upsertRow(tx, isNew, &incident); err != nil {
				return fmt.Errorf("save incident %s: %w", in.ID, err)
			}

			var service models.Service
			err = tx.First(&service, "id = ?", incident.ServiceID).Error

			switch {
			case err == nil:
				if service.LastIncidentTimestamp == nil || incident.CreatedAt.After(*service.LastIncidentTimestamp) {
					if err := tx.Model(&service).Update("last_incident_timestamp", incident.CreatedAt).Error; err != nil {
						return fmt.Errorf("advance last incident timestamp for service %s: %w", service.ID, err)
					}
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("load service %s: %w", incident.ServiceID, err)
			}
		}

		log.Printf("Synchronized %d incidents", len(data))
		return nil
	})
}

func (s *Syncer) SyncTeams(data []pagerduty.Team) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, td := range data {
			var team models.Team
			err := tx.First(&team, "id = ?", td.ID).Error
			isNew := errors.Is(err, gorm.ErrRecordNotFound)

			if isNew {
				team = models.Team{ID: td.ID}
			} else if err != nil {
				return fmt.Errorf("load team %s: %w", td.ID, err)
			}

			team.Name = td.Name

			if err := upsertRow(tx, isNew, &team); err != nil {
				return fmt.Errorf("save team %s: %w", td.ID, err)
			}
		}

		log.Printf("Synchronized %d teams", len(data))
		return nil
	})
}

// SyncEscalationPolicies upserts policies and rebuilds every escalation
// rule and target from scratch. The reset is global: rules belonging to
// policies absent from the payload are removed too. Rules and targets are
// written in a second pass so their policy foreign keys always resolve.
func (s *Syncer) SyncEscalationPolicies(data []pagerduty.EscalationPolicy) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.EscalationTarget{}).Error; err != nil {
			return fmt.Errorf("clear escalation targets: %w", err)
		}

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.EscalationRule{}).Error; err != nil {
			return fmt.Errorf("clear escalation rules: %w", err)
		}

		for _, pd := range data {
			var policy models.EscalationPolicy
			err := tx.First(&policy, "id = ?", pd.ID).Error
			isNew := errors.Is(err, gorm.ErrRecordNotFound)

			if isNew {
				policy = models.EscalationPolicy{ID: pd.ID}
			} else if err != nil {
				return fmt.Errorf("load escalation policy %s: %w", pd.ID, err)
			}

			policy.Name = pd.Name
			policy.Description = pd.Description
			policy.NumLoops = pd.NumLoops

			if err := upsertRow(tx, isNew, &policy); err != nil {
				return fmt.Errorf("save escalation policy %s: %w", pd.ID, err)
			}

			if pd.Teams != nil {
				teams, err := findTeams(tx, referenceIDs(pd.Teams))

				if err != nil {
					return err
				}

				if err := tx.Model(&policy).Association("Teams").Replace(&teams); err != nil {
					return fmt.Errorf("rebind teams for escalation policy %s: %w", pd.ID, err)
				}
			}
		}

		for _, pd := range data {
			for _, rd := range pd.EscalationRules {
				rule := models.EscalationRule{
					ID:                       rd.ID,
					PolicyID:                 pd.ID,
					EscalationDelayInMinutes: rd.EscalationDelayInMinutes,
				}

				if err := tx.Omit(clause.Associations).Create(&rule).Error; err != nil {
					return fmt.Errorf("create escalation rule %s: %w", rd.ID, err)
				}

				for _, td := range rd.Targets {
					if td.DeletedAt != nil {
						continue
					}

					target := models.EscalationTarget{
						TargetID: td.ID,
						RuleID:   rd.ID,
						Type:     td.Type,
						Summary:  td.Summary,
					}

					if err := tx.Create(&target).Error; err != nil {
						return fmt.Errorf("create escalation target %s for rule %s: %w", td.ID, rd.ID, err)
					}
				}
			}
		}

		log.Printf("Synchronized %d escalation policies", len(data))
		return nil
	})
}

func (s *Syncer) SyncUsers(data []pagerduty.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, ud := range data {
			var user models.User
			err := tx.First(&user, "id = ?", ud.ID).Error
			isNew := errors.Is(err, gorm.ErrRecordNotFound)

			if isNew {
				user = models.User{ID: ud.ID}
			} else if err != nil {
				return fmt.Errorf("load user %s: %w", ud.ID, err)
			}

			user.Name = ud.Name
			user.Email = ud.Email
			user.Role = ud.Role

			if err := upsertRow(tx, isNew, &user); err != nil {
				return fmt.Errorf("save user %s: %w", ud.ID, err)
			}

			if ud.Teams != nil {
				teams, err := findTeams(tx, referenceIDs(ud.Teams))

				if err != nil {
					return err
				}

				if err := tx.Model(&user).Association("Teams").Replace(&teams); err != nil {
					return fmt.Errorf("rebind teams for user %s: %w", ud.ID, err)
				}
			}
		}

		log.Printf("Synchronized %d users", len(data))
		return nil
	})
}

// SyncSchedules upserts schedules and rebinds their user, team and
// escalation policy associations. Schedule members marked deleted upstream
// are excluded from the user rebinding.
func (s *Syncer) SyncSchedules(data []pagerduty.Schedule) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, sd := range data {
			var schedule models.Schedule
			err := tx.First(&schedule, "id = ?", sd.ID).Error
			isNew := errors.Is(err, gorm.ErrRecordNotFound)

			if isNew {
				schedule = models.Schedule{ID: sd.ID}
			} else if err != nil {
				return fmt.Errorf("load schedule %s: %w", sd.ID, err)
			}

			schedule.Name = sd.Name
			schedule.TimeZone = sd.TimeZone

			if err := upsertRow(tx, isNew, &schedule); err != nil {
				return fmt.Errorf("save schedule %s: %w", sd.ID, err)
			}

			if sd.Users != nil {
				ids := make([]string, 0, len(sd.Users))

				for _, su := range sd.Users {
					if su.DeletedAt == nil {
						ids = append(ids, su.ID)
					}
				}

				users, err := findUsers(tx, ids)

				if err != nil {
					return err
				}

				if err := tx.Model(&schedule).Association("Users").Replace(&users); err != nil {
					return fmt.Errorf("rebind users for schedule %s: %w", sd.ID, err)
				}
			}

			if sd.Teams != nil {
				teams, err := findTeams(tx, referenceIDs(sd.Teams))

				if err != nil {
					return err
				}

				if err := tx.Model(&schedule).Association("Teams").Replace(&teams); err != nil {
					return fmt.Errorf("rebind teams for schedule %s: %w", sd.ID, err)
				}
			}

			if sd.EscalationPolicies != nil {
				policies, err := findEscalationPolicies(tx, referenceIDs(sd.EscalationPolicies))

				if err != nil {
					return err
				}

				if err := tx.Model(&schedule).Association("EscalationPolicies").Replace(&policies); err != nil {
					return fmt.Errorf("rebind escalation policies for schedule %s: %w", sd.ID, err)
				}
			}
		}

		log.Printf("Synchronized %d schedules", len(data))
		return nil
	})
}

// SyncAll fetches every resource type concurrently, then reconciles them
// strictly in dependency order. Each resource type commits in its own
// transaction; the first fetch or reconciliation error aborts the run and
// leaves earlier, already-committed steps durable. The outcome is recorded
// in the sync_runs table.
func (s *Syncer) SyncAll(ctx context.Context) error {
	log.Println("Starting full data synchronization")

	run := models.SyncRun{StartedAt: time.Now().UTC(), Status: "running"}

	if err := s.db.Create(&run).Error; err != nil {
		return fmt.Errorf("record sync run: %w", err)
	}

	err := s.syncAll(ctx, &run)

	finished := time.Now().UTC()
	run.FinishedAt = &finished

	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		log.Printf("Full data synchronization failed: %v", err)
	} else {
		run.Status = "succeeded"
		log.Println("Full data synchronization completed")
	}

	if saveErr := s.db.Save(&run).Error; saveErr != nil {
		log.Printf("Failed to record sync run outcome: %v", saveErr)
	}

	return err
}

func (s *Syncer) syncAll(ctx context.Context, run *models.SyncRun) error {
	snap := s.client.FetchAll(ctx)

	counts := map[string]int{
		"services":            len(snap.Services),
		"incidents":           len(snap.Incidents),
		"teams":               len(snap.Teams),
		"escalation_policies": len(snap.EscalationPolicies),
		"users":               len(snap.Users),
		"schedules":           len(snap.Schedules),
	}

	if raw, err := json.Marshal(counts); err == nil {
		run.Counts = datatypes.JSON(raw)
	}

	steps := []struct {
		name     string
		fetchErr error
		sync     func() error
	}{
		{"services", snap.ServicesErr, func() error { return s.SyncServices(snap.Services) }},
		{"incidents", snap.IncidentsErr, func() error { return s.SyncIncidents(snap.Incidents) }},
		{"teams", snap.TeamsErr, func() error { return s.SyncTeams(snap.Teams) }},
		{"escalation_policies", snap.EscalationPoliciesErr, func() error { return s.SyncEscalationPolicies(snap.EscalationPolicies) }},
		{"users", snap.UsersErr, func() error { return s.SyncUsers(snap.Users) }},
		{"schedules", snap.SchedulesErr, func() error { return s.SyncSchedules(snap.Schedules) }},
	}

	for _, step := range steps {
		if step.fetchErr != nil {
			return fmt.Errorf("fetch %s: %w", step.name, step.fetchErr)
		}

		if err := step.sync(); err != nil {
			return fmt.Errorf("sync %s: %w", step.name, err)
		}
	}

	return nil
}
