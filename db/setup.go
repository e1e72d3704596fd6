package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pagerlens-dev/pagerlens/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	connectAttempts = 30
	connectInterval = 2 * time.Second
)

func open(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// Connect opens the database and waits for it to accept queries, since the
// database container usually comes up after the application does.
func Connect(dsn string) (*gorm.DB, error) {
	var lastErr error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		conn, err := open(dsn)

		if err == nil {
			if err = conn.Exec("SELECT 1").Error; err == nil {
				return conn, nil
			}
		}

		lastErr = err
		log.Printf("Database not ready (attempt %d/%d): %v", attempt, connectAttempts, err)
		time.Sleep(connectInterval)
	}

	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", connectAttempts, lastErr)
}

func Migrate(conn *gorm.DB) error {
	tables := []interface{}{
		&models.Service{},
		&models.Incident{},
		&models.Team{},
		&models.EscalationPolicy{},
		&models.EscalationRule{},
		&models.EscalationTarget{},
		&models.User{},
		&models.Schedule{},
		&models.SyncRun{},
	}

	migrator := conn.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := conn.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
