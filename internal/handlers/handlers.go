package handlers

import (
	"github.com/pagerlens-dev/pagerlens/internal/analytics"
	"github.com/pagerlens-dev/pagerlens/internal/pagerduty"
	"github.com/pagerlens-dev/pagerlens/internal/syncer"
	"gorm.io/gorm"
)

// Handler carries the shared dependencies for every route. The store
// handle is injected here rather than held as a package global.
type Handler struct {
	db        *gorm.DB
	client    *pagerduty.Client
	syncer    *syncer.Syncer
	analytics *analytics.Analytics
}

func New(conn *gorm.DB, client *pagerduty.Client) *Handler {
	return &Handler{
		db:        conn,
		client:    client,
		syncer:    syncer.New(conn, client),
		analytics: analytics.New(conn),
	}
}
