package modules

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	"cableops.io/dashboard/internal/infrastructure"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/service"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config      *config.Config
	DB          *infrastructure.DatabaseClients
	Pinger      handlers.Pinger
	Repos       *repository.Repositories
	AuditLogger *audit.Logger
	Dispatcher  *domain.EventDispatcher
	Clock       service.Clock
}

// NewInfrastructure opens the database, applies migrations when
// configured, and builds the shared services on top of it.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	infra := NewInfrastructureFromGorm(cfg, db.Gorm, db)
	infra.DB = db
	return infra, nil
}

// NewInfrastructureFromGorm builds the shared dependencies over an open
// GORM handle. pinger backs the readiness check.
func NewInfrastructureFromGorm(cfg *config.Config, db *gorm.DB, pinger handlers.Pinger) *Infrastructure {
	return &Infrastructure{
		Config:      cfg,
		Pinger:      pinger,
		Repos:       repository.New(db),
		AuditLogger: audit.NewLogger(db),
		Dispatcher:  domain.NewEventDispatcher(),
		Clock:       service.SystemClock,
	}
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
