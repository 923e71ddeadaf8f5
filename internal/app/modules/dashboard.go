package modules

import (
	"context"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/service"
)

// DashboardModule wires the plant-wide overview, capacity, workforce and
// trend views.
type DashboardModule struct {
	dashboard *service.DashboardService
}

func NewDashboardModule(infra *Infrastructure) *DashboardModule {
	cfg := infra.Config
	return &DashboardModule{
		dashboard: service.NewDashboardService(infra.Repos, cfg.Dashboard, cfg.Demo, cfg.App.Version, infra.Clock).
			WithAuditLogger(infra.AuditLogger),
	}
}

func (m *DashboardModule) Name() string { return "dashboard" }

func (m *DashboardModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Dashboard = m.dashboard
}

func (m *DashboardModule) RegisterEventHandlers(*domain.EventDispatcher) {}

func (m *DashboardModule) Shutdown(context.Context) error { return nil }
