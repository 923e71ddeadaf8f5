package modules

import (
	"context"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/service"
	"cableops.io/dashboard/internal/usecase"
)

// MaintenanceModule wires maintenance tasks and emulsion logs.
type MaintenanceModule struct {
	maintenance *service.MaintenanceService
	updateTask  *usecase.UpdateMaintenanceTask
}

func NewMaintenanceModule(infra *Infrastructure) *MaintenanceModule {
	return &MaintenanceModule{
		maintenance: service.NewMaintenanceService(infra.Repos, infra.Clock).WithAuditLogger(infra.AuditLogger),
		updateTask: usecase.NewUpdateMaintenanceTask(infra.Repos, infra.Dispatcher, infra.Clock).
			WithAuditLogger(infra.AuditLogger),
	}
}

func (m *MaintenanceModule) Name() string { return "maintenance" }

func (m *MaintenanceModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Maintenance = m.maintenance
	deps.UpdateTask = m.updateTask
}

func (m *MaintenanceModule) RegisterEventHandlers(*domain.EventDispatcher) {}

func (m *MaintenanceModule) Shutdown(context.Context) error { return nil }
