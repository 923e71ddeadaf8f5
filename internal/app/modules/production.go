package modules

import (
	"context"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/service"
	"cableops.io/dashboard/internal/usecase"
)

// ProductionModule wires work orders and the production and downtime logs.
type ProductionModule struct {
	production      *service.ProductionService
	updateWorkOrder *usecase.UpdateWorkOrder
	logProduction   *usecase.LogProduction
}

func NewProductionModule(infra *Infrastructure) *ProductionModule {
	return &ProductionModule{
		production: service.NewProductionService(infra.Repos, infra.Clock).WithAuditLogger(infra.AuditLogger),
		updateWorkOrder: usecase.NewUpdateWorkOrder(infra.Repos, infra.Dispatcher, infra.Clock).
			WithAuditLogger(infra.AuditLogger),
		logProduction: usecase.NewLogProduction(infra.Repos, infra.Dispatcher, infra.Clock).
			WithAuditLogger(infra.AuditLogger),
	}
}

func (m *ProductionModule) Name() string { return "production" }

func (m *ProductionModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Production = m.production
	deps.UpdateWorkOrder = m.updateWorkOrder
	deps.LogProduction = m.logProduction
}

func (m *ProductionModule) RegisterEventHandlers(*domain.EventDispatcher) {}

func (m *ProductionModule) Shutdown(context.Context) error { return nil }
