package modules

import (
	"context"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/service"
)

// QualityModule wires quality checks, scrap entries and scrap valuation.
type QualityModule struct {
	quality *service.QualityService
}

func NewQualityModule(infra *Infrastructure) *QualityModule {
	return &QualityModule{
		quality: service.NewQualityService(infra.Repos, infra.Config.Pricing, infra.Clock).
			WithAuditLogger(infra.AuditLogger),
	}
}

func (m *QualityModule) Name() string { return "quality" }

func (m *QualityModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Quality = m.quality
}

func (m *QualityModule) RegisterEventHandlers(*domain.EventDispatcher) {}

func (m *QualityModule) Shutdown(context.Context) error { return nil }
