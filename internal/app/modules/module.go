// Package modules contains the domain-oriented dependency modules wired by
// the composition root.
package modules

import (
	"context"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/domain"
)

// Module represents a domain-specific dependency unit in the composition root.
type Module interface {
	// Name returns a stable module identifier for logging/debugging.
	Name() string

	// ContributeServerDeps injects module-owned dependencies into the HTTP server deps.
	ContributeServerDeps(*handlers.ServerDeps)

	// RegisterEventHandlers subscribes module handlers to domain events.
	RegisterEventHandlers(*domain.EventDispatcher)

	// Shutdown performs module-local graceful cleanup.
	Shutdown(context.Context) error
}

// All builds every module of the dashboard in wiring order.
func All(infra *Infrastructure) []Module {
	return []Module{
		NewFleetModule(infra),
		NewProductionModule(infra),
		NewQualityModule(infra),
		NewMaintenanceModule(infra),
		NewDashboardModule(infra),
		NewPeopleModule(infra),
	}
}
