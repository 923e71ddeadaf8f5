package modules

import (
	"context"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/service"
	"cableops.io/dashboard/internal/usecase"
)

// FleetModule wires the machine service, machine deletion, and the
// handlers that keep machine state in step with domain events.
type FleetModule struct {
	infra         *Infrastructure
	machines      *service.MachineService
	deleteMachine *usecase.DeleteMachine
	events        *usecase.MachineEventHandlers
}

func NewFleetModule(infra *Infrastructure) *FleetModule {
	return &FleetModule{
		infra:         infra,
		machines:      service.NewMachineService(infra.Repos).WithAuditLogger(infra.AuditLogger),
		deleteMachine: usecase.NewDeleteMachine(infra.Repos).WithAuditLogger(infra.AuditLogger),
		events:        usecase.NewMachineEventHandlers(infra.Repos.Machines, infra.AuditLogger),
	}
}

func (m *FleetModule) Name() string { return "fleet" }

func (m *FleetModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Machines = m.machines
	deps.DeleteMachine = m.deleteMachine
}

func (m *FleetModule) RegisterEventHandlers(d *domain.EventDispatcher) {
	if d == nil {
		return
	}
	m.events.Register(d)
}

func (m *FleetModule) Shutdown(context.Context) error { return nil }
