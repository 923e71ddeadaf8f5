package modules

import (
	"context"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/service"
)

// PeopleModule wires user accounts and the employee register.
type PeopleModule struct {
	auth      *service.AuthService
	employees *service.EmployeeService
}

func NewPeopleModule(infra *Infrastructure) *PeopleModule {
	return &PeopleModule{
		auth:      service.NewAuthService(infra.Repos).WithAuditLogger(infra.AuditLogger),
		employees: service.NewEmployeeService(infra.Repos).WithAuditLogger(infra.AuditLogger),
	}
}

func (m *PeopleModule) Name() string { return "people" }

func (m *PeopleModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Auth = m.auth
	deps.Employees = m.employees
}

func (m *PeopleModule) RegisterEventHandlers(*domain.EventDispatcher) {}

func (m *PeopleModule) Shutdown(context.Context) error { return nil }
