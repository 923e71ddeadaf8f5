// Package handlers implements the REST API of the dashboard.
//
// Handlers bind and validate input, call one service or use case, and
// render the result. Errors are passed to c.Error and rendered by
// middleware.ErrorHandler. Routes are registered by the app package.
package handlers

import (
	"context"

	"cableops.io/dashboard/internal/api/middleware"
	"cableops.io/dashboard/internal/service"
	"cableops.io/dashboard/internal/usecase"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of every handler.
type Server struct {
	db     Pinger
	jwtCfg middleware.JWTConfig

	machines    *service.MachineService
	production  *service.ProductionService
	quality     *service.QualityService
	maintenance *service.MaintenanceService
	dashboard   *service.DashboardService
	employees   *service.EmployeeService
	auth        *service.AuthService

	updateTask      *usecase.UpdateMaintenanceTask
	updateWorkOrder *usecase.UpdateWorkOrder
	logProduction   *usecase.LogProduction
	deleteMachine   *usecase.DeleteMachine
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	DB     Pinger
	JWTCfg middleware.JWTConfig

	Machines    *service.MachineService
	Production  *service.ProductionService
	Quality     *service.QualityService
	Maintenance *service.MaintenanceService
	Dashboard   *service.DashboardService
	Employees   *service.EmployeeService
	Auth        *service.AuthService

	UpdateTask      *usecase.UpdateMaintenanceTask
	UpdateWorkOrder *usecase.UpdateWorkOrder
	LogProduction   *usecase.LogProduction
	DeleteMachine   *usecase.DeleteMachine
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		db:              deps.DB,
		jwtCfg:          deps.JWTCfg,
		machines:        deps.Machines,
		production:      deps.Production,
		quality:         deps.Quality,
		maintenance:     deps.Maintenance,
		dashboard:       deps.Dashboard,
		employees:       deps.Employees,
		auth:            deps.Auth,
		updateTask:      deps.UpdateTask,
		updateWorkOrder: deps.UpdateWorkOrder,
		logProduction:   deps.LogProduction,
		deleteMachine:   deps.DeleteMachine,
	}
}
