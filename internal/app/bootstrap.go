// Package app is the composition root. Bootstrap stays orchestration-only:
// it builds infrastructure, lets modules contribute, and assembles the router.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/app/modules"
	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/infrastructure"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}
	return Compose(infra)
}

// Compose wires modules, event handlers and routes over ready infrastructure.
func Compose(infra *modules.Infrastructure) (*Application, error) {
	allModules := modules.All(infra)
	for _, mod := range allModules {
		mod.RegisterEventHandlers(infra.Dispatcher)
	}
	if err := requireMachineStateHandlers(infra.Dispatcher); err != nil {
		return nil, err
	}

	serverDeps := modules.NewServerDeps(infra, allModules)
	server := handlers.NewServer(serverDeps)
	router, err := newRouter(infra.Config, server, serverDeps.JWTCfg)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:  infra.Config,
		Router:  router,
		DB:      infra.DB,
		Modules: allModules,
	}, nil
}

// requireMachineStateHandlers fails when an event that moves machine state
// has no handler, since the machine would then drift from its tasks and logs.
func requireMachineStateHandlers(d *domain.EventDispatcher) error {
	for _, et := range domain.MachineStateEvents() {
		if !d.HasHandlers(et) {
			return fmt.Errorf("no handler registered for %s", et)
		}
	}
	return nil
}
