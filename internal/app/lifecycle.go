package app

import (
	"context"

	"go.uber.org/zap"

	"cableops.io/dashboard/internal/pkg/logger"
)

// Shutdown gracefully shuts down all application components.
func (a *Application) Shutdown(ctx context.Context) {
	for _, mod := range a.Modules {
		if mod == nil {
			continue
		}
		if err := mod.Shutdown(ctx); err != nil {
			logger.Warn("module shutdown returned error",
				zap.String("module", mod.Name()),
				zap.Error(err),
			)
		}
	}

	if a.DB != nil {
		a.DB.Close()
		logger.Info("Database pool closed")
	}
}
