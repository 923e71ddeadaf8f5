package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/repository"
)

// MachineDeleted acknowledges a machine deletion.
type MachineDeleted struct {
	Message   string `json:"message"`
	MachineID string `json:"machine_id"`
}

// DeleteMachine removes a machine that no work order, task or log
// references. Nothing is cascaded.
type DeleteMachine struct {
	repos       *repository.Repositories
	auditLogger *audit.Logger
}

func NewDeleteMachine(repos *repository.Repositories) *DeleteMachine {
	return &DeleteMachine{repos: repos}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (uc *DeleteMachine) WithAuditLogger(al *audit.Logger) *DeleteMachine {
	uc.auditLogger = al
	return uc
}

func (uc *DeleteMachine) Execute(ctx context.Context, id string) (*MachineDeleted, error) {
	err := repository.Transaction(ctx, uc.repos.DB, func(ctx context.Context) error {
		ok, err := uc.repos.Machines.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrMachineNotFound(id)
		}
		inUse, err := uc.repos.Machines.HasHistory(ctx, id)
		if err != nil {
			return fmt.Errorf("check machine history: %w", err)
		}
		if inUse {
			return apperrors.ErrMachineInUse(id)
		}
		if err := uc.repos.Machines.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete machine %s: %w", id, err)
		}
		if uc.auditLogger == nil {
			return nil
		}
		return uc.auditLogger.LogAction(ctx, "machine.deleted", "machine", id, nil)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Machine deleted", zap.String("machine_id", id), zap.String("actor", audit.ActorFrom(ctx)))
	return &MachineDeleted{Message: "Machine deleted successfully", MachineID: id}, nil
}
