package usecase

import (
	"context"
	"fmt"
	"time"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/service"
)

// LogProductionInput is the body of POST /production/logs.
type LogProductionInput struct {
	MachineID    string       `json:"machine_id" binding:"required,min=1,max=20"`
	Shift        domain.Shift `json:"shift" binding:"required"`
	OperatorName *string      `json:"operator_name" binding:"omitempty,max=100"`
	Speed        *float64     `json:"speed" binding:"required,gte=0"`
	TargetSpeed  *float64     `json:"target_speed" binding:"omitempty,gte=0"`
	Temperature  *float64     `json:"temperature"`
	Pressure     *float64     `json:"pressure"`
	OutputLength *float64     `json:"output_length" binding:"omitempty,gte=0"`
	OutputWeight *float64     `json:"output_weight" binding:"omitempty,gte=0"`
	Notes        *string      `json:"notes"`
	Timestamp    *time.Time   `json:"timestamp"`
}

// LogProduction stores a production reading and raises ProductionLogged,
// whose handler carries speed and temperature onto the machine.
type LogProduction struct {
	repos       *repository.Repositories
	dispatcher  *domain.EventDispatcher
	auditLogger *audit.Logger
	now         func() time.Time
}

func NewLogProduction(repos *repository.Repositories, dispatcher *domain.EventDispatcher, clock service.Clock) *LogProduction {
	return &LogProduction{repos: repos, dispatcher: dispatcher, now: clockOrSystem(clock)}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (uc *LogProduction) WithAuditLogger(al *audit.Logger) *LogProduction {
	uc.auditLogger = al
	return uc
}

func (uc *LogProduction) Execute(ctx context.Context, in LogProductionInput) (*service.ProductionLogView, error) {
	if !in.Shift.Valid() {
		return nil, apperrors.ErrInvalidEnum("shift", string(in.Shift))
	}

	now := uc.now()
	log := &models.ProductionLog{
		MachineID:    in.MachineID,
		Shift:        in.Shift,
		Timestamp:    now,
		TargetSpeed:  in.TargetSpeed,
		Temperature:  in.Temperature,
		Pressure:     in.Pressure,
		OutputLength: in.OutputLength,
		OutputWeight: in.OutputWeight,
		Notes:        in.Notes,
	}
	if in.Speed != nil {
		log.Speed = *in.Speed
	}
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		log.Timestamp = in.Timestamp.UTC()
	}

	err := repository.Transaction(ctx, uc.repos.DB, func(ctx context.Context) error {
		ok, err := uc.repos.Machines.Exists(ctx, in.MachineID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrMachineNotFound(in.MachineID)
		}
		if log.OperatorID, err = service.ResolveOperator(ctx, uc.repos.Employees, in.OperatorName); err != nil {
			return fmt.Errorf("resolve operator: %w", err)
		}
		if err := uc.repos.Facts.CreateProduction(ctx, log); err != nil {
			return fmt.Errorf("create production log: %w", err)
		}
		if uc.auditLogger != nil {
			if err := uc.auditLogger.LogAction(ctx, "production.logged", "production_log", fmt.Sprint(log.ID), map[string]interface{}{
				"machine_id": log.MachineID,
				"speed":      log.Speed,
			}); err != nil {
				return err
			}
		}
		if uc.dispatcher == nil {
			return nil
		}
		event, err := newEvent(ctx, domain.EventProductionLogged, "machine", log.MachineID, domain.ProductionPayload{
			MachineID:   log.MachineID,
			Speed:       log.Speed,
			Temperature: log.Temperature,
		}, now)
		if err != nil {
			return err
		}
		return uc.dispatcher.Dispatch(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return &service.ProductionLogView{ProductionLog: *log, OperatorName: in.OperatorName}, nil
}
