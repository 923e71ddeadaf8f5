package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/repository"
)

// MachineEventHandlers keeps machine state in step with maintenance and
// production events. Handlers write through the transaction in ctx.
type MachineEventHandlers struct {
	machines    *repository.MachineRepository
	auditLogger *audit.Logger
}

func NewMachineEventHandlers(machines *repository.MachineRepository, al *audit.Logger) *MachineEventHandlers {
	return &MachineEventHandlers{machines: machines, auditLogger: al}
}

// Register subscribes the handlers to d.
func (h *MachineEventHandlers) Register(d *domain.EventDispatcher) {
	d.Register(domain.EventMaintenanceCompleted, h.OnMaintenanceCompleted)
	d.Register(domain.EventProductionLogged, h.OnProductionLogged)
	d.Register(domain.EventWorkOrderCompleted, h.OnWorkOrderCompleted)
}

// OnMaintenanceCompleted returns a machine under maintenance to idle.
// Machines in any other status are left alone.
func (h *MachineEventHandlers) OnMaintenanceCompleted(ctx context.Context, event *domain.DomainEvent) error {
	p, err := domain.DecodePayload[domain.MaintenancePayload](event)
	if err != nil {
		return fmt.Errorf("decode maintenance payload: %w", err)
	}
	m, err := h.machines.Get(ctx, p.MachineID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil
		}
		return err
	}
	if m.Status != domain.MachineMaintenance {
		return nil
	}
	if err := h.machines.UpdateFields(ctx, m.ID, map[string]interface{}{"status": string(domain.MachineIdle)}); err != nil {
		return fmt.Errorf("release machine %s: %w", m.ID, err)
	}
	if h.auditLogger == nil {
		return nil
	}
	return h.auditLogger.LogStatusChange(ctx, "machine", m.ID, string(domain.MachineMaintenance), string(domain.MachineIdle))
}

// OnProductionLogged copies the logged speed onto the machine, and the
// temperature when one was recorded.
func (h *MachineEventHandlers) OnProductionLogged(ctx context.Context, event *domain.DomainEvent) error {
	p, err := domain.DecodePayload[domain.ProductionPayload](event)
	if err != nil {
		return fmt.Errorf("decode production payload: %w", err)
	}
	fields := map[string]interface{}{"speed": p.Speed}
	if p.Temperature != nil && *p.Temperature != 0 {
		fields["temperature"] = *p.Temperature
	}
	return h.machines.UpdateFields(ctx, p.MachineID, fields)
}

func (h *MachineEventHandlers) OnWorkOrderCompleted(_ context.Context, event *domain.DomainEvent) error {
	p, err := domain.DecodePayload[domain.WorkOrderPayload](event)
	if err != nil {
		return fmt.Errorf("decode work order payload: %w", err)
	}
	logger.Info("Work order completed",
		zap.String("work_order_id", p.WorkOrderID),
		zap.String("machine_id", p.MachineID),
		zap.Float64("quantity_produced", p.QuantityProduced),
		zap.String("completed_by", event.CreatedBy),
	)
	return nil
}
