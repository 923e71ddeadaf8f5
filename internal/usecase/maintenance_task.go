package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/service"
)

// UpdateMaintenanceTaskInput is the body of PUT /maintenance/tasks/{id}.
// Absent fields are left unchanged.
type UpdateMaintenanceTaskInput struct {
	Status                 *domain.MaintenanceStatus `json:"status"`
	Title                  *string                   `json:"title" binding:"omitempty,min=1,max=200"`
	Description            *string                   `json:"description"`
	Priority               *int                      `json:"priority" binding:"omitempty,min=1,max=5"`
	Assignee               *string                   `json:"assignee" binding:"omitempty,max=100"`
	Team                   *string                   `json:"team" binding:"omitempty,max=100"`
	ScheduledStart         *time.Time                `json:"scheduled_start"`
	ScheduledEnd           *time.Time                `json:"scheduled_end"`
	EstimatedDurationHours *float64                  `json:"estimated_duration_hours" binding:"omitempty,gte=0"`
	DowntimeMinutes        *int                      `json:"downtime_minutes" binding:"omitempty,gte=0"`
	SparePartsUsed         *string                   `json:"spare_parts_used"`
	LaborCost              *float64                  `json:"labor_cost" binding:"omitempty,gte=0"`
	PartsCost              *float64                  `json:"parts_cost" binding:"omitempty,gte=0"`
	RootCause              *string                   `json:"root_cause"`
	Resolution             *string                   `json:"resolution"`
	Notes                  *string                   `json:"notes"`
}

// UpdateMaintenanceTask applies a task update, its lifecycle stamps, and
// the machine side effects of starting or completing the task.
type UpdateMaintenanceTask struct {
	repos       *repository.Repositories
	dispatcher  *domain.EventDispatcher
	auditLogger *audit.Logger
	now         func() time.Time
}

func NewUpdateMaintenanceTask(repos *repository.Repositories, dispatcher *domain.EventDispatcher, clock service.Clock) *UpdateMaintenanceTask {
	return &UpdateMaintenanceTask{repos: repos, dispatcher: dispatcher, now: clockOrSystem(clock)}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (uc *UpdateMaintenanceTask) WithAuditLogger(al *audit.Logger) *UpdateMaintenanceTask {
	uc.auditLogger = al
	return uc
}

func (uc *UpdateMaintenanceTask) Execute(ctx context.Context, id string, in UpdateMaintenanceTaskInput) (*models.MaintenanceTask, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperrors.ErrInvalidEnum("status", string(*in.Status))
	}

	var (
		task         *models.MaintenanceTask
		completedNow bool
	)
	err := repository.Transaction(ctx, uc.repos.DB, func(ctx context.Context) error {
		var err error
		task, err = uc.repos.Maintenance.Get(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.ErrTaskNotFound(id)
			}
			return err
		}
		from := task.Status
		applyTaskFields(task, in)

		if in.Status != nil {
			now := uc.now()
			progress := domain.MaintenanceProgress{
				Status:              task.Status,
				ActualStart:         task.ActualStart,
				ActualEnd:           task.ActualEnd,
				ActualDurationHours: task.ActualDurationHours,
			}
			completedNow, err = progress.Transition(*in.Status, now)
			if err != nil {
				if errors.Is(err, domain.ErrIllegalTransition) {
					return apperrors.ErrIllegalTransition(err)
				}
				return err
			}
			task.Status = progress.Status
			task.ActualStart = progress.ActualStart
			task.ActualEnd = progress.ActualEnd
			task.ActualDurationHours = progress.ActualDurationHours
		}
		task.TotalCost = domain.TotalCost(task.LaborCost, task.PartsCost)

		if err := uc.repos.Maintenance.Save(ctx, task); err != nil {
			return fmt.Errorf("update maintenance task %s: %w", id, err)
		}
		if err := uc.audit(ctx, task, from); err != nil {
			return err
		}

		switch {
		case completedNow:
			return uc.dispatch(ctx, domain.EventMaintenanceCompleted, task)
		case from != task.Status && task.Status == domain.MaintenanceInProgress:
			return uc.dispatch(ctx, domain.EventMaintenanceStarted, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		logger.Info("Maintenance task completed",
			zap.String("task_id", task.ID),
			zap.String("machine_id", task.MachineID),
		)
	}
	return task, nil
}

func (uc *UpdateMaintenanceTask) audit(ctx context.Context, task *models.MaintenanceTask, from domain.MaintenanceStatus) error {
	if uc.auditLogger == nil {
		return nil
	}
	if from != task.Status {
		if err := uc.auditLogger.LogStatusChange(ctx, "maintenance_task", task.ID, string(from), string(task.Status)); err != nil {
			return err
		}
	}
	return uc.auditLogger.LogAction(ctx, "maintenance_task.updated", "maintenance_task", task.ID, map[string]interface{}{
		"total_cost": task.TotalCost,
	})
}

func (uc *UpdateMaintenanceTask) dispatch(ctx context.Context, typ domain.EventType, task *models.MaintenanceTask) error {
	if uc.dispatcher == nil {
		return nil
	}
	event, err := newEvent(ctx, typ, "maintenance_task", task.ID, domain.MaintenancePayload{
		TaskID:    task.ID,
		MachineID: task.MachineID,
		Type:      task.Type,
		Status:    task.Status,
	}, uc.now())
	if err != nil {
		return err
	}
	return uc.dispatcher.Dispatch(ctx, event)
}

func applyTaskFields(task *models.MaintenanceTask, in UpdateMaintenanceTaskInput) {
	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = in.Description
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Assignee != nil {
		task.Assignee = in.Assignee
	}
	if in.Team != nil {
		task.Team = in.Team
	}
	if in.ScheduledStart != nil {
		t := in.ScheduledStart.UTC()
		task.ScheduledStart = &t
	}
	if in.ScheduledEnd != nil {
		t := in.ScheduledEnd.UTC()
		task.ScheduledEnd = &t
	}
	if in.EstimatedDurationHours != nil {
		task.EstimatedDurationHours = in.EstimatedDurationHours
	}
	if in.DowntimeMinutes != nil {
		task.DowntimeMinutes = *in.DowntimeMinutes
	}
	if in.SparePartsUsed != nil {
		task.SparePartsUsed = in.SparePartsUsed
	}
	if in.LaborCost != nil {
		task.LaborCost = *in.LaborCost
	}
	if in.PartsCost != nil {
		task.PartsCost = *in.PartsCost
	}
	if in.RootCause != nil {
		task.RootCause = in.RootCause
	}
	if in.Resolution != nil {
		task.Resolution = in.Resolution
	}
	if in.Notes != nil {
		task.Notes = in.Notes
	}
}
