package service

import (
	"context"
	"fmt"
	"time"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

// CreateTaskInput is the body of POST /maintenance/tasks.
type CreateTaskInput struct {
	MachineID              string                 `json:"machine_id" binding:"required,min=1,max=20"`
	Type                   domain.MaintenanceType `json:"type" binding:"required"`
	Title                  string                 `json:"title" binding:"required,min=1,max=200"`
	Description            *string                `json:"description"`
	Priority               *int                   `json:"priority" binding:"omitempty,min=1,max=5"`
	Assignee               *string                `json:"assignee" binding:"omitempty,max=100"`
	Team                   *string                `json:"team" binding:"omitempty,max=100"`
	EstimatedDurationHours *float64               `json:"estimated_duration_hours" binding:"omitempty,gte=0"`
	ScheduledStart         *time.Time             `json:"scheduled_start"`
	ScheduledEnd           *time.Time             `json:"scheduled_end"`
}

// TaskDeleted acknowledges a task deletion.
type TaskDeleted struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

// CreateEmulsionInput is the body of POST /maintenance/emulsion.
type CreateEmulsionInput struct {
	MachineID     string     `json:"machine_id" binding:"required,min=1,max=20"`
	PHLevel       *float64   `json:"ph_level" binding:"required,gte=0,lte=14"`
	Conductivity  *float64   `json:"conductivity" binding:"omitempty,gte=0"`
	Concentration *float64   `json:"concentration" binding:"omitempty,gte=0,lte=100"`
	Temperature   *float64   `json:"temperature"`
	BacteriaCount *float64   `json:"bacteria_count" binding:"omitempty,gte=0"`
	GrotanAdded   *float64   `json:"grotan_added" binding:"omitempty,gte=0"`
	Notes         *string    `json:"notes"`
	Timestamp     *time.Time `json:"timestamp"`
}

// MaintenanceService serves maintenance tasks and emulsion logs. Task
// updates, which can move machines, are in usecase.UpdateMaintenanceTask.
type MaintenanceService struct {
	auditor
	repos *repository.Repositories
	clock Clock
}

func NewMaintenanceService(repos *repository.Repositories, clock Clock) *MaintenanceService {
	return &MaintenanceService{repos: repos, clock: clock}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (s *MaintenanceService) WithAuditLogger(al *audit.Logger) *MaintenanceService {
	s.log = al
	return s
}

func (s *MaintenanceService) ListTasks(ctx context.Context, f repository.TaskFilter) ([]models.MaintenanceTask, error) {
	rows, err := s.repos.Maintenance.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list maintenance tasks: %w", err)
	}
	return rows, nil
}

func (s *MaintenanceService) GetTask(ctx context.Context, id string) (*models.MaintenanceTask, error) {
	t, err := s.repos.Maintenance.Get(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apperrors.ErrTaskNotFound(id))
	}
	return t, nil
}

// CreateTask numbers the task MT-{seq} and files it as pending.
func (s *MaintenanceService) CreateTask(ctx context.Context, in CreateTaskInput) (*models.MaintenanceTask, error) {
	if err := parseEnum("type", in.Type); err != nil {
		return nil, err
	}
	priority := 3
	if in.Priority != nil {
		priority = *in.Priority
	}

	task := &models.MaintenanceTask{
		MachineID:              in.MachineID,
		Type:                   in.Type,
		Status:                 domain.MaintenancePending,
		Title:                  in.Title,
		Description:            in.Description,
		Priority:               priority,
		Assignee:               in.Assignee,
		Team:                   in.Team,
		ScheduledStart:         utcPtr(in.ScheduledStart),
		ScheduledEnd:           utcPtr(in.ScheduledEnd),
		EstimatedDurationHours: in.EstimatedDurationHours,
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		if err := requireMachine(ctx, s.repos.Machines, in.MachineID); err != nil {
			return err
		}
		if err := s.repos.Maintenance.CreateNumbered(ctx, task); err != nil {
			return fmt.Errorf("create maintenance task: %w", err)
		}
		return s.record(ctx, "maintenance_task.created", "maintenance_task", task.ID, map[string]interface{}{
			"machine_id": task.MachineID,
			"type":       string(task.Type),
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *MaintenanceService) DeleteTask(ctx context.Context, id string) (*TaskDeleted, error) {
	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		if _, err := s.repos.Maintenance.Get(ctx, id); err != nil {
			return orNotFound(err, apperrors.ErrTaskNotFound(id))
		}
		if err := s.repos.Maintenance.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete maintenance task %s: %w", id, err)
		}
		return s.record(ctx, "maintenance_task.deleted", "maintenance_task", id, nil)
	})
	if err != nil {
		return nil, err
	}
	return &TaskDeleted{Message: "Maintenance task deleted successfully", TaskID: id}, nil
}

// Summary reduces the tasks created inside the window.
func (s *MaintenanceService) Summary(ctx context.Context, q WindowQuery) (domain.MaintenanceSummary, error) {
	rows, err := s.repos.Maintenance.CreatedIn(ctx, q.resolve(s.clock.now()))
	if err != nil {
		return domain.MaintenanceSummary{}, fmt.Errorf("read maintenance tasks: %w", err)
	}
	facts := make([]domain.MaintenanceFact, 0, len(rows))
	for _, t := range rows {
		facts = append(facts, domain.MaintenanceFact{
			Type:                t.Type,
			Status:              t.Status,
			DowntimeMinutes:     t.DowntimeMinutes,
			TotalCost:           t.TotalCost,
			ActualDurationHours: t.ActualDurationHours,
		})
	}
	return domain.SummarizeMaintenance(facts), nil
}

func (s *MaintenanceService) ListEmulsion(ctx context.Context, f repository.LogFilter) ([]models.EmulsionLog, error) {
	rows, err := s.repos.Facts.ListEmulsion(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list emulsion logs: %w", err)
	}
	return rows, nil
}

// CreateEmulsion stores a reading together with its limit check.
func (s *MaintenanceService) CreateEmulsion(ctx context.Context, in CreateEmulsionInput) (*models.EmulsionLog, error) {
	ph := floatOr(in.PHLevel, 0)
	within, action := domain.EvaluateEmulsion(ph, in.BacteriaCount)

	log := &models.EmulsionLog{
		MachineID:     in.MachineID,
		Timestamp:     timestampOr(in.Timestamp, s.clock.now()),
		PHLevel:       ph,
		Conductivity:  in.Conductivity,
		Concentration: in.Concentration,
		Temperature:   in.Temperature,
		BacteriaCount: in.BacteriaCount,
		GrotanAdded:   floatOr(in.GrotanAdded, 0),
		IsWithinSpec:  within,
		Notes:         in.Notes,
	}
	if action != "" {
		log.ActionRequired = &action
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		if err := requireMachine(ctx, s.repos.Machines, in.MachineID); err != nil {
			return err
		}
		if err := s.repos.Facts.CreateEmulsion(ctx, log); err != nil {
			return fmt.Errorf("create emulsion log: %w", err)
		}
		return s.record(ctx, "emulsion.logged", "emulsion_log", fmt.Sprint(log.ID), map[string]interface{}{
			"machine_id":     log.MachineID,
			"is_within_spec": log.IsWithinSpec,
		})
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// LatestEmulsion returns the newest reading of every machine.
func (s *MaintenanceService) LatestEmulsion(ctx context.Context) ([]models.EmulsionLog, error) {
	rows, err := s.repos.Facts.LatestEmulsion(ctx)
	if err != nil {
		return nil, fmt.Errorf("read latest emulsion logs: %w", err)
	}
	return rows, nil
}
