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

// CreateWorkOrderInput is the body of POST /production/work-orders.
type CreateWorkOrderInput struct {
	Customer        string          `json:"customer" binding:"required,min=1,max=200"`
	Product         string          `json:"product" binding:"required,min=1,max=200"`
	ProductCode     *string         `json:"product_code" binding:"omitempty,max=50"`
	MachineID       string          `json:"machine_id" binding:"required,min=1,max=20"`
	Priority        domain.Priority `json:"priority"`
	QuantityOrdered float64         `json:"quantity_ordered" binding:"required,gt=0"`
	Color           *string         `json:"color" binding:"omitempty,max=50"`
	DueDate         *time.Time      `json:"due_date"`
	Notes           *string         `json:"notes"`
}

// ProductionLogView is a production log with its operator's name.
type ProductionLogView struct {
	models.ProductionLog
	OperatorName *string `json:"operator_name"`
}

// DowntimeLogView is a downtime log with its operator's name.
type DowntimeLogView struct {
	models.DowntimeLog
	OperatorName *string `json:"operator_name"`
}

// CreateDowntimeInput is the body of POST /production/downtime.
type CreateDowntimeInput struct {
	MachineID       string              `json:"machine_id" binding:"required,min=1,max=20"`
	Shift           domain.Shift        `json:"shift" binding:"required"`
	OperatorName    *string             `json:"operator_name" binding:"omitempty,max=100"`
	DowntimeType    domain.DowntimeType `json:"downtime_type" binding:"required"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,gt=0"`
	Reason          string              `json:"reason" binding:"required,min=1,max=500"`
	Resolution      *string             `json:"resolution" binding:"omitempty,max=500"`
	IsPlanned       bool                `json:"is_planned"`
	Timestamp       *time.Time          `json:"timestamp"`
}

// ProductionService serves work orders and the production and downtime logs.
type ProductionService struct {
	auditor
	repos *repository.Repositories
	clock Clock
}

func NewProductionService(repos *repository.Repositories, clock Clock) *ProductionService {
	return &ProductionService{repos: repos, clock: clock}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (s *ProductionService) WithAuditLogger(al *audit.Logger) *ProductionService {
	s.log = al
	return s
}

func (s *ProductionService) ListWorkOrders(ctx context.Context, f repository.WorkOrderFilter) ([]models.WorkOrder, error) {
	rows, err := s.repos.WorkOrders.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	return rows, nil
}

func (s *ProductionService) GetWorkOrder(ctx context.Context, id string) (*models.WorkOrder, error) {
	wo, err := s.repos.WorkOrders.Get(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apperrors.ErrWorkOrderNotFound(id))
	}
	return wo, nil
}

// CreateWorkOrder numbers the order WO-{year}-{seq} for the clock's year.
func (s *ProductionService) CreateWorkOrder(ctx context.Context, in CreateWorkOrderInput) (*models.WorkOrder, error) {
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if err := parseEnum("priority", in.Priority); err != nil {
		return nil, err
	}

	now := s.clock.now()
	wo := &models.WorkOrder{
		Customer:        in.Customer,
		Product:         in.Product,
		ProductCode:     in.ProductCode,
		MachineID:       in.MachineID,
		Priority:        in.Priority,
		Status:          domain.WorkOrderPending,
		QuantityOrdered: in.QuantityOrdered,
		Color:           in.Color,
		DueDate:         utcPtr(in.DueDate),
		Notes:           in.Notes,
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		if err := requireMachine(ctx, s.repos.Machines, in.MachineID); err != nil {
			return err
		}
		if err := s.repos.WorkOrders.CreateNumbered(ctx, wo, now.Year()); err != nil {
			return fmt.Errorf("create work order: %w", err)
		}
		return s.record(ctx, "work_order.created", "work_order", wo.ID, map[string]interface{}{
			"machine_id": wo.MachineID,
			"customer":   wo.Customer,
		})
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

func (s *ProductionService) ListProductionLogs(ctx context.Context, f repository.LogFilter) ([]*ProductionLogView, error) {
	rows, err := s.repos.Facts.ListProduction(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list production logs: %w", err)
	}
	out := make([]*ProductionLogView, 0, len(rows))
	for _, row := range rows {
		out = append(out, &ProductionLogView{ProductionLog: row, OperatorName: nameOf(row.Operator)})
	}
	return out, nil
}

// ProductionSummary reduces the production logs in the window, optionally
// for one machine.
func (s *ProductionService) ProductionSummary(ctx context.Context, q WindowQuery, machineID string) (domain.ProductionSummary, error) {
	rows, err := s.repos.Facts.ProductionIn(ctx, q.resolve(s.clock.now()), machineID)
	if err != nil {
		return domain.ProductionSummary{}, fmt.Errorf("read production logs: %w", err)
	}
	return domain.SummarizeProduction(productionFacts(rows)), nil
}

func (s *ProductionService) ListDowntime(ctx context.Context, f repository.LogFilter) ([]*DowntimeLogView, error) {
	rows, err := s.repos.Facts.ListDowntime(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list downtime logs: %w", err)
	}
	out := make([]*DowntimeLogView, 0, len(rows))
	for _, row := range rows {
		out = append(out, &DowntimeLogView{DowntimeLog: row, OperatorName: nameOf(row.Operator)})
	}
	return out, nil
}

func (s *ProductionService) CreateDowntime(ctx context.Context, in CreateDowntimeInput) (*DowntimeLogView, error) {
	if err := parseEnum("shift", in.Shift); err != nil {
		return nil, err
	}
	if err := parseEnum("downtime_type", in.DowntimeType); err != nil {
		return nil, err
	}

	log := &models.DowntimeLog{
		MachineID:       in.MachineID,
		Shift:           in.Shift,
		Timestamp:       timestampOr(in.Timestamp, s.clock.now()),
		DowntimeType:    in.DowntimeType,
		DurationMinutes: in.DurationMinutes,
		Reason:          in.Reason,
		Resolution:      in.Resolution,
		IsPlanned:       in.IsPlanned,
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		if err := requireMachine(ctx, s.repos.Machines, in.MachineID); err != nil {
			return err
		}
		operatorID, err := ResolveOperator(ctx, s.repos.Employees, in.OperatorName)
		if err != nil {
			return fmt.Errorf("resolve operator: %w", err)
		}
		log.OperatorID = operatorID
		if err := s.repos.Facts.CreateDowntime(ctx, log); err != nil {
			return fmt.Errorf("create downtime log: %w", err)
		}
		return s.record(ctx, "downtime.logged", "downtime_log", fmt.Sprint(log.ID), map[string]interface{}{
			"machine_id": log.MachineID,
			"minutes":    log.DurationMinutes,
		})
	})
	if err != nil {
		return nil, err
	}
	return &DowntimeLogView{DowntimeLog: *log, OperatorName: in.OperatorName}, nil
}

// DowntimeSummary buckets downtime minutes in the window.
func (s *ProductionService) DowntimeSummary(ctx context.Context, q WindowQuery) (domain.DowntimeSummary, error) {
	rows, err := s.repos.Facts.DowntimeIn(ctx, q.resolve(s.clock.now()), "")
	if err != nil {
		return domain.DowntimeSummary{}, fmt.Errorf("read downtime logs: %w", err)
	}
	facts := make([]domain.DowntimeFact, 0, len(rows))
	for _, r := range rows {
		facts = append(facts, domain.DowntimeFact{
			Type:    r.DowntimeType,
			Minutes: r.DurationMinutes,
			Planned: r.IsPlanned,
		})
	}
	return domain.SummarizeDowntime(facts), nil
}

func productionFacts(rows []models.ProductionLog) []domain.ProductionFact {
	facts := make([]domain.ProductionFact, 0, len(rows))
	for _, r := range rows {
		facts = append(facts, domain.ProductionFact{
			OutputLength: r.OutputLength,
			OutputWeight: r.OutputWeight,
			Speed:        r.Speed,
			Temperature:  r.Temperature,
		})
	}
	return facts
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
