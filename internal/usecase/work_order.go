package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/service"
)

// UpdateWorkOrderInput is the body of PUT /production/work-orders/{id}.
// Absent fields are left unchanged.
type UpdateWorkOrderInput struct {
	Customer         *string                 `json:"customer" binding:"omitempty,min=1,max=200"`
	Product          *string                 `json:"product" binding:"omitempty,min=1,max=200"`
	ProductCode      *string                 `json:"product_code" binding:"omitempty,max=50"`
	MachineID        *string                 `json:"machine_id" binding:"omitempty,min=1,max=20"`
	Priority         *domain.Priority        `json:"priority"`
	Status           *domain.WorkOrderStatus `json:"status"`
	Progress         *float64                `json:"progress" binding:"omitempty,gte=0,lte=100"`
	QuantityOrdered  *float64                `json:"quantity_ordered" binding:"omitempty,gt=0"`
	QuantityProduced *float64                `json:"quantity_produced" binding:"omitempty,gte=0"`
	Color            *string                 `json:"color" binding:"omitempty,max=50"`
	DueDate          *time.Time              `json:"due_date"`
	Notes            *string                 `json:"notes"`
}

// UpdateWorkOrder applies a work order update and its auto-completion rule.
type UpdateWorkOrder struct {
	repos       *repository.Repositories
	dispatcher  *domain.EventDispatcher
	auditLogger *audit.Logger
	now         func() time.Time
}

func NewUpdateWorkOrder(repos *repository.Repositories, dispatcher *domain.EventDispatcher, clock service.Clock) *UpdateWorkOrder {
	return &UpdateWorkOrder{repos: repos, dispatcher: dispatcher, now: clockOrSystem(clock)}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (uc *UpdateWorkOrder) WithAuditLogger(al *audit.Logger) *UpdateWorkOrder {
	uc.auditLogger = al
	return uc
}

func (uc *UpdateWorkOrder) Execute(ctx context.Context, id string, in UpdateWorkOrderInput) (*models.WorkOrder, error) {
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, apperrors.ErrInvalidEnum("priority", string(*in.Priority))
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperrors.ErrInvalidEnum("status", string(*in.Status))
	}

	var wo *models.WorkOrder
	err := repository.Transaction(ctx, uc.repos.DB, func(ctx context.Context) error {
		var err error
		wo, err = uc.repos.WorkOrders.Get(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperrors.ErrWorkOrderNotFound(id)
			}
			return err
		}
		from := wo.Status

		if in.MachineID != nil && *in.MachineID != wo.MachineID {
			ok, err := uc.repos.Machines.Exists(ctx, *in.MachineID)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.ErrMachineNotFound(*in.MachineID)
			}
			wo.MachineID = *in.MachineID
		}
		applyWorkOrderFields(wo, in)

		now := uc.now()
		progress := domain.WorkOrderProgress{
			Status:    wo.Status,
			Progress:  wo.Progress,
			StartDate: wo.StartDate,
			EndDate:   wo.EndDate,
		}
		if err := progress.Apply(in.Status, now); err != nil {
			if errors.Is(err, domain.ErrIllegalTransition) {
				return apperrors.ErrIllegalTransition(err)
			}
			return err
		}
		wo.Status = progress.Status
		wo.StartDate = progress.StartDate
		wo.EndDate = progress.EndDate

		if err := uc.repos.WorkOrders.Save(ctx, wo); err != nil {
			return fmt.Errorf("update work order %s: %w", id, err)
		}
		if uc.auditLogger != nil {
			if from != wo.Status {
				if err := uc.auditLogger.LogStatusChange(ctx, "work_order", id, string(from), string(wo.Status)); err != nil {
					return err
				}
			}
			if err := uc.auditLogger.LogAction(ctx, "work_order.updated", "work_order", id, nil); err != nil {
				return err
			}
		}

		if from == domain.WorkOrderCompleted || wo.Status != domain.WorkOrderCompleted || uc.dispatcher == nil {
			return nil
		}
		event, err := newEvent(ctx, domain.EventWorkOrderCompleted, "work_order", id, domain.WorkOrderPayload{
			WorkOrderID:      id,
			MachineID:        wo.MachineID,
			QuantityProduced: wo.QuantityProduced,
		}, now)
		if err != nil {
			return err
		}
		return uc.dispatcher.Dispatch(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

func applyWorkOrderFields(wo *models.WorkOrder, in UpdateWorkOrderInput) {
	if in.Customer != nil {
		wo.Customer = *in.Customer
	}
	if in.Product != nil {
		wo.Product = *in.Product
	}
	if in.ProductCode != nil {
		wo.ProductCode = in.ProductCode
	}
	if in.Priority != nil {
		wo.Priority = *in.Priority
	}
	if in.Progress != nil {
		wo.Progress = *in.Progress
	}
	if in.QuantityOrdered != nil {
		wo.QuantityOrdered = *in.QuantityOrdered
	}
	if in.QuantityProduced != nil {
		wo.QuantityProduced = *in.QuantityProduced
	}
	if in.Color != nil {
		wo.Color = in.Color
	}
	if in.DueDate != nil {
		t := in.DueDate.UTC()
		wo.DueDate = &t
	}
	if in.Notes != nil {
		wo.Notes = in.Notes
	}
}
