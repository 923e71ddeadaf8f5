package service

import (
	"context"
	"fmt"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

// MachineView is a machine as served by the API.
type MachineView struct {
	models.Machine
	OperatorName *string `json:"operator_name"`
}

func machineView(m *models.Machine) *MachineView {
	return &MachineView{Machine: *m, OperatorName: m.OperatorName()}
}

// CreateMachineInput is the body of POST /machines.
type CreateMachineInput struct {
	ID          string               `json:"id" binding:"required,min=1,max=20"`
	Name        string               `json:"name" binding:"required,min=1,max=100"`
	Area        string               `json:"area" binding:"required,min=1,max=50"`
	Type        domain.MachineType   `json:"type" binding:"required"`
	Status      domain.MachineStatus `json:"status"`
	Speed       *float64             `json:"speed" binding:"omitempty,gte=0"`
	TargetSpeed *float64             `json:"target_speed" binding:"required,gte=0"`
	Temperature *float64             `json:"temperature"`
	OEE         *float64             `json:"oee" binding:"omitempty,gte=0,lte=100"`
}

// UpdateMachineInput is the body of PUT /machines/{id}. Absent fields are
// left unchanged.
type UpdateMachineInput struct {
	Name        *string               `json:"name" binding:"omitempty,min=1,max=100"`
	Status      *domain.MachineStatus `json:"status"`
	Speed       *float64              `json:"speed" binding:"omitempty,gte=0"`
	Temperature *float64              `json:"temperature"`
	OEE         *float64              `json:"oee" binding:"omitempty,gte=0,lte=100"`
	OperatorID  *uint                 `json:"operator_id"`
}

// UpdateMachineStatusInput is the body of PUT /machines/{id}/status.
type UpdateMachineStatusInput struct {
	Status       domain.MachineStatus `json:"status" binding:"required"`
	Speed        *float64             `json:"speed" binding:"omitempty,gte=0"`
	Temperature  *float64             `json:"temperature"`
	OperatorName *string              `json:"operator_name"`
}

// MachineStatusUpdated is the acknowledgement of a status update.
type MachineStatusUpdated struct {
	Message   string               `json:"message"`
	MachineID string               `json:"machine_id"`
	NewStatus domain.MachineStatus `json:"new_status"`
}

// MachineService serves the machine fleet.
type MachineService struct {
	auditor
	repos *repository.Repositories
}

func NewMachineService(repos *repository.Repositories) *MachineService {
	return &MachineService{repos: repos}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (s *MachineService) WithAuditLogger(al *audit.Logger) *MachineService {
	s.log = al
	return s
}

func (s *MachineService) List(ctx context.Context, f repository.MachineFilter) ([]*MachineView, error) {
	rows, err := s.repos.Machines.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	out := make([]*MachineView, 0, len(rows))
	for i := range rows {
		out = append(out, machineView(&rows[i]))
	}
	return out, nil
}

func (s *MachineService) Get(ctx context.Context, id string) (*MachineView, error) {
	m, err := s.repos.Machines.Get(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apperrors.ErrMachineNotFound(id))
	}
	return machineView(m), nil
}

func (s *MachineService) Create(ctx context.Context, in CreateMachineInput) (*MachineView, error) {
	if err := parseEnum("type", in.Type); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = domain.MachineIdle
	}
	if err := parseEnum("status", in.Status); err != nil {
		return nil, err
	}

	m := &models.Machine{
		ID:          in.ID,
		Name:        in.Name,
		Area:        in.Area,
		Type:        in.Type,
		Status:      in.Status,
		Speed:       floatOr(in.Speed, 0),
		TargetSpeed: floatOr(in.TargetSpeed, 0),
		Temperature: floatOr(in.Temperature, 25.0),
		OEE:         floatOr(in.OEE, 0),
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		exists, err := s.repos.Machines.Exists(ctx, in.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict(apperrors.CodeMachineExists, "Machine ID already exists")
		}
		if err := s.repos.Machines.Create(ctx, m); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperrors.Conflict(apperrors.CodeMachineExists, "Machine ID already exists")
			}
			return fmt.Errorf("create machine: %w", err)
		}
		return s.record(ctx, "machine.created", "machine", m.ID, map[string]interface{}{
			"area": m.Area,
			"type": string(m.Type),
		})
	})
	if err != nil {
		return nil, err
	}
	return machineView(m), nil
}

func (s *MachineService) Update(ctx context.Context, id string, in UpdateMachineInput) (*MachineView, error) {
	if in.Status != nil {
		if err := parseEnum("status", *in.Status); err != nil {
			return nil, err
		}
	}

	var out *MachineView
	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		m, err := s.repos.Machines.Get(ctx, id)
		if err != nil {
			return orNotFound(err, apperrors.ErrMachineNotFound(id))
		}
		from := m.Status

		if in.Name != nil {
			m.Name = *in.Name
		}
		if in.Status != nil {
			m.Status = *in.Status
		}
		if in.Speed != nil {
			m.Speed = *in.Speed
		}
		if in.Temperature != nil {
			m.Temperature = *in.Temperature
		}
		if in.OEE != nil {
			m.OEE = *in.OEE
		}
		if in.OperatorID != nil {
			emp, err := s.repos.Employees.Get(ctx, *in.OperatorID)
			if err != nil {
				return orNotFound(err, apperrors.ErrEmployeeNotFound(*in.OperatorID))
			}
			m.OperatorID = &emp.ID
			m.Operator = emp
		}

		if err := s.repos.Machines.Save(ctx, m); err != nil {
			return fmt.Errorf("update machine %s: %w", id, err)
		}
		if from != m.Status && s.log != nil {
			if err := s.log.LogStatusChange(ctx, "machine", id, string(from), string(m.Status)); err != nil {
				return err
			}
		}
		out = machineView(m)
		return s.record(ctx, "machine.updated", "machine", id, nil)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets a machine's status and, when given, its speed,
// temperature and operator. An unknown operator name leaves the operator
// unchanged.
func (s *MachineService) UpdateStatus(ctx context.Context, id string, in UpdateMachineStatusInput) (*MachineStatusUpdated, error) {
	if err := parseEnum("status", in.Status); err != nil {
		return nil, err
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		m, err := s.repos.Machines.Get(ctx, id)
		if err != nil {
			return orNotFound(err, apperrors.ErrMachineNotFound(id))
		}
		from := m.Status

		fields := map[string]interface{}{"status": string(in.Status)}
		if in.Speed != nil {
			fields["speed"] = *in.Speed
		}
		if in.Temperature != nil {
			fields["temperature"] = *in.Temperature
		}
		operatorID, err := ResolveOperator(ctx, s.repos.Employees, in.OperatorName)
		if err != nil {
			return fmt.Errorf("resolve operator: %w", err)
		}
		if operatorID != nil {
			fields["operator_id"] = *operatorID
		}

		if err := s.repos.Machines.UpdateFields(ctx, id, fields); err != nil {
			return fmt.Errorf("update machine %s status: %w", id, err)
		}
		if s.log == nil || from == in.Status {
			return nil
		}
		return s.log.LogStatusChange(ctx, "machine", id, string(from), string(in.Status))
	})
	if err != nil {
		return nil, err
	}
	return &MachineStatusUpdated{
		Message:   "Machine status updated successfully",
		MachineID: id,
		NewStatus: in.Status,
	}, nil
}

// Stats counts the fleet by status.
func (s *MachineService) Stats(ctx context.Context) (domain.StatusCounts, error) {
	readings, err := s.repos.Machines.Readings(ctx)
	if err != nil {
		return domain.StatusCounts{}, fmt.Errorf("read machines: %w", err)
	}
	return domain.CountStatuses(readings), nil
}

// AreaOEE is the mean OEE of the running machines of one area.
func (s *MachineService) AreaOEE(ctx context.Context, area string) (*domain.AreaOEE, error) {
	readings, err := s.repos.Machines.Readings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read machines: %w", err)
	}
	oee, ok := domain.ComputeAreaOEE(area, readings)
	if !ok {
		return nil, apperrors.ErrAreaNotFound(area)
	}
	return &oee, nil
}

// OEEByArea reports AreaOEE for every area that has machines.
func (s *MachineService) OEEByArea(ctx context.Context) ([]domain.AreaOEE, error) {
	readings, err := s.repos.Machines.Readings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read machines: %w", err)
	}
	areas, err := s.repos.Machines.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	out := make([]domain.AreaOEE, 0, len(areas))
	for _, area := range areas {
		if oee, ok := domain.ComputeAreaOEE(area, readings); ok {
			out = append(out, oee)
		}
	}
	return out, nil
}
