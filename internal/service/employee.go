package service

import (
	"context"
	"fmt"

	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

// CreateEmployeeInput is the body of POST /employees.
type CreateEmployeeInput struct {
	EmployeeNumber string  `json:"employee_number" binding:"required,min=1,max=20"`
	Name           string  `json:"name" binding:"required,min=1,max=100"`
	NameAr         *string `json:"name_ar" binding:"omitempty,max=100"`
	Department     *string `json:"department" binding:"omitempty,max=50"`
	Position       *string `json:"position" binding:"omitempty,max=50"`
	Shift          *string `json:"shift" binding:"omitempty,max=20"`
	SkillLevel     *int    `json:"skill_level" binding:"omitempty,min=1,max=5"`
	Certifications *string `json:"certifications"`
}

type EmployeeService struct {
	auditor
	repos *repository.Repositories
}

func NewEmployeeService(repos *repository.Repositories) *EmployeeService {
	return &EmployeeService{repos: repos}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (s *EmployeeService) WithAuditLogger(al *audit.Logger) *EmployeeService {
	s.log = al
	return s
}

func (s *EmployeeService) List(ctx context.Context, f repository.EmployeeFilter) ([]models.Employee, error) {
	rows, err := s.repos.Employees.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return rows, nil
}

func (s *EmployeeService) Get(ctx context.Context, id uint) (*models.Employee, error) {
	e, err := s.repos.Employees.Get(ctx, id)
	if err != nil {
		return nil, orNotFound(err, apperrors.ErrEmployeeNotFound(id))
	}
	return e, nil
}

// Create registers an active employee. Skill level defaults to 1.
func (s *EmployeeService) Create(ctx context.Context, in CreateEmployeeInput) (*models.Employee, error) {
	skill := 1
	if in.SkillLevel != nil {
		skill = *in.SkillLevel
	}
	e := &models.Employee{
		EmployeeNumber: in.EmployeeNumber,
		Name:           in.Name,
		NameAr:         in.NameAr,
		Department:     in.Department,
		Position:       in.Position,
		Shift:          in.Shift,
		IsActive:       true,
		SkillLevel:     skill,
		Certifications: in.Certifications,
	}

	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		exists, err := s.repos.Employees.NumberExists(ctx, in.EmployeeNumber)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict(apperrors.CodeEmployeeExists, "Employee number already exists")
		}
		if err := s.repos.Employees.Create(ctx, e); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperrors.Conflict(apperrors.CodeEmployeeExists, "Employee number already exists")
			}
			return fmt.Errorf("create employee: %w", err)
		}
		return s.record(ctx, "employee.created", "employee", fmt.Sprint(e.ID), map[string]interface{}{
			"employee_number": e.EmployeeNumber,
		})
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}
