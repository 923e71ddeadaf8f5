package repository

import (
	"context"

	"gorm.io/gorm"

	"cableops.io/dashboard/internal/repository/models"
)

// EmployeeFilter narrows the employee list.
type EmployeeFilter struct {
	Department string
	Shift      string
	Active     *bool
	Limit      int
}

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) List(ctx context.Context, f EmployeeFilter) ([]models.Employee, error) {
	q := DB(ctx, r.db).Scopes(
		Equals("department", f.Department),
		Equals("shift", f.Shift),
		Limit(f.Limit),
	)
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	var rows []models.Employee
	err := q.Order("name ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *EmployeeRepository) Get(ctx context.Context, id uint) (*models.Employee, error) {
	var e models.Employee
	if err := DB(ctx, r.db).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByName resolves an employee by exact name. It returns nil, nil when
// nobody has that name.
func (r *EmployeeRepository) FindByName(ctx context.Context, name string) (*models.Employee, error) {
	var rows []models.Employee
	if err := DB(ctx, r.db).Where("name = ?", name).Order("id ASC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *EmployeeRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	err := DB(ctx, r.db).Model(&models.Employee{}).Where("employee_number = ?", number).Count(&n).Error
	return n > 0, err
}

func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	return DB(ctx, r.db).Create(e).Error
}
