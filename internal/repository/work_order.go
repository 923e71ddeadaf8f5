package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository/models"
)

// WorkOrderFilter narrows the work order list.
type WorkOrderFilter struct {
	Priority  domain.Priority
	Status    domain.WorkOrderStatus
	MachineID string
	Customer  string
	Limit     int
}

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// List returns work orders ordered by due date.
func (r *WorkOrderRepository) List(ctx context.Context, f WorkOrderFilter) ([]models.WorkOrder, error) {
	var rows []models.WorkOrder
	err := DB(ctx, r.db).
		Scopes(
			Equals("priority", string(f.Priority)),
			Equals("status", string(f.Status)),
			ByMachine(f.MachineID),
			ContainsFold("customer", f.Customer),
			Limit(f.Limit),
		).
		Order("due_date ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *WorkOrderRepository) Get(ctx context.Context, id string) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := DB(ctx, r.db).First(&wo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) Create(ctx context.Context, wo *models.WorkOrder) error {
	return DB(ctx, r.db).Create(wo).Error
}

func (r *WorkOrderRepository) Save(ctx context.Context, wo *models.WorkOrder) error {
	return DB(ctx, r.db).Save(wo).Error
}

// NextID returns WO-{year}-{seq:04d} with seq one past the row count.
func (r *WorkOrderRepository) NextID(ctx context.Context, year int) (string, error) {
	return nextSequence(ctx, r.db, &models.WorkOrder{}, func(n int64) string {
		return fmt.Sprintf("WO-%d-%04d", year, n)
	})
}

// CreateNumbered stores wo under the next free WO-{year}-{seq} id.
func (r *WorkOrderRepository) CreateNumbered(ctx context.Context, wo *models.WorkOrder, year int) error {
	return createNumbered(ctx, r.db, wo,
		func(id string) { wo.ID = id },
		func(ctx context.Context) (string, error) { return r.NextID(ctx, year) },
	)
}

// CountByStatus counts work orders in status.
func (r *WorkOrderRepository) CountByStatus(ctx context.Context, status domain.WorkOrderStatus) (int64, error) {
	var n int64
	err := DB(ctx, r.db).Model(&models.WorkOrder{}).Where("status = ?", string(status)).Count(&n).Error
	return n, err
}
